package toggle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/atomicstack/popup-launcher/internal/logging"
	"github.com/atomicstack/popup-launcher/internal/logging/events"
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	DefaultName      = "com.system76.IcedLauncher"
	DefaultPath      = "/com/system76/IcedLauncher"
	DefaultInterface = "com.system76.IcedLauncher"

	HostName      = "com.system76.CosmicAppletHost"
	HostPath      = "/com/system76/CosmicAppletHost"
	HostInterface = "com.system76.CosmicAppletHost"
)

var (
	// ErrNameTaken means another process owns the well-known name.
	ErrNameTaken = errors.New("bus name already owned")
	// ErrNotConnected is returned by host calls before the listener started.
	ErrNotConnected = errors.New("toggle listener not connected")
)

// Config names the bus endpoint the listener exports.
type Config struct {
	Name      string
	Path      string
	Interface string
}

// DefaultConfig returns the well-known launcher endpoint.
func DefaultConfig() Config {
	return Config{Name: DefaultName, Path: DefaultPath, Interface: DefaultInterface}
}

// Conn is the subset of *dbus.Conn the listener uses.
type Conn interface {
	RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error)
	Export(v interface{}, path dbus.ObjectPath, iface string) error
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	Context() context.Context
	Close() error
}

// Dialer opens a bus connection.
type Dialer func(ctx context.Context) (Conn, error)

// SessionDialer connects to the user's session bus.
func SessionDialer(ctx context.Context) (Conn, error) {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return conn, nil
}

// EventKind identifies a listener event.
type EventKind int

const (
	EventStarted EventKind = iota
	EventToggle
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventToggle:
		return "toggle"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is emitted once on successful registration and once per Toggle call.
type Event struct {
	Kind EventKind
}

// StateKind is the phase of the listener state machine.
type StateKind int

const (
	Ready StateKind = iota
	Waiting
	Finished
)

func (k StateKind) String() string {
	switch k {
	case Ready:
		return "ready"
	case Waiting:
		return "waiting"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("StateKind(%d)", int(k))
	}
}

// State carries the live connection and toggle queue while Waiting.
type State struct {
	Kind  StateKind
	conn  Conn
	queue *queue
}

// Listener serves the Toggle method and reports calls as events.
type Listener struct {
	cfg  Config
	dial Dialer

	events chan Event

	mu   sync.Mutex
	conn Conn
}

// NewListener creates a listener. A nil dial uses SessionDialer.
func NewListener(cfg Config, dial Dialer) *Listener {
	if dial == nil {
		dial = SessionDialer
	}
	return &Listener{cfg: cfg, dial: dial, events: make(chan Event, 4)}
}

// Events returns the listener's event channel, closed when Run returns.
func (l *Listener) Events() <-chan Event {
	return l.events
}

// Run drives Step from Ready until Finished.
func (l *Listener) Run(ctx context.Context) {
	defer close(l.events)
	st := State{Kind: Ready}
	for st.Kind != Finished {
		var evt *Event
		evt, st = l.Step(ctx, st)
		if evt == nil {
			continue
		}
		select {
		case l.events <- *evt:
		case <-ctx.Done():
			st = l.finish(st, "cancelled")
		}
	}
}

// Step performs one transition of the listener state machine.
func (l *Listener) Step(ctx context.Context, st State) (*Event, State) {
	switch st.Kind {
	case Ready:
		conn, q, err := l.register(ctx)
		if err != nil {
			logging.Warn("toggle listener unavailable", err)
			events.Toggle.Finished(err.Error())
			return nil, State{Kind: Finished}
		}
		l.mu.Lock()
		l.conn = conn
		l.mu.Unlock()
		events.Toggle.Bound(l.cfg.Name)
		return &Event{Kind: EventStarted}, State{Kind: Waiting, conn: conn, queue: q}
	case Waiting:
		if st.queue.pop(ctx, st.conn.Context()) {
			return &Event{Kind: EventToggle}, st
		}
		reason := "connection lost"
		if ctx.Err() != nil {
			reason = "cancelled"
		}
		return nil, l.finish(st, reason)
	default:
		return nil, State{Kind: Finished}
	}
}

func (l *Listener) finish(st State, reason string) State {
	if st.conn != nil {
		st.conn.Close()
	}
	l.mu.Lock()
	l.conn = nil
	l.mu.Unlock()
	events.Toggle.Finished(reason)
	return State{Kind: Finished}
}

func (l *Listener) register(ctx context.Context) (Conn, *queue, error) {
	conn, err := l.dial(ctx)
	if err != nil {
		return nil, nil, err
	}
	q := newQueue()
	srv := &server{queue: q}
	path := dbus.ObjectPath(l.cfg.Path)
	if err := conn.Export(srv, path, l.cfg.Interface); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("export %s: %w", l.cfg.Path, err)
	}
	node := &introspect.Node{
		Name: l.cfg.Path,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{Name: l.cfg.Interface, Methods: introspect.Methods(srv)},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), path, "org.freedesktop.DBus.Introspectable"); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("export introspection: %w", err)
	}
	reply, err := conn.RequestName(l.cfg.Name, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("request name %s: %w", l.cfg.Name, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, nil, fmt.Errorf("%s: %w", l.cfg.Name, ErrNameTaken)
	}
	return conn, q, nil
}

// HideHost asks the applet host to hide the launcher. Best effort.
func (l *Listener) HideHost(ctx context.Context) error {
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	obj := conn.Object(HostName, dbus.ObjectPath(HostPath))
	err := obj.CallWithContext(ctx, HostInterface+".Hide", 0, l.cfg.Name).Err
	events.Toggle.HostHide(err)
	return err
}

type server struct {
	queue *queue
}

// Toggle is the exported bus method. It never blocks.
func (s *server) Toggle() *dbus.Error {
	events.Toggle.Received(s.queue.push())
	return nil
}
