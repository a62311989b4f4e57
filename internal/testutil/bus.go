package testutil

import (
	"context"
	"sync"

	"github.com/godbus/dbus/v5"
)

// BusCall records one outward method call made through a FakeBus.
type BusCall struct {
	Dest   string
	Path   dbus.ObjectPath
	Method string
	Args   []interface{}
}

// FakeBus stands in for a session bus connection. It satisfies the
// connection interface the toggle listener depends on.
type FakeBus struct {
	// Reply is returned from RequestName; defaults to primary owner.
	Reply dbus.RequestNameReply
	// NameErr is returned from RequestName.
	NameErr error
	// CallErr is reported by every outward call.
	CallErr error

	mu       sync.Mutex
	exported map[string]interface{}
	calls    []BusCall
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
}

func NewFakeBus() *FakeBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &FakeBus{
		Reply:    dbus.RequestNameReplyPrimaryOwner,
		exported: map[string]interface{}{},
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (b *FakeBus) RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error) {
	return b.Reply, b.NameErr
}

func (b *FakeBus) Export(v interface{}, path dbus.ObjectPath, iface string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.exported[iface] = v
	return nil
}

func (b *FakeBus) Object(dest string, path dbus.ObjectPath) dbus.BusObject {
	return &fakeObject{bus: b, dest: dest, path: path}
}

func (b *FakeBus) Context() context.Context { return b.ctx }

func (b *FakeBus) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.cancel()
	return nil
}

// Drop simulates losing the bus connection.
func (b *FakeBus) Drop() {
	b.cancel()
}

// Exported returns the object exported under iface.
func (b *FakeBus) Exported(iface string) (interface{}, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.exported[iface]
	return v, ok
}

// Calls returns the outward calls made so far.
func (b *FakeBus) Calls() []BusCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]BusCall(nil), b.calls...)
}

func (b *FakeBus) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

type fakeObject struct {
	dbus.BusObject
	bus  *FakeBus
	dest string
	path dbus.ObjectPath
}

func (o *fakeObject) CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call {
	o.bus.mu.Lock()
	defer o.bus.mu.Unlock()
	o.bus.calls = append(o.bus.calls, BusCall{Dest: o.dest, Path: o.path, Method: method, Args: args})
	return &dbus.Call{Err: o.bus.CallErr}
}
