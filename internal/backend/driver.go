package backend

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/atomicstack/popup-launcher/internal/logging/events"
	"github.com/atomicstack/popup-launcher/internal/protocol"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrBackendExited reports that the backend closed its output stream.
var ErrBackendExited = errors.New("backend exited")

const defaultRequestBuffer = 32

// EventKind identifies what a driver event carries.
type EventKind int

const (
	EventStarted EventKind = iota
	EventResponse
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventResponse:
		return "response"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event conveys session lifecycle changes and backend responses. Started
// carries Session, Response carries Response and Seq, Error carries Err.
type Event struct {
	Kind     EventKind
	Session  Handle
	Response protocol.Response
	Seq      uint64
	Err      error
}

// Conn is a connected backend transport.
type Conn interface {
	io.Reader
	io.Writer
	Close() error
}

// Connector establishes the backend transport.
type Connector interface {
	Connect(ctx context.Context) (Conn, error)
}

// Option customises a Driver.
type Option func(*Driver)

// WithRequestBuffer sets the capacity of the request channel.
func WithRequestBuffer(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.buffer = n
		}
	}
}

// Driver owns the single session with the search backend. It connects once;
// when the session ends it emits an Error event, closes Events, and stays
// inert.
type Driver struct {
	connector Connector
	buffer    int

	ctx    context.Context
	cancel context.CancelFunc

	events    chan Event
	wg        sync.WaitGroup
	startOnce sync.Once
}

// NewDriver creates a driver for the given connector. Call Start to connect.
func NewDriver(connector Connector, opts ...Option) *Driver {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Driver{
		connector: connector,
		buffer:    defaultRequestBuffer,
		ctx:       ctx,
		cancel:    cancel,
		events:    make(chan Event, 16),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start connects to the backend in the background. Cancelling ctx has the
// same effect as Stop. Later calls are no-ops.
func (d *Driver) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		release := context.AfterFunc(ctx, d.cancel)
		d.wg.Add(1)
		go d.run()
		go func() {
			d.wg.Wait()
			release()
			close(d.events)
		}()
	})
}

// Events returns the channel of driver events. It is closed once the session
// has terminated or the driver was stopped.
func (d *Driver) Events() <-chan Event {
	return d.events
}

// Stop asks the backend to exit and tears the session down.
func (d *Driver) Stop() {
	d.cancel()
}

// Wait blocks until the driver goroutines have exited. Only meaningful after
// Start.
func (d *Driver) Wait() {
	d.wg.Wait()
}

func (d *Driver) run() {
	defer d.wg.Done()

	id := uuid.NewString()
	events.Session.Connect(id, describe(d.connector))
	conn, err := d.connector.Connect(d.ctx)
	if err != nil {
		d.emit(Event{Kind: EventError, Err: fmt.Errorf("connect backend: %w", err)})
		return
	}

	sess := newSession(id, d.buffer)
	if !d.emit(Event{Kind: EventStarted, Session: sess}) {
		sess.terminate()
		conn.Close()
		return
	}
	events.Session.Started(id)

	err = d.serve(sess, conn)
	dropped := sess.terminate()
	events.Session.Terminated(id, dropped, err)
	if d.ctx.Err() != nil {
		return
	}
	if err == nil {
		err = ErrBackendExited
	}
	if dropped > 0 {
		err = fmt.Errorf("%w (%d queued requests dropped)", err, dropped)
	}
	d.emit(Event{Kind: EventError, Err: err})
}

func (d *Driver) serve(sess *Session, conn Conn) error {
	g, ctx := errgroup.WithContext(d.ctx)
	pending := &seqQueue{}
	g.Go(func() error { return d.writeLoop(ctx, sess, conn, pending) })
	g.Go(func() error { return d.readLoop(ctx, sess, conn, pending) })
	return g.Wait()
}

// writeLoop owns closing conn, which is also what unblocks readLoop.
func (d *Driver) writeLoop(ctx context.Context, sess *Session, conn Conn, pending *seqQueue) error {
	defer conn.Close()
	for {
		select {
		case <-ctx.Done():
			if d.ctx.Err() != nil {
				// best effort; the transport may already be gone
				writeRequest(conn, protocol.Exit{})
			}
			return nil
		case req := <-sess.requests:
			var seq uint64
			if search, ok := req.(protocol.Search); ok {
				seq = search.Seq
				pending.push(seq)
			}
			if err := writeRequest(conn, req); err != nil {
				return err
			}
			events.Session.Write(sess.ID(), protocol.RequestName(req), seq)
		}
	}
}

func writeRequest(conn Conn, req protocol.Request) error {
	data, err := protocol.EncodeRequest(req)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("write backend request: %w", err)
	}
	return nil
}

func (d *Driver) readLoop(ctx context.Context, sess *Session, conn Conn, pending *seqQueue) error {
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			resp, decodeErr := protocol.DecodeResponse(bytes.TrimSpace(line))
			if decodeErr != nil {
				return decodeErr
			}
			var seq uint64
			if _, ok := resp.(protocol.Update); ok {
				seq = pending.take()
			}
			events.Session.Response(sess.ID(), protocol.ResponseName(resp), seq)
			if !d.emit(Event{Kind: EventResponse, Response: resp, Seq: seq}) {
				return nil
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return ErrBackendExited
			}
			return fmt.Errorf("read backend response: %w", err)
		}
	}
}

func (d *Driver) emit(evt Event) bool {
	select {
	case <-d.ctx.Done():
		return false
	case d.events <- evt:
		return true
	}
}

func describe(c Connector) string {
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", c)
}

// seqQueue holds the seqs of searches written since the last Update.
type seqQueue struct {
	mu   sync.Mutex
	seqs []uint64
}

func (q *seqQueue) push(seq uint64) {
	q.mu.Lock()
	q.seqs = append(q.seqs, seq)
	q.mu.Unlock()
}

// take returns the newest outstanding seq and forgets the older ones. An
// Update answers at least the latest search written before it, and backends
// may skip the searches in between.
func (q *seqQueue) take() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.seqs) == 0 {
		return 0
	}
	seq := q.seqs[len(q.seqs)-1]
	q.seqs = q.seqs[:0]
	return seq
}
