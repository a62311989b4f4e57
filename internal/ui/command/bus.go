package command

import (
	"errors"
	"fmt"
	"sync"

	"github.com/atomicstack/popup-launcher/internal/backend"
	"github.com/atomicstack/popup-launcher/internal/logging/events"
	"github.com/atomicstack/popup-launcher/internal/protocol"
)

// ErrNoSession is returned when a request is issued while no backend session
// is live.
var ErrNoSession = errors.New("no backend session")

// Bus is the request channel between the orchestrator and the live backend
// session. Sends never block.
type Bus struct {
	mu      sync.Mutex
	session backend.Handle
}

// New initialises a command bus instance with no session attached.
func New() *Bus {
	return &Bus{}
}

// Attach makes h the target of subsequent sends.
func (b *Bus) Attach(h backend.Handle) {
	b.mu.Lock()
	b.session = h
	b.mu.Unlock()
}

// Detach drops the current session.
func (b *Bus) Detach() {
	b.mu.Lock()
	b.session = nil
	b.mu.Unlock()
}

// Live reports whether a session is attached and still running.
func (b *Bus) Live() bool {
	b.mu.Lock()
	h := b.session
	b.mu.Unlock()
	if h == nil {
		return false
	}
	select {
	case <-h.Done():
		return false
	default:
		return true
	}
}

// Send enqueues req on the attached session while emitting trace logs.
func (b *Bus) Send(req protocol.Request) error {
	kind := protocol.RequestName(req)
	b.mu.Lock()
	h := b.session
	b.mu.Unlock()
	if h == nil {
		events.Command.Skip(kind, ErrNoSession.Error())
		return ErrNoSession
	}
	var seq uint64
	if search, ok := req.(protocol.Search); ok {
		seq = search.Seq
	}
	events.Command.Queue(kind, seq)
	err := h.Send(req)
	events.Command.Result(kind, err)
	if err != nil {
		return fmt.Errorf("send %s: %w", kind, err)
	}
	return nil
}
