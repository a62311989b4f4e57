package backend

import (
	"errors"
	"sync"

	"github.com/atomicstack/popup-launcher/internal/protocol"
)

var (
	// ErrSessionClosed is returned by Send once the session has terminated.
	ErrSessionClosed = errors.New("backend session closed")
	// ErrQueueFull is returned by Send when the request buffer is saturated.
	ErrQueueFull = errors.New("backend request queue full")
)

// Handle is the send half of a live session.
type Handle interface {
	ID() string
	Send(req protocol.Request) error
	Done() <-chan struct{}
}

// Session is the send half handed out in Started events. Sends never block;
// requests are written to the backend in the order they were accepted.
type Session struct {
	id       string
	requests chan protocol.Request
	done     chan struct{}

	mu     sync.Mutex
	closed bool
}

func newSession(id string, buffer int) *Session {
	if buffer <= 0 {
		buffer = defaultRequestBuffer
	}
	return &Session{
		id:       id,
		requests: make(chan protocol.Request, buffer),
		done:     make(chan struct{}),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Send enqueues req for the writer.
func (s *Session) Send(req protocol.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	select {
	case s.requests <- req:
		return nil
	default:
		return ErrQueueFull
	}
}

// Done is closed when the session terminates.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// terminate closes the session and reports how many accepted requests were
// never written.
func (s *Session) terminate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}
	s.closed = true
	close(s.done)
	dropped := 0
	for {
		select {
		case <-s.requests:
			dropped++
		default:
			return dropped
		}
	}
}
