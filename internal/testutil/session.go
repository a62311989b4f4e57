package testutil

import (
	"sync"

	"github.com/atomicstack/popup-launcher/internal/backend"
	"github.com/atomicstack/popup-launcher/internal/protocol"
)

// RecordingSession is a backend.Handle that records every request it
// accepts instead of writing it anywhere.
type RecordingSession struct {
	id string

	mu       sync.Mutex
	requests []protocol.Request
	done     chan struct{}
	closed   bool
}

func NewRecordingSession(id string) *RecordingSession {
	return &RecordingSession{id: id, done: make(chan struct{})}
}

func (s *RecordingSession) ID() string { return s.id }

func (s *RecordingSession) Send(req protocol.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return backend.ErrSessionClosed
	}
	s.requests = append(s.requests, req)
	return nil
}

func (s *RecordingSession) Done() <-chan struct{} { return s.done }

// Terminate ends the session; later sends fail with backend.ErrSessionClosed.
func (s *RecordingSession) Terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}

// Requests returns every accepted request in order.
func (s *RecordingSession) Requests() []protocol.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.Request(nil), s.requests...)
}

// Searches returns the accepted Search requests in order.
func (s *RecordingSession) Searches() []protocol.Search {
	var out []protocol.Search
	for _, req := range s.Requests() {
		if search, ok := req.(protocol.Search); ok {
			out = append(out, search)
		}
	}
	return out
}

// Reset forgets the recorded requests.
func (s *RecordingSession) Reset() {
	s.mu.Lock()
	s.requests = nil
	s.mu.Unlock()
}
