package testutil

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/atomicstack/popup-launcher/internal/backend"
	"github.com/atomicstack/popup-launcher/internal/protocol"
)

// Responder maps a request received by a ScriptedBackend to the responses it
// writes back, in order.
type Responder func(req protocol.Request) []protocol.Response

// ScriptedBackend is an in-memory backend speaking the JSON-lines protocol
// over pipes. It implements backend.Connector.
type ScriptedBackend struct {
	respond    Responder
	connectErr error

	mu       sync.Mutex
	requests []protocol.Request
	out      *io.PipeWriter
	connects int
}

// NewScriptedBackend returns a backend answering requests with respond. A nil
// responder never answers.
func NewScriptedBackend(respond Responder) *ScriptedBackend {
	if respond == nil {
		respond = func(protocol.Request) []protocol.Response { return nil }
	}
	return &ScriptedBackend{respond: respond}
}

// FailingBackend returns a backend whose Connect always fails with err.
func FailingBackend(err error) *ScriptedBackend {
	b := NewScriptedBackend(nil)
	b.connectErr = err
	return b
}

func (b *ScriptedBackend) String() string {
	return "scripted"
}

func (b *ScriptedBackend) Connect(ctx context.Context) (backend.Conn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connects++
	if b.connectErr != nil {
		return nil, b.connectErr
	}
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	b.out = respW
	go b.serve(reqR, respW)
	return &pipeConn{reader: respR, writer: reqW}, nil
}

func (b *ScriptedBackend) serve(in *io.PipeReader, out *io.PipeWriter) {
	defer out.Close()
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		req, err := protocol.DecodeRequest(scanner.Bytes())
		if err != nil {
			out.CloseWithError(err)
			return
		}
		b.mu.Lock()
		b.requests = append(b.requests, req)
		b.mu.Unlock()
		if _, ok := req.(protocol.Exit); ok {
			return
		}
		for _, resp := range b.respond(req) {
			if err := b.write(out, resp); err != nil {
				return
			}
		}
	}
}

func (b *ScriptedBackend) write(out *io.PipeWriter, resp protocol.Response) error {
	data, err := protocol.EncodeResponse(resp)
	if err != nil {
		return err
	}
	_, err = out.Write(append(data, '\n'))
	return err
}

// Push writes an unsolicited response to the connected client.
func (b *ScriptedBackend) Push(resp protocol.Response) error {
	b.mu.Lock()
	out := b.out
	b.mu.Unlock()
	if out == nil {
		return errors.New("scripted backend not connected")
	}
	return b.write(out, resp)
}

// PushRaw writes a raw line, for exercising malformed input.
func (b *ScriptedBackend) PushRaw(line string) error {
	b.mu.Lock()
	out := b.out
	b.mu.Unlock()
	if out == nil {
		return errors.New("scripted backend not connected")
	}
	_, err := out.Write([]byte(line + "\n"))
	return err
}

// Hangup closes the backend's output, as if the process had exited.
func (b *ScriptedBackend) Hangup() {
	b.mu.Lock()
	out := b.out
	b.mu.Unlock()
	if out != nil {
		out.Close()
	}
}

// Requests returns a copy of every request received so far.
func (b *ScriptedBackend) Requests() []protocol.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]protocol.Request(nil), b.requests...)
}

// Connects reports how many times Connect was called.
func (b *ScriptedBackend) Connects() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connects
}

// WaitForRequests blocks until at least n requests have arrived.
func (b *ScriptedBackend) WaitForRequests(t *testing.T, n int) []protocol.Request {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		reqs := b.Requests()
		if len(reqs) >= n {
			return reqs
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d requests, have %d: %#v", n, len(reqs), reqs)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type pipeConn struct {
	reader *io.PipeReader
	writer *io.PipeWriter
}

func (c *pipeConn) Read(p []byte) (int, error)  { return c.reader.Read(p) }
func (c *pipeConn) Write(p []byte) (int, error) { return c.writer.Write(p) }

func (c *pipeConn) Close() error {
	c.writer.Close()
	return c.reader.Close()
}

// NextEvent reads one driver event or fails the test after a timeout.
func NextEvent(t *testing.T, ch <-chan backend.Event) backend.Event {
	t.Helper()
	select {
	case evt, ok := <-ch:
		if !ok {
			t.Fatalf("event channel closed")
		}
		return evt
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for driver event")
	}
	return backend.Event{}
}
