package apps

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/atomicstack/popup-launcher/internal/backend"
	"github.com/atomicstack/popup-launcher/internal/desktop"
	"github.com/atomicstack/popup-launcher/internal/logging"
	"github.com/atomicstack/popup-launcher/internal/protocol"
)

const DefaultMaxResults = 8

// Server answers launcher requests from an Index.
type Server struct {
	index      *Index
	maxResults int

	last []*desktop.Entry
}

func NewServer(index *Index, maxResults int) *Server {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Server{index: index, maxResults: maxResults}
}

// Serve reads requests from r and writes responses to w until Exit, EOF or
// ctx ends.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		req, err := protocol.DecodeRequest(scanner.Bytes())
		if err != nil {
			logging.Warn("builtin backend: bad request", err)
			continue
		}
		if _, ok := req.(protocol.Exit); ok {
			return nil
		}
		for _, resp := range s.Handle(req) {
			data, err := protocol.EncodeResponse(resp)
			if err != nil {
				return err
			}
			if _, err := w.Write(append(data, '\n')); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
		}
	}
	return scanner.Err()
}

// Handle computes the responses to a single request.
func (s *Server) Handle(req protocol.Request) []protocol.Response {
	switch r := req.(type) {
	case protocol.Search:
		if r.Query == "" {
			s.index.MaybeRefresh()
		}
		s.last = s.index.Search(r.Query, s.maxResults)
		items := make([]protocol.SearchResult, len(s.last))
		for i, entry := range s.last {
			items[i] = toResult(uint32(i), entry)
		}
		return []protocol.Response{protocol.Update{Items: items}}
	case protocol.Activate:
		if entry := s.lookup(r.ID); entry != nil {
			return []protocol.Response{protocol.DesktopEntry{Path: entry.Path}}
		}
	case protocol.Complete:
		if entry := s.lookup(r.ID); entry != nil {
			return []protocol.Response{protocol.Fill{Text: entry.Name}}
		}
	}
	return nil
}

func (s *Server) lookup(id uint32) *desktop.Entry {
	if int(id) >= len(s.last) {
		return nil
	}
	return s.last[id]
}

func toResult(id uint32, entry *desktop.Entry) protocol.SearchResult {
	result := protocol.SearchResult{ID: id, Name: entry.Name, Description: entry.Comment}
	if result.Description == "" {
		result.Description = entry.GenericName
	}
	if entry.Icon != "" {
		result.Icon = protocol.NamedIcon(entry.Icon)
	}
	return result
}

// Connector serves the builtin backend in-process over pipes.
type Connector struct {
	Index      *Index
	MaxResults int
}

func (c *Connector) String() string {
	return "builtin"
}

func (c *Connector) Connect(ctx context.Context) (backend.Conn, error) {
	if c.Index.Len() == 0 {
		if err := c.Index.Load(); err != nil {
			return nil, err
		}
	}
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	srv := NewServer(c.Index, c.MaxResults)
	go func() {
		err := srv.Serve(ctx, reqR, respW)
		respW.CloseWithError(err)
		reqR.Close()
	}()
	return &pipeConn{reader: respR, writer: reqW}, nil
}

type pipeConn struct {
	reader *io.PipeReader
	writer *io.PipeWriter
	once   sync.Once
}

func (c *pipeConn) Read(p []byte) (int, error)  { return c.reader.Read(p) }
func (c *pipeConn) Write(p []byte) (int, error) { return c.writer.Write(p) }

func (c *pipeConn) Close() error {
	c.once.Do(func() {
		c.writer.Close()
		c.reader.Close()
	})
	return nil
}
