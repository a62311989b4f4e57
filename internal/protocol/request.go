package protocol

import (
	"encoding/json"
	"fmt"
)

// Request is a message sent from the launcher to the backend.
type Request interface {
	isRequest()
}

// Search asks the backend to rank results for Query. Seq never goes on the
// wire; the session driver uses it to pair the search with its Update.
type Search struct {
	Query string
	Seq   uint64
}

// Activate runs the result with the given id from the current result set.
type Activate struct {
	ID uint32
}

// Complete asks the backend for a completion of the given result; the backend
// answers with Fill.
type Complete struct {
	ID uint32
}

// Exit asks the backend to shut down.
type Exit struct{}

// Interrupt cancels whatever the backend is currently computing.
type Interrupt struct{}

func (Search) isRequest()    {}
func (Activate) isRequest()  {}
func (Complete) isRequest()  {}
func (Exit) isRequest()      {}
func (Interrupt) isRequest() {}

// EncodeRequest renders req as a single JSON value without a trailing newline.
func EncodeRequest(req Request) ([]byte, error) {
	switch r := req.(type) {
	case Search:
		return json.Marshal(map[string]string{"Search": r.Query})
	case Activate:
		return json.Marshal(map[string]uint32{"Activate": r.ID})
	case Complete:
		return json.Marshal(map[string]uint32{"Complete": r.ID})
	case Exit:
		return json.Marshal("Exit")
	case Interrupt:
		return json.Marshal("Interrupt")
	default:
		return nil, fmt.Errorf("encode request: unsupported type %T", req)
	}
}

// DecodeRequest parses one request line.
func DecodeRequest(data []byte) (Request, error) {
	tag, payload, err := splitTagged(data)
	if err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	switch tag {
	case "Search":
		var q string
		if err := json.Unmarshal(payload, &q); err != nil {
			return nil, fmt.Errorf("decode request: search: %w", err)
		}
		return Search{Query: q}, nil
	case "Activate":
		var id uint32
		if err := json.Unmarshal(payload, &id); err != nil {
			return nil, fmt.Errorf("decode request: activate: %w", err)
		}
		return Activate{ID: id}, nil
	case "Complete":
		var id uint32
		if err := json.Unmarshal(payload, &id); err != nil {
			return nil, fmt.Errorf("decode request: complete: %w", err)
		}
		return Complete{ID: id}, nil
	case "Exit":
		return Exit{}, nil
	case "Interrupt":
		return Interrupt{}, nil
	default:
		return nil, fmt.Errorf("decode request: unknown variant %q", tag)
	}
}

// RequestName returns a short label for logs and traces.
func RequestName(req Request) string {
	switch req.(type) {
	case Search:
		return "search"
	case Activate:
		return "activate"
	case Complete:
		return "complete"
	case Exit:
		return "exit"
	case Interrupt:
		return "interrupt"
	default:
		return fmt.Sprintf("%T", req)
	}
}
