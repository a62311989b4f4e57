package protocol

import (
	"encoding/json"
	"fmt"
)

// Response is a message emitted by the backend. The set of variants is closed:
// only this package can add one, and Visit is the single place that switches
// over them.
type Response interface {
	isResponse()
}

// Update replaces the whole result set.
type Update struct {
	Items []SearchResult
}

// Fill replaces the query text with a backend suggestion.
type Fill struct {
	Text string
}

// Close asks the launcher to terminate.
type Close struct{}

// Context offers secondary actions for one result.
type Context struct {
	ID      uint32          `json:"id"`
	Options []ContextOption `json:"options"`
}

// DesktopEntry asks the launcher to start the application described by the
// desktop file at Path.
type DesktopEntry struct {
	Path          string        `json:"path"`
	GpuPreference GpuPreference `json:"gpu_preference"`
}

// Unknown carries a well-formed response whose variant this client does not
// implement.
type Unknown struct {
	Tag string
}

func (Update) isResponse()       {}
func (Fill) isResponse()         {}
func (Close) isResponse()        {}
func (Context) isResponse()      {}
func (DesktopEntry) isResponse() {}
func (Unknown) isResponse()      {}

// Visitor handles every response variant. Adding a variant adds a method here,
// so consumers stop compiling until they decide how to handle it.
type Visitor[T any] interface {
	Update(Update) T
	Fill(Fill) T
	Close(Close) T
	Context(Context) T
	DesktopEntry(DesktopEntry) T
	Unknown(Unknown) T
}

// Visit dispatches resp to the matching Visitor method. A nil response yields
// the zero value.
func Visit[T any](resp Response, v Visitor[T]) T {
	switch r := resp.(type) {
	case Update:
		return v.Update(r)
	case Fill:
		return v.Fill(r)
	case Close:
		return v.Close(r)
	case Context:
		return v.Context(r)
	case DesktopEntry:
		return v.DesktopEntry(r)
	case Unknown:
		return v.Unknown(r)
	}
	var zero T
	return zero
}

// ResponseName returns a short label for logs and traces.
func ResponseName(resp Response) string {
	switch r := resp.(type) {
	case Update:
		return "update"
	case Fill:
		return "fill"
	case Close:
		return "close"
	case Context:
		return "context"
	case DesktopEntry:
		return "desktop-entry"
	case Unknown:
		return "unknown:" + r.Tag
	default:
		return fmt.Sprintf("%T", resp)
	}
}

// EncodeResponse renders resp as a single JSON value without a trailing newline.
func EncodeResponse(resp Response) ([]byte, error) {
	switch r := resp.(type) {
	case Update:
		items := r.Items
		if items == nil {
			items = []SearchResult{}
		}
		return json.Marshal(map[string][]SearchResult{"Update": items})
	case Fill:
		return json.Marshal(map[string]string{"Fill": r.Text})
	case Close:
		return json.Marshal("Close")
	case Context:
		opts := r.Options
		if opts == nil {
			opts = []ContextOption{}
		}
		return json.Marshal(map[string]Context{"Context": {ID: r.ID, Options: opts}})
	case DesktopEntry:
		return json.Marshal(map[string]DesktopEntry{"DesktopEntry": r})
	default:
		return nil, fmt.Errorf("encode response: unsupported type %T", resp)
	}
}

// DecodeResponse parses one response line. Malformed JSON is an error; a
// well-formed value with an unrecognised tag decodes to Unknown.
func DecodeResponse(data []byte) (Response, error) {
	tag, payload, err := splitTagged(data)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	switch tag {
	case "Update":
		var items []SearchResult
		if err := json.Unmarshal(payload, &items); err != nil {
			return nil, fmt.Errorf("decode response: update: %w", err)
		}
		return Update{Items: items}, nil
	case "Fill":
		var text string
		if err := json.Unmarshal(payload, &text); err != nil {
			return nil, fmt.Errorf("decode response: fill: %w", err)
		}
		return Fill{Text: text}, nil
	case "Close":
		return Close{}, nil
	case "Context":
		var ctx Context
		if err := json.Unmarshal(payload, &ctx); err != nil {
			return nil, fmt.Errorf("decode response: context: %w", err)
		}
		return ctx, nil
	case "DesktopEntry":
		var entry DesktopEntry
		if err := json.Unmarshal(payload, &entry); err != nil {
			return nil, fmt.Errorf("decode response: desktop entry: %w", err)
		}
		return entry, nil
	default:
		return Unknown{Tag: tag}, nil
	}
}
