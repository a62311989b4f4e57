// Package protocol implements the pop-launcher wire format: one JSON value per
// line in each direction, with enum variants encoded as externally tagged
// objects ({"Search":"fi"}) or bare strings for unit variants ("Exit").
package protocol

import (
	"encoding/json"
	"fmt"
)

// IconSource references an icon either by symbolic name or by MIME type.
// Exactly one of the fields is set.
type IconSource struct {
	Name string
	Mime string
}

// NamedIcon returns an icon source referring to a symbolic icon name.
func NamedIcon(name string) *IconSource {
	return &IconSource{Name: name}
}

// MimeIcon returns an icon source referring to a MIME type icon.
func MimeIcon(mime string) *IconSource {
	return &IconSource{Mime: mime}
}

func (s IconSource) MarshalJSON() ([]byte, error) {
	if s.Mime != "" {
		return json.Marshal(map[string]string{"Mime": s.Mime})
	}
	return json.Marshal(map[string]string{"Name": s.Name})
}

func (s *IconSource) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("icon source: %w", err)
	}
	if v, ok := raw["Name"]; ok {
		*s = IconSource{Name: v}
		return nil
	}
	if v, ok := raw["Mime"]; ok {
		*s = IconSource{Mime: v}
		return nil
	}
	return fmt.Errorf("icon source: unknown variant in %s", string(data))
}

// SearchResult is one ranked candidate. IDs are unique within a result set only.
type SearchResult struct {
	ID           uint32      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Icon         *IconSource `json:"icon,omitempty"`
	CategoryIcon *IconSource `json:"category_icon,omitempty"`
	Window       *[2]uint32  `json:"window,omitempty"`
}

// ContextOption is a secondary action offered for a single result.
type ContextOption struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

// GpuKind selects which GPU a launched desktop entry should prefer.
type GpuKind int

const (
	GpuDefault GpuKind = iota
	GpuNonDefault
	GpuSpecific
)

// GpuPreference accompanies DesktopEntry responses. Index is only meaningful
// for GpuSpecific.
type GpuPreference struct {
	Kind  GpuKind
	Index uint32
}

func (g GpuPreference) String() string {
	switch g.Kind {
	case GpuNonDefault:
		return "NonDefault"
	case GpuSpecific:
		return fmt.Sprintf("SpecificIdx(%d)", g.Index)
	default:
		return "Default"
	}
}

func (g GpuPreference) MarshalJSON() ([]byte, error) {
	switch g.Kind {
	case GpuNonDefault:
		return json.Marshal("NonDefault")
	case GpuSpecific:
		return json.Marshal(map[string]uint32{"SpecificIdx": g.Index})
	default:
		return json.Marshal("Default")
	}
}

func (g *GpuPreference) UnmarshalJSON(data []byte) error {
	tag, payload, err := splitTagged(data)
	if err != nil {
		return fmt.Errorf("gpu preference: %w", err)
	}
	switch tag {
	case "Default":
		*g = GpuPreference{Kind: GpuDefault}
	case "NonDefault":
		*g = GpuPreference{Kind: GpuNonDefault}
	case "SpecificIdx":
		var idx uint32
		if err := json.Unmarshal(payload, &idx); err != nil {
			return fmt.Errorf("gpu preference: %w", err)
		}
		*g = GpuPreference{Kind: GpuSpecific, Index: idx}
	default:
		return fmt.Errorf("gpu preference: unknown variant %q", tag)
	}
	return nil
}

// splitTagged separates an externally tagged enum value into its tag and
// payload. Unit variants are bare strings and have a nil payload.
func splitTagged(data []byte) (string, json.RawMessage, error) {
	var unit string
	if err := json.Unmarshal(data, &unit); err == nil {
		return unit, nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", nil, err
	}
	if len(obj) != 1 {
		return "", nil, fmt.Errorf("expected a single variant, got %d keys", len(obj))
	}
	for tag, payload := range obj {
		return tag, payload, nil
	}
	return "", nil, nil
}
