package desktop

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
)

var (
	// ErrNoExec means the entry has nothing to run.
	ErrNoExec = errors.New("desktop entry has no Exec")
	// ErrNoGroup means the file lacks a [Desktop Entry] group.
	ErrNoGroup = errors.New("missing [Desktop Entry] group")
)

const mainGroup = "Desktop Entry"

// Entry holds the keys of a [Desktop Entry] group the launcher cares about.
type Entry struct {
	Path        string
	Name        string
	GenericName string
	Comment     string
	Icon        string
	Exec        string
	WorkDir     string
	Type        string
	Terminal    bool
	NoDisplay   bool
	Hidden      bool
	Keywords    []string
	Categories  []string
}

// ID is the desktop file id, the base name of the file.
func (e *Entry) ID() string {
	return filepath.Base(e.Path)
}

// Visible reports whether the entry should be offered to users.
func (e *Entry) Visible() bool {
	return e.Type == "Application" && e.Name != "" && !e.NoDisplay && !e.Hidden
}

// Parse reads a desktop entry file. Only the main group is read and localised
// keys are skipped.
func Parse(r io.Reader, path string) (*Entry, error) {
	entry := &Entry{Path: path}
	scanner := bufio.NewScanner(r)
	group := ""
	seen := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			group = line[1 : len(line)-1]
			if group == mainGroup {
				seen = true
			}
			continue
		}
		if group != mainGroup {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if strings.Contains(key, "[") {
			continue
		}
		entry.set(key, unescape(strings.TrimSpace(value)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !seen {
		return nil, fmt.Errorf("%s: %w", path, ErrNoGroup)
	}
	return entry, nil
}

func (e *Entry) set(key, value string) {
	switch key {
	case "Name":
		e.Name = value
	case "GenericName":
		e.GenericName = value
	case "Comment":
		e.Comment = value
	case "Icon":
		e.Icon = value
	case "Exec":
		e.Exec = value
	case "Path":
		e.WorkDir = value
	case "Type":
		e.Type = value
	case "Terminal":
		e.Terminal = value == "true"
	case "NoDisplay":
		e.NoDisplay = value == "true"
	case "Hidden":
		e.Hidden = value == "true"
	case "Keywords":
		e.Keywords = splitList(value)
	case "Categories":
		e.Categories = splitList(value)
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var escapes = strings.NewReplacer(`\s`, " ", `\n`, "\n", `\t`, "\t", `\r`, "\r", `\\`, `\`)

func unescape(value string) string {
	if !strings.Contains(value, `\`) {
		return value
	}
	return escapes.Replace(value)
}

// Command splits Exec into argv with field codes removed.
func (e *Entry) Command() ([]string, error) {
	if strings.TrimSpace(e.Exec) == "" {
		return nil, fmt.Errorf("%s: %w", e.Path, ErrNoExec)
	}
	fields, err := shlex.Split(e.Exec)
	if err != nil {
		return nil, fmt.Errorf("split Exec of %s: %w", e.Path, err)
	}
	argv := make([]string, 0, len(fields))
	for _, field := range fields {
		arg, keep := expandField(field)
		if keep {
			argv = append(argv, arg)
		}
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("%s: %w", e.Path, ErrNoExec)
	}
	return argv, nil
}

// expandField drops field codes from one argument. An argument made only of
// field codes is dropped entirely.
func expandField(field string) (string, bool) {
	if !strings.Contains(field, "%") {
		return field, true
	}
	var b strings.Builder
	dropped := false
	for i := 0; i < len(field); i++ {
		if field[i] != '%' || i+1 >= len(field) {
			b.WriteByte(field[i])
			continue
		}
		i++
		if field[i] == '%' {
			b.WriteByte('%')
			continue
		}
		dropped = true
	}
	if dropped && b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}
