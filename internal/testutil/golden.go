package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// AssertGolden compares rendered output with testdata/<name> under the module
// root. Trailing spaces are ignored since padded rows end in them. A missing
// file, or UPDATE_GOLDEN=1, records the output instead.
func AssertGolden(t *testing.T, name, output string) {
	t.Helper()
	output = normalizeGolden(output)
	path := filepath.Join(moduleRoot(t), "testdata", name)
	want, err := os.ReadFile(path)
	if os.Getenv("UPDATE_GOLDEN") != "" || os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(output), 0o644); err != nil {
			t.Fatalf("write golden %s: %v", name, err)
		}
		t.Logf("recorded golden %s", name)
		return
	}
	if err != nil {
		t.Fatalf("read golden %s: %v", name, err)
	}
	expected := normalizeGolden(string(want))
	if expected == output {
		return
	}
	wantLines := strings.Split(expected, "\n")
	gotLines := strings.Split(output, "\n")
	for i := 0; i < len(wantLines) || i < len(gotLines); i++ {
		var w, g string
		if i < len(wantLines) {
			w = wantLines[i]
		}
		if i < len(gotLines) {
			g = gotLines[i]
		}
		if w != g {
			t.Fatalf("golden %s differs at line %d\nwant: %q\n got: %q\nfull output:\n%s", name, i+1, w, g, output)
		}
	}
}

func normalizeGolden(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n") + "\n"
}

func moduleRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
