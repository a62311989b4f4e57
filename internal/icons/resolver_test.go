package icons

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/atomicstack/popup-launcher/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestResolvePrefersScalable(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "icons", "hicolor", "48x48", "apps", "firefox.png")
	svg := filepath.Join(dir, "icons", "hicolor", "scalable", "apps", "firefox.svg")
	touch(t, png)
	touch(t, svg)

	r, err := NewResolver([]string{dir}, 8)
	require.NoError(t, err)
	path, ok := r.Resolve(protocol.NamedIcon("firefox"), "")
	assert.True(t, ok)
	assert.Equal(t, svg, path)
}

func TestResolveFallsBackToAppsPng(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "icons", "hicolor", "48x48", "apps", "gimp.png")
	touch(t, png)
	touch(t, filepath.Join(dir, "icons", "hicolor", "48x48", "status", "gimp.png"))

	r, err := NewResolver([]string{dir}, 8)
	require.NoError(t, err)
	path, ok := r.Resolve(protocol.NamedIcon("gimp"), "")
	assert.True(t, ok)
	assert.Equal(t, png, path)
}

func TestResolveMimeNeedsTheme(t *testing.T) {
	dir := t.TempDir()
	svg := filepath.Join(dir, "icons", "Pop", "scalable", "mimetypes", "text-plain.svg")
	touch(t, svg)

	r, err := NewResolver([]string{dir}, 8)
	require.NoError(t, err)
	_, ok := r.Resolve(protocol.MimeIcon("text/plain"), "")
	assert.False(t, ok)

	path, ok := r.Resolve(protocol.MimeIcon("text/plain"), "Pop")
	assert.True(t, ok)
	assert.Equal(t, svg, path)
}

func TestResolveCachesMisses(t *testing.T) {
	dir := t.TempDir()
	r, err := NewResolver([]string{dir}, 8)
	require.NoError(t, err)

	_, ok := r.Resolve(protocol.NamedIcon("late"), "")
	assert.False(t, ok)

	touch(t, filepath.Join(dir, "icons", "hicolor", "scalable", "apps", "late.svg"))
	_, ok = r.Resolve(protocol.NamedIcon("late"), "")
	assert.False(t, ok, "miss should be served from cache")
}

func TestResolveNilAndAbsolute(t *testing.T) {
	r, err := NewResolver(nil, 0)
	require.NoError(t, err)
	_, ok := r.Resolve(nil, "")
	assert.False(t, ok)

	file := filepath.Join(t.TempDir(), "icon.png")
	touch(t, file)
	path, ok := r.Resolve(protocol.NamedIcon(file), "")
	assert.True(t, ok)
	assert.Equal(t, file, path)
}
