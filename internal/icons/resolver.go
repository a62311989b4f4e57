package icons

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/atomicstack/popup-launcher/internal/protocol"
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 256

// Resolver maps icon sources to files under the XDG icon directories.
type Resolver struct {
	dirs  []string
	cache *lru.Cache[string, string]
}

// NewResolver searches <dir>/icons for each data dir. A non-positive size
// uses the default cache size.
func NewResolver(dataDirs []string, size int) (*Resolver, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Resolver{dirs: dataDirs, cache: cache}, nil
}

// Resolve returns the icon file for src. Misses are cached too.
func (r *Resolver) Resolve(src *protocol.IconSource, theme string) (string, bool) {
	if src == nil {
		return "", false
	}
	key := cacheKey(src, theme)
	if path, ok := r.cache.Get(key); ok {
		return path, path != ""
	}
	path := r.lookup(src, theme)
	r.cache.Add(key, path)
	return path, path != ""
}

func cacheKey(src *protocol.IconSource, theme string) string {
	if src.Mime != "" {
		return "mime:" + src.Mime + "@" + theme
	}
	return "name:" + src.Name + "@" + theme
}

func (r *Resolver) lookup(src *protocol.IconSource, theme string) string {
	if src.Mime != "" {
		if theme == "" {
			return ""
		}
		name := strings.ReplaceAll(src.Mime, "/", "-")
		for _, dir := range r.dirs {
			if path := find(filepath.Join(dir, "icons", theme), name, "mimetypes"); path != "" {
				return path
			}
		}
		return ""
	}
	if src.Name == "" {
		return ""
	}
	if filepath.IsAbs(src.Name) {
		if _, err := os.Stat(src.Name); err == nil {
			return src.Name
		}
		return ""
	}
	for _, dir := range r.dirs {
		if path := find(filepath.Join(dir, "icons"), src.Name, "apps"); path != "" {
			return path
		}
	}
	return ""
}

// find prefers a scalable svg anywhere under root and falls back to the first
// png inside a directory named pngDir.
func find(root, name, pngDir string) string {
	svg := name + ".svg"
	png := name + ".png"
	var fallback string
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		switch d.Name() {
		case svg:
			if strings.Contains(path, string(filepath.Separator)+"scalable"+string(filepath.Separator)) {
				found = path
				return fs.SkipAll
			}
		case png:
			if fallback == "" && filepath.Base(filepath.Dir(path)) == pngDir {
				fallback = path
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.SkipAll) {
		return ""
	}
	if found != "" {
		return found
	}
	return fallback
}
