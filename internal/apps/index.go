package apps

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atomicstack/popup-launcher/internal/desktop"
	"github.com/atomicstack/popup-launcher/internal/logging"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRefreshInterval = 5 * time.Second
	parseWorkers           = 8
)

// Index holds the visible desktop entries found in a set of directories.
type Index struct {
	dirs    []string
	refresh *throttle

	mu      sync.RWMutex
	entries []*desktop.Entry
}

// NewIndex indexes dirs, which are searched in precedence order.
func NewIndex(dirs []string) *Index {
	return &Index{dirs: dirs, refresh: newThrottle(defaultRefreshInterval)}
}

// Load rescans every directory and replaces the entry list.
func (idx *Index) Load() error {
	paths := idx.collect()
	parsed := make([]*desktop.Entry, len(paths))
	var g errgroup.Group
	g.SetLimit(parseWorkers)
	for i, path := range paths {
		g.Go(func() error {
			entry, err := parseFile(path)
			if err != nil {
				l := logging.Component("apps")
				l.Debug().Err(err).Str("path", path).Msg("skip desktop file")
				return nil
			}
			parsed[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	entries := make([]*desktop.Entry, 0, len(parsed))
	for _, entry := range parsed {
		if entry != nil && entry.Visible() {
			entries = append(entries, entry)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	idx.mu.Lock()
	idx.entries = entries
	idx.mu.Unlock()
	return nil
}

// MaybeRefresh reloads the index unless it was refreshed recently.
func (idx *Index) MaybeRefresh() {
	if !idx.refresh.allow() {
		return
	}
	if err := idx.Load(); err != nil {
		logging.Warn("refresh application index", err)
	}
}

// collect lists .desktop files. The first directory providing a desktop id
// wins.
func (idx *Index) collect() []string {
	var paths []string
	seen := map[string]bool{}
	for _, dir := range idx.dirs {
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".desktop") {
				return nil
			}
			id := desktopID(dir, path)
			if seen[id] {
				return nil
			}
			seen[id] = true
			paths = append(paths, path)
			return nil
		})
	}
	return paths
}

// desktopID follows the XDG rule: the path relative to the applications dir
// with separators replaced by dashes.
func desktopID(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return filepath.Base(path)
	}
	return strings.ReplaceAll(rel, string(filepath.Separator), "-")
}

func parseFile(path string) (*desktop.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return desktop.Parse(f, path)
}

// Len reports the number of indexed entries.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Search ranks entries against query. An empty query lists entries
// alphabetically.
func (idx *Index) Search(query string, limit int) []*desktop.Entry {
	idx.mu.RLock()
	entries := idx.entries
	idx.mu.RUnlock()

	query = strings.TrimSpace(query)
	if query == "" {
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}
		return append([]*desktop.Entry(nil), entries...)
	}

	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return strings.ToLower(ranks[i].Target) < strings.ToLower(ranks[j].Target)
	})

	out := make([]*desktop.Entry, 0, len(ranks))
	for _, rank := range ranks {
		out = append(out, entries[rank.OriginalIndex])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
