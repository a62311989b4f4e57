package desktop

import (
	"os"
	"path/filepath"
	"strings"
)

// DataDirs lists XDG data directories in precedence order: the user's data
// home first, then the system data dirs.
func DataDirs() []string {
	home := os.Getenv("XDG_DATA_HOME")
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = filepath.Join(h, ".local", "share")
		}
	}
	system := os.Getenv("XDG_DATA_DIRS")
	if system == "" {
		system = "/usr/local/share:/usr/share"
	}
	var dirs []string
	seen := map[string]bool{}
	for _, dir := range append([]string{home}, strings.Split(system, ":")...) {
		if dir == "" || seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}

// ApplicationDirs returns the applications subdirectory of each data dir.
func ApplicationDirs() []string {
	dirs := DataDirs()
	for i, dir := range dirs {
		dirs[i] = filepath.Join(dir, "applications")
	}
	return dirs
}
