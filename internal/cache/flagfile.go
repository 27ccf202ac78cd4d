package cache

import (
	"os"
	"path/filepath"
	"strings"
)

// degradedFlagName is the side file recording a latched memory-only
// downgrade. It lives beside the database so a fresh process starts in
// memory-only mode without touching the possibly-corrupt store.
const degradedFlagName = "cache.degraded"

// flagFile persists the degraded-mode latch across process restarts.
type flagFile struct {
	path string
}

func newFlagFile(dataDir string) flagFile {
	return flagFile{path: filepath.Join(dataDir, degradedFlagName)}
}

// isSet reports whether the degraded flag is present. Read errors count
// as "not set" so a broken flag file cannot disable the cache outright.
func (f flagFile) isSet() bool {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(b)) != ""
}

// set records the downgrade along with the reason, best effort.
func (f flagFile) set(reason string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(f.path, []byte(reason+"\n"), 0644)
}

// clear removes the flag. Missing file is not an error.
func (f flagFile) clear() error {
	err := os.Remove(f.path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
