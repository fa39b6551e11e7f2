package python

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
)

// cacheVersion is the version of the on disk cache layout. If the layout
// ever changes in a backward incompatible manner this value will be changed.
const cacheVersion = "0"

// Cache memoizes interpreter metadata so repeated discovery runs do not
// spawn a subprocess per candidate. Entries are keyed by the canonical
// executable path and invalidated by the file's stat signature.
//
// If Temporary is true, Path is ignored and a throwaway cache is created.
// If Path is provided that will be the location of the cache. Otherwise
// the user cache directory is used.
type Cache struct {
	memo map[string]cacheEntry
	err  error

	Path      string
	Temporary bool

	mu   sync.Mutex
	once sync.Once
}

type cacheEntry struct {
	Interpreter Interpreter `json:"interpreter"`
	Size        int64       `json:"size"`
	ModTime     int64       `json:"mtime"`
}

// Query returns the metadata for the interpreter at path, spawning the
// introspection subprocess only when no valid cached record exists.
//
// Query errors are never cached, a broken interpreter is re-queried on the
// next run in case it has been fixed.
func (c *Cache) Query(ctx context.Context, path string) (Interpreter, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Interpreter{}, fmt.Errorf("could not resolve %s to an absolute path: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return Interpreter{}, err
	}
	size, modTime := info.Size(), info.ModTime().UnixNano()

	c.mu.Lock()
	entry, ok := c.memo[abs]
	c.mu.Unlock()
	if ok && entry.Size == size && entry.ModTime == modTime {
		return entry.Interpreter, nil
	}

	c.once.Do(c.setup)
	if c.err != nil {
		return Interpreter{}, c.err
	}

	entryPath := c.entryPath(abs)
	if data, err := os.ReadFile(entryPath); err == nil {
		if err := json.Unmarshal(data, &entry); err == nil && entry.Size == size && entry.ModTime == modTime {
			c.remember(abs, entry)
			return entry.Interpreter, nil
		}
	}

	interpreter, err := queryInterpreter(ctx, abs)
	if err != nil {
		return Interpreter{}, err
	}

	entry = cacheEntry{Size: size, ModTime: modTime, Interpreter: interpreter}
	if data, err := json.Marshal(entry); err == nil {
		// A failed write only costs us a subprocess next time
		if err := os.WriteFile(entryPath, data, 0o644); err != nil {
			log.WithField("path", entryPath).Debugln("Could not write interpreter cache entry")
		}
	}
	c.remember(abs, entry)

	return interpreter, nil
}

func (c *Cache) remember(abs string, entry cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.memo == nil {
		c.memo = make(map[string]cacheEntry)
	}
	c.memo[abs] = entry
}

func (c *Cache) entryPath(abs string) string {
	return filepath.Join(c.Path, cacheVersion, "interpreters", digest(abs)+".json")
}

func (c *Cache) setup() {
	if c.Temporary {
		path, err := ioutil.TempDir("", "pyscout-cache-*")
		if err != nil {
			c.err = err
			return
		}
		c.Path = path
	}

	if c.Path == "" {
		userCacheDir, err := os.UserCacheDir()
		if err != nil {
			c.err = err
			return
		}
		c.Path = filepath.Join(userCacheDir, "pyscout")
	}

	if err := os.MkdirAll(filepath.Join(c.Path, cacheVersion, "interpreters"), 0o777); err != nil {
		c.err = fmt.Errorf("creating cache directory: %w", err)
	}
}

// Close removes the cache directory if caching is temporary.
func (c *Cache) Close() error {
	setup := true
	c.once.Do(func() {
		setup = false
	})
	if setup && c.Temporary {
		return os.RemoveAll(c.Path)
	}

	return nil
}

// digest returns the hex sha256 of s, used to key cache entries and
// global lock files by path.
func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
