// Package fileid hands out stable numeric ids for source file paths. Ids
// are dense, start at 0 and follow first-seen order; they live as long as
// the Cache.
package fileid

import (
	"path"
	"strings"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"symbol-indexer/internal/taskqueue"
)

// Cache interns file paths. Lookups of known paths are lock-free; assigning
// a new id takes a mutex so ids stay dense.
type Cache struct {
	ids *xsync.MapOf[string, taskqueue.FileID]

	mu    sync.Mutex
	paths []string
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{ids: xsync.NewMapOf[string, taskqueue.FileID]()}
}

// Normalize turns p into the canonical slash-separated form used as key.
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return path.Clean(p)
}

// FileID returns the id for p, assigning one on first sight.
func (c *Cache) FileID(p string) taskqueue.FileID {
	p = Normalize(p)
	if id, ok := c.ids.Load(p); ok {
		return id
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.ids.Load(p); ok {
		return id
	}
	id := taskqueue.FileID(len(c.paths))
	c.paths = append(c.paths, p)
	c.ids.Store(p, id)
	return id
}

// FileIDs resolves several paths, keeping input order.
func (c *Cache) FileIDs(paths []string) []taskqueue.FileID {
	out := make([]taskqueue.FileID, len(paths))
	for i, p := range paths {
		out[i] = c.FileID(p)
	}
	return out
}

// Path returns the normalized path behind id.
func (c *Cache) Path(id taskqueue.FileID) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if int(id) >= len(c.paths) {
		return "", false
	}
	return c.paths[id], true
}

// Len is the number of known paths.
func (c *Cache) Len() int { return c.ids.Size() }
