package utils

import (
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds a FileCache created without an explicit size
const DefaultCacheSize = 128

// fileStamp identifies a version of a file on disk
type fileStamp struct {
	modTime time.Time
	size    int64
}

type cacheItem[V any] struct {
	value V
	stamp fileStamp
}

// FileCache caches values derived from a file. An entry is dropped as soon as
// the file's modification time or size changes, and the least recently used
// entries are evicted once the cache is full. It is safe for concurrent use.
type FileCache[V any] struct {
	items *lru.Cache[string, cacheItem[V]]
}

// NewFileCache creates an empty cache holding at most size entries; a size
// below one selects DefaultCacheSize
func NewFileCache[V any](size int) *FileCache[V] {
	if size < 1 {
		size = DefaultCacheSize
	}
	// lru.New only fails for non-positive sizes
	items, _ := lru.New[string, cacheItem[V]](size)
	return &FileCache[V]{items: items}
}

// Get returns the value cached for path if the file has not changed since
func (c *FileCache[V]) Get(path string) (V, bool) {
	var zero V
	item, exists := c.items.Get(path)
	if !exists {
		return zero, false
	}

	stamp, err := stat(path)
	if err == nil && stamp == item.stamp {
		return item.value, true
	}

	c.items.Remove(path)
	return zero, false
}

// Set stores value for the current version of path
func (c *FileCache[V]) Set(path string, value V) error {
	stamp, err := stat(path)
	if err != nil {
		return err
	}
	c.items.Add(path, cacheItem[V]{value: value, stamp: stamp})
	return nil
}

// Delete removes the entry for path
func (c *FileCache[V]) Delete(path string) {
	c.items.Remove(path)
}

// Clear removes every entry
func (c *FileCache[V]) Clear() {
	c.items.Purge()
}

// Size returns the number of cached entries
func (c *FileCache[V]) Size() int {
	return c.items.Len()
}

func stat(path string) (fileStamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, err
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size()}, nil
}
