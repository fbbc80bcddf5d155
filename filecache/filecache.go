// This file is part of RetroFE.
//
// RetroFE is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// RetroFE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with RetroFE.  If not, see <https://www.gnu.org/licenses/>.

// Package filecache memoizes directory listings so that artwork and ROM
// probing does not hit the filesystem on every menu scroll. Collections on
// network mounts are the motivating case.
//
// The cache is not safe for concurrent use. All lookups happen on the main
// thread. Reseed after anything that changes a watched directory.
package filecache

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/retrofe/retrofe/logger"
)

// the number of directory listings held before the least recently used is
// evicted.
const defaultCapacity = 4096

// listing is the memoized content of one directory. A directory that does
// not exist is remembered too, with exists set to false, so repeated
// probes of a missing artwork directory cost nothing.
type listing struct {
	exists bool

	// lower-cased name -> name as it appears on disk
	names map[string]string
}

// Cache memoizes directory listings.
type Cache struct {
	dirs *lru.Cache[string, *listing]

	// case-insensitive hosts fold filenames on lookup
	foldCase bool
}

// NewCache is the preferred method of initialisation for the Cache type.
func NewCache() (*Cache, error) {
	dirs, err := lru.New[string, *listing](defaultCapacity)
	if err != nil {
		return nil, err
	}
	return &Cache{
		dirs:     dirs,
		foldCase: runtime.GOOS == "windows" || runtime.GOOS == "darwin",
	}, nil
}

func (c *Cache) dir(path string) *listing {
	path = filepath.Clean(path)
	if l, ok := c.dirs.Get(path); ok {
		return l
	}

	l := &listing{}
	entries, err := os.ReadDir(path)
	if err == nil {
		l.exists = true
		l.names = make(map[string]string, len(entries))
		for _, e := range entries {
			l.names[strings.ToLower(e.Name())] = e.Name()
		}
		logger.Logf(logger.FileCache, "filecache", "seeded %s (%d entries)", path, len(entries))
	} else {
		logger.Logf(logger.FileCache, "filecache", "negative entry for %s", path)
	}

	c.dirs.Add(path, l)
	return l
}

// Exists returns true if the named file exists in the directory.
func (c *Cache) Exists(dir string, name string) bool {
	_, ok := c.lookup(dir, name)
	return ok
}

// lookup returns the on-disk name for the requested name.
func (c *Cache) lookup(dir string, name string) (string, bool) {
	l := c.dir(dir)
	if !l.exists {
		return "", false
	}

	if c.foldCase {
		n, ok := l.names[strings.ToLower(name)]
		return n, ok
	}

	// exact match only on case-sensitive hosts. the map key is folded so
	// compare the stored name
	if n, ok := l.names[strings.ToLower(name)]; ok && n == name {
		return n, true
	}
	return "", false
}

// Find returns the full path of the named file in the directory.
func (c *Cache) Find(dir string, name string) (string, bool) {
	if n, ok := c.lookup(dir, name); ok {
		return filepath.Join(dir, n), true
	}
	return "", false
}

// FindMatchingFile looks for prefix.ext in the directory for each of the
// extensions in turn, returning the full path of the first match. The
// extensions are tried in the order given, without a leading dot.
func (c *Cache) FindMatchingFile(dir string, prefix string, extensions []string) (string, bool) {
	for _, ext := range extensions {
		if n, ok := c.lookup(dir, prefix+"."+ext); ok {
			return filepath.Join(dir, n), true
		}
	}
	return "", false
}

// Reseed discards the memoized listing of a directory. The next lookup
// reads the directory again.
func (c *Cache) Reseed(dir string) {
	dir = filepath.Clean(dir)
	if c.dirs.Remove(dir) {
		logger.Logf(logger.FileCache, "filecache", "reseed %s", dir)
	}
}

// Purge discards every memoized listing.
func (c *Cache) Purge() {
	c.dirs.Purge()
	logger.Log(logger.FileCache, "filecache", "purged")
}
