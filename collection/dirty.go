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

package collection

import (
	"sort"
	"sync"
)

// DirtyRegistry records which playlist files have changed on disk since
// their collection was last rebuilt. The payload sync marks playlists it
// rewrites; the frontend drains the registry when it next shows the
// collection.
//
// Safe for concurrent use. The lock is held only for map operations.
type DirtyRegistry struct {
	crit  sync.Mutex
	dirty map[string]map[string]bool
}

// NewDirtyRegistry is the preferred method of initialisation for the
// DirtyRegistry type.
func NewDirtyRegistry() *DirtyRegistry {
	return &DirtyRegistry{
		dirty: make(map[string]map[string]bool),
	}
}

// AddPath marks the playlist named by a relative path as dirty. Paths
// that do not parse as playlist paths are ignored and the return value is
// false.
func (reg *DirtyRegistry) AddPath(rel string) bool {
	pp, ok := ParsePlaylistPath(rel)
	if !ok {
		return false
	}

	reg.crit.Lock()
	defer reg.crit.Unlock()

	if reg.dirty[pp.Collection] == nil {
		reg.dirty[pp.Collection] = make(map[string]bool)
	}
	reg.dirty[pp.Collection][pp.Playlist] = true
	return true
}

// IsDirty returns true if the playlist has been marked since the last
// drain.
func (reg *DirtyRegistry) IsDirty(collection string, playlist string) bool {
	reg.crit.Lock()
	defer reg.crit.Unlock()
	return reg.dirty[collection][playlist]
}

// ClearOne unmarks a single playlist.
func (reg *DirtyRegistry) ClearOne(collection string, playlist string) {
	reg.crit.Lock()
	defer reg.crit.Unlock()
	delete(reg.dirty[collection], playlist)
}

// DrainForCollection atomically returns the dirty playlists of a
// collection, sorted, and clears them.
func (reg *DirtyRegistry) DrainForCollection(collection string) []string {
	reg.crit.Lock()
	defer reg.crit.Unlock()

	set := reg.dirty[collection]
	if len(set) == 0 {
		return nil
	}
	delete(reg.dirty, collection)

	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
