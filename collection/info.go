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

// Package collection is the in-memory representation of a collection of
// games: its items, its playlists and the rules by which they are ordered.
// The Builder type constructs collections from the on-disk layout.
package collection

import (
	"sort"
	"strings"
)

// Info is one collection. The "all" playlist aliases the Items slice; the
// two always observe the same contents.
type Info struct {
	Name string

	// ListPath is the directory the collection's items were found in.
	ListPath   string
	Extensions []string

	Items []*Item

	// playlist name -> ordered item references. values point either at
	// Items (the "all" playlist) or at separately-owned slices
	Playlists map[string]*[]*Item

	MenuSort  bool
	SubsSplit bool
	HasSubs   bool
	SortDesc  bool
	SortType  string
}

// NewInfo is the preferred method of initialisation for the Info type.
func NewInfo(name string) *Info {
	info := &Info{
		Name:      name,
		Playlists: make(map[string]*[]*Item),
		MenuSort:  true,
	}
	info.Playlists["all"] = &info.Items
	return info
}

// Playlist returns the named playlist. The second return value is false
// if the playlist does not exist.
func (info *Info) Playlist(name string) ([]*Item, bool) {
	p, ok := info.Playlists[name]
	if !ok {
		return nil, false
	}
	return *p, true
}

// SetPlaylist replaces the named playlist. Replacing "all" is forbidden,
// that playlist always aliases Items.
func (info *Info) SetPlaylist(name string, items []*Item) {
	if name == "all" {
		return
	}
	p, ok := info.Playlists[name]
	if !ok {
		p = new([]*Item)
		info.Playlists[name] = p
	}
	*p = items
}

// PlaylistNames returns the playlist names in sorted order.
func (info *Info) PlaylistNames() []string {
	names := make([]string, 0, len(info.Playlists))
	for n := range info.Playlists {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FindItem returns the item with the given name, searching the items of
// this collection and its spliced-in subcollections.
func (info *Info) FindItem(name string) (*Item, bool) {
	for _, item := range info.Items {
		if item.Name == name {
			return item, true
		}
	}
	return nil, false
}

// itemIsLess is the ordering used everywhere items are sorted.
//
// Leaves precede non-leaves. When the collection has subsSplit, items from
// different subcollections group by lowercase subcollection name. When not
// menusort, non-leaf order is preserved. A sort attribute compares as a
// string, reversed by sortDesc, with lowercase full title as the final
// tiebreak.
func itemIsLess(a *Item, b *Item, sortAttr string, sortDesc bool, menuSort bool, subsSplit bool) bool {
	if a.Leaf != b.Leaf {
		return a.Leaf
	}

	if subsSplit {
		ca := strings.ToLower(a.CollectionName())
		cb := strings.ToLower(b.CollectionName())
		if ca != cb {
			return ca < cb
		}
	}

	if !a.Leaf && !menuSort {
		return false
	}

	if sortAttr != "" {
		va := a.Attribute(sortAttr)
		vb := b.Attribute(sortAttr)
		if va != vb {
			if sortDesc {
				return vb < va
			}
			return va < vb
		}
	}

	return strings.ToLower(a.FullTitle) < strings.ToLower(b.FullTitle)
}

// SortItems sorts the collection's items by the collection's sort type.
// A no-op when menusort is off.
func (info *Info) SortItems() {
	if !info.MenuSort {
		return
	}
	sort.SliceStable(info.Items, func(i, j int) bool {
		return itemIsLess(info.Items[i], info.Items[j], info.SortType, info.SortDesc, info.MenuSort, info.SubsSplit)
	})
}

// SortPlaylist sorts the named playlist by the supplied metadata
// attribute. The sort only happens when every item in the playlist has a
// non-empty value for the attribute; the return value says whether it did.
func (info *Info) SortPlaylist(name string, attr string) bool {
	if name == "all" {
		return false
	}
	p, ok := info.Playlists[name]
	if !ok {
		return false
	}

	for _, item := range *p {
		if item.Attribute(attr) == "" {
			return false
		}
	}

	sort.SliceStable(*p, func(i, j int) bool {
		return itemIsLess((*p)[i], (*p)[j], attr, info.SortDesc, info.MenuSort, info.SubsSplit)
	})
	return true
}

// CustomSort orders the named playlist by an explicit list of item
// tokens. Items named in order appear first, in exactly that order. Items
// not named follow, alphabetically by lowercase full title.
func (info *Info) CustomSort(name string, order []string) {
	p, ok := info.Playlists[name]
	if !ok || name == "all" {
		return
	}

	rank := make(map[string]int, len(order))
	for i, tok := range order {
		if _, ok := rank[tok]; !ok {
			rank[tok] = i
		}
	}

	tokenRank := func(item *Item) (int, bool) {
		if r, ok := rank[item.Token(info.Name)]; ok {
			return r, true
		}
		// a bare name in the order list matches an item from any
		// collection if the qualified form was not used
		if r, ok := rank[item.Name]; ok {
			return r, true
		}
		return 0, false
	}

	sort.SliceStable(*p, func(i, j int) bool {
		ri, iOrdered := tokenRank((*p)[i])
		rj, jOrdered := tokenRank((*p)[j])
		if iOrdered != jOrdered {
			return iOrdered
		}
		if iOrdered {
			return ri < rj
		}
		return strings.ToLower((*p)[i].FullTitle) < strings.ToLower((*p)[j].FullTitle)
	})
}
