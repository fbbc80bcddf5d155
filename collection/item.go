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

import "strings"

// Item is one entry in a collection. A leaf item is a launchable game. A
// non-leaf item is a submenu entry leading to another collection.
type Item struct {
	// Name is unique within the owning collection. For a leaf it is the
	// stem of the discovered ROM file.
	Name string

	// Title and FullTitle are display names. FullTitle is also the final
	// tiebreak for sorting.
	Title     string
	FullTitle string

	// File optionally overrides the on-disk filename (without path).
	// Filepath optionally overrides the directory the file is found in.
	File     string
	Filepath string

	Leaf bool

	// the collection that instantiated this item. an item spliced in from
	// a subcollection keeps its subcollection here, which is what the
	// subsSplit grouping sorts on.
	Collection *Info

	// free-form metadata bag (developer, manufacturer, year, genre,
	// players, ctrlType, rating, score, playCount, timeSpent, lastPlayed,
	// releaseDate, iscoredId, iscoredType)
	Attributes map[string]string
}

// NewItem is the preferred method of initialisation for the Item type.
func NewItem(name string, leaf bool, owner *Info) *Item {
	return &Item{
		Name:       name,
		Title:      name,
		FullTitle:  name,
		Leaf:       leaf,
		Collection: owner,
		Attributes: make(map[string]string),
	}
}

// Attribute returns the named metadata value. Absent attributes are the
// empty string.
func (item *Item) Attribute(name string) string {
	return item.Attributes[name]
}

// FourWay returns true if the item's control type asks for a 4-way
// joystick gate.
func (item *Item) FourWay() bool {
	return strings.Contains(item.Attribute("ctrlType"), "4")
}

// CollectionName returns the name of the owning collection. Safe to call
// on an item with no owner.
func (item *Item) CollectionName() string {
	if item.Collection == nil {
		return ""
	}
	return item.Collection.Name
}

// Token returns the identifier used for this item in playlist files. An
// item belonging to the collection the playlist is saved under is a bare
// name. An item spliced in from another collection uses the
// _<collection>:<name> form.
func (item *Item) Token(owner string) string {
	if item.CollectionName() == owner || item.Collection == nil {
		return item.Name
	}
	return "_" + item.CollectionName() + ":" + item.Name
}
