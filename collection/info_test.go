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

package collection_test

import (
	"testing"

	"github.com/retrofe/retrofe/collection"
	"github.com/retrofe/retrofe/test"
)

func names(items []*collection.Item) []string {
	n := make([]string, 0, len(items))
	for _, i := range items {
		n = append(n, i.Name)
	}
	return n
}

func equateNames(t *testing.T, items []*collection.Item, expected ...string) {
	t.Helper()
	got := names(items)
	test.DemandEquality(t, len(got), len(expected))
	for i := range got {
		test.Equate(t, got[i], expected[i])
	}
}

func leaf(info *collection.Info, name string, attrs ...string) *collection.Item {
	item := collection.NewItem(name, true, info)
	for i := 0; i+1 < len(attrs); i += 2 {
		item.Attributes[attrs[i]] = attrs[i+1]
	}
	return item
}

func TestSortItemsLeavesFirst(t *testing.T) {
	info := collection.NewInfo("arcade")
	menu := collection.NewItem("consoles", false, info)
	info.Items = []*collection.Item{
		menu,
		leaf(info, "galaga"),
		leaf(info, "pacman"),
		leaf(info, "defender"),
	}

	info.SortItems()
	equateNames(t, info.Items, "defender", "galaga", "pacman", "consoles")
}

func TestSortItemsAttribute(t *testing.T) {
	info := collection.NewInfo("arcade")
	info.SortType = "year"
	info.Items = []*collection.Item{
		leaf(info, "pacman", "year", "1980"),
		leaf(info, "defender", "year", "1981"),
		leaf(info, "galaga", "year", "1981"),
		leaf(info, "asteroids", "year", "1979"),
	}

	info.SortItems()
	equateNames(t, info.Items, "asteroids", "pacman", "defender", "galaga")

	// descending reverses attribute comparison but not the tiebreak
	info.SortDesc = true
	info.SortItems()
	equateNames(t, info.Items, "defender", "galaga", "pacman", "asteroids")
}

func TestSortItemsSubsSplit(t *testing.T) {
	info := collection.NewInfo("everything")
	info.SubsSplit = true

	subB := collection.NewInfo("Beta")
	subA := collection.NewInfo("alpha")
	info.Items = []*collection.Item{
		leaf(subB, "zaxxon"),
		leaf(subA, "pacman"),
		leaf(subB, "frogger"),
		leaf(subA, "galaga"),
	}

	// grouping is by lowercase subcollection name
	info.SortItems()
	equateNames(t, info.Items, "galaga", "pacman", "frogger", "zaxxon")
}

func TestSortIsStrictWeakOrder(t *testing.T) {
	info := collection.NewInfo("arcade")
	info.SortType = "year"
	info.Items = []*collection.Item{
		leaf(info, "b", "year", "1981"),
		leaf(info, "a", "year", "1981"),
		collection.NewItem("menu", false, info),
		leaf(info, "c", "year", "1980"),
	}
	info.SortItems()

	// no adjacent pair compares less in reverse
	for i := 1; i < len(info.Items); i++ {
		a := info.Items[i-1]
		b := info.Items[i]
		if a.Leaf == b.Leaf && a.Attribute("year") == b.Attribute("year") {
			test.Demand(t, a.FullTitle <= b.FullTitle)
		}
	}
	equateNames(t, info.Items, "c", "a", "b", "menu")
}

func TestCustomSort(t *testing.T) {
	info := collection.NewInfo("arcade")
	pacman := leaf(info, "pacman")
	galaga := leaf(info, "galaga")
	defender := leaf(info, "defender")
	zaxxon := leaf(info, "zaxxon")
	info.Items = []*collection.Item{pacman, galaga, defender, zaxxon}

	info.SetPlaylist("favorites", []*collection.Item{pacman, galaga, defender, zaxxon})
	info.CustomSort("favorites", []string{"zaxxon", "pacman"})

	// explicit order first, then the alphabetical tail
	favorites, ok := info.Playlist("favorites")
	test.Demand(t, ok)
	equateNames(t, favorites, "zaxxon", "pacman", "defender", "galaga")
}

func TestCustomSortCrossCollection(t *testing.T) {
	info := collection.NewInfo("arcade")
	other := collection.NewInfo("consoles")
	pacman := leaf(info, "pacman")
	sonic := leaf(other, "sonic")
	info.Items = []*collection.Item{pacman, sonic}

	info.SetPlaylist("favorites", []*collection.Item{pacman, sonic})
	info.CustomSort("favorites", []string{"_consoles:sonic", "pacman"})

	favorites, _ := info.Playlist("favorites")
	equateNames(t, favorites, "sonic", "pacman")
}

func TestAllPlaylistAliasesItems(t *testing.T) {
	info := collection.NewInfo("arcade")
	info.Items = append(info.Items, leaf(info, "pacman"))

	all, ok := info.Playlist("all")
	test.Demand(t, ok)
	test.Equate(t, len(all), 1)

	// mutations of Items are observed through the playlist
	info.Items = append(info.Items, leaf(info, "galaga"))
	all, _ = info.Playlist("all")
	test.Equate(t, len(all), 2)

	// and the alias cannot be replaced
	info.SetPlaylist("all", []*collection.Item{})
	all, _ = info.Playlist("all")
	test.Equate(t, len(all), 2)
}

func TestUpdateLastPlayed(t *testing.T) {
	info := collection.NewInfo("arcade")
	pacman := leaf(info, "pacman")
	galaga := leaf(info, "galaga")
	defender := leaf(info, "defender")
	info.Items = []*collection.Item{pacman, galaga, defender}
	info.SetPlaylist("lastplayed", []*collection.Item{galaga, defender})

	collection.UpdateLastPlayedPlaylist(info, pacman, 2)
	lp, _ := info.Playlist("lastplayed")
	equateNames(t, lp, "pacman", "galaga")

	// promoting an existing entry deduplicates
	collection.UpdateLastPlayedPlaylist(info, galaga, 2)
	lp, _ = info.Playlist("lastplayed")
	equateNames(t, lp, "galaga", "pacman")
}
