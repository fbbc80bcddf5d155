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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/retrofe/retrofe/collection"
	"github.com/retrofe/retrofe/config"
	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/metadata"
	"github.com/retrofe/retrofe/resources"
	"github.com/retrofe/retrofe/test"
)

// lays out a small installation with an arcade collection.
func arcadeFixture(t *testing.T) (*config.Configuration, string) {
	t.Helper()
	root := t.TempDir()
	resources.SetBaseDir(root)

	romDir := filepath.Join(root, "collections", "arcade", "roms")
	test.ExpectedSuccess(t, os.MkdirAll(romDir, 0755))
	for _, f := range []string{"pacman.zip", "galaga.zip", "defender.zip", "readme.md"} {
		test.ExpectedSuccess(t, os.WriteFile(filepath.Join(romDir, f), []byte{}, 0644))
	}

	infoDir := filepath.Join(root, "collections", "arcade", "info")
	test.ExpectedSuccess(t, os.MkdirAll(infoDir, 0755))
	test.ExpectedSuccess(t, os.WriteFile(filepath.Join(infoDir, "pacman.conf"),
		[]byte("fullTitle=Pac-Man\nyear=1980\nctrlType=4-way\n"), 0644))
	test.ExpectedSuccess(t, os.WriteFile(filepath.Join(infoDir, "default.conf"),
		[]byte("year=1981\n"), 0644))

	playlistDir := filepath.Join(root, "collections", "arcade", "playlists")
	test.ExpectedSuccess(t, os.MkdirAll(playlistDir, 0755))
	test.ExpectedSuccess(t, os.WriteFile(filepath.Join(playlistDir, "favorites.txt"),
		[]byte("galaga\npacman\n"), 0644))

	cfg := config.NewConfiguration()
	cfg.SetProperty("collections.arcade.list.extensions", "zip")
	return cfg, root
}

func TestBuild(t *testing.T) {
	cfg, _ := arcadeFixture(t)

	bld := collection.NewBuilder(cfg, nil)
	info, err := bld.Build("arcade")
	test.ExpectedSuccess(t, err)

	// readme.md is filtered by the extension list
	equateNames(t, info.Items, "defender", "galaga", "pacman")

	// info overrides: per-item conf beats default.conf
	pacman, ok := info.FindItem("pacman")
	test.Demand(t, ok)
	test.Equate(t, pacman.FullTitle, "Pac-Man")
	test.Equate(t, pacman.Attribute("year"), "1980")
	test.Demand(t, pacman.FourWay())

	galaga, _ := info.FindItem("galaga")
	test.Equate(t, galaga.Attribute("year"), "1981")

	// every directly-owned item points back at the collection
	for _, item := range info.Items {
		test.Demand(t, item.Collection == info)
	}

	// favorites loaded in file order. quicklist and lastplayed exist
	favorites, ok := info.Playlist("favorites")
	test.Demand(t, ok)
	equateNames(t, favorites, "galaga", "pacman")
	_, ok = info.Playlist("quicklist")
	test.Demand(t, ok)
	_, ok = info.Playlist("lastplayed")
	test.Demand(t, ok)
}

func TestBuildMissingCollection(t *testing.T) {
	resources.SetBaseDir(t.TempDir())
	bld := collection.NewBuilder(config.NewConfiguration(), nil)
	_, err := bld.Build("nosuch")
	test.ExpectedFailure(t, err)
	test.Demand(t, curated.Is(err, collection.NoSuchCollection))
}

func TestFavoriteToggleIsDurable(t *testing.T) {
	cfg, _ := arcadeFixture(t)
	bld := collection.NewBuilder(cfg, nil)

	info, err := bld.Build("arcade")
	test.ExpectedSuccess(t, err)

	// add defender to favorites and save
	defender, _ := info.FindItem("defender")
	favorites, _ := info.Playlist("favorites")
	info.SetPlaylist("favorites", append(favorites, defender))
	test.ExpectedSuccess(t, collection.SaveFavorites(info))

	// rebuilding places defender into favorites
	info, err = bld.Build("arcade")
	test.ExpectedSuccess(t, err)
	favorites, _ = info.Playlist("favorites")
	equateNames(t, favorites, "galaga", "pacman", "defender")
}

func TestSubcollections(t *testing.T) {
	cfg, root := arcadeFixture(t)

	// a classics subcollection spliced into arcade
	romDir := filepath.Join(root, "collections", "classics", "roms")
	test.ExpectedSuccess(t, os.MkdirAll(romDir, 0755))
	test.ExpectedSuccess(t, os.WriteFile(filepath.Join(romDir, "asteroids.zip"), []byte{}, 0644))
	test.ExpectedSuccess(t, os.WriteFile(
		filepath.Join(root, "collections", "arcade", "classics.sub"), []byte{}, 0644))
	cfg.SetProperty("collections.classics.list.extensions", "zip")
	cfg.SetProperty("collections.arcade.list.menuSort", "false")

	bld := collection.NewBuilder(cfg, nil)
	info, err := bld.Build("arcade")
	test.ExpectedSuccess(t, err)

	test.Demand(t, info.HasSubs)

	// spliced items precede the collection's own and keep their owner
	equateNames(t, info.Items, "asteroids", "defender", "galaga", "pacman")
	asteroids, _ := info.FindItem("asteroids")
	test.Equate(t, asteroids.CollectionName(), "classics")
}

func TestLastPlayedFromMetadata(t *testing.T) {
	cfg, root := arcadeFixture(t)
	cfg.SetProperty("lastPlayedSize", "2")

	meta, err := metadata.NewStore(filepath.Join(root, "stats.dat"))
	test.ExpectedSuccess(t, err)
	when := time.Unix(1700000000, 0)
	meta.AddPlay("arcade", "galaga", time.Minute, when)
	meta.AddPlay("arcade", "pacman", time.Minute, when.Add(time.Hour))
	meta.AddPlay("arcade", "defender", time.Minute, when.Add(2*time.Hour))

	bld := collection.NewBuilder(cfg, meta)
	info, err := bld.Build("arcade")
	test.ExpectedSuccess(t, err)

	// most recent first, truncated to lastPlayedSize
	lp, _ := info.Playlist("lastplayed")
	equateNames(t, lp, "defender", "pacman")

	// play statistics surface as sort attributes
	pacman, _ := info.FindItem("pacman")
	test.Equate(t, pacman.Attribute("playCount"), "1")
}
