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

package filecache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/retrofe/retrofe/filecache"
	"github.com/retrofe/retrofe/test"
)

func touch(t *testing.T, path string) {
	t.Helper()
	err := os.WriteFile(path, []byte{}, 0644)
	test.ExpectedSuccess(t, err)
}

func TestFindMatchingFile(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "pacman.zip"))
	touch(t, filepath.Join(dir, "galaga.7z"))

	c, err := filecache.NewCache()
	test.ExpectedSuccess(t, err)

	p, ok := c.FindMatchingFile(dir, "pacman", []string{"zip", "7z"})
	test.Demand(t, ok)
	test.Equate(t, p, filepath.Join(dir, "pacman.zip"))

	// extensions are tried in order
	p, ok = c.FindMatchingFile(dir, "galaga", []string{"zip", "7z"})
	test.Demand(t, ok)
	test.Equate(t, p, filepath.Join(dir, "galaga.7z"))

	_, ok = c.FindMatchingFile(dir, "defender", []string{"zip", "7z"})
	test.Demand(t, !ok)
}

func TestNegativeCacheAndReseed(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "artwork")

	c, err := filecache.NewCache()
	test.ExpectedSuccess(t, err)

	// directory does not exist yet. the miss is memoized
	test.Demand(t, !c.Exists(missing, "logo.png"))

	err = os.MkdirAll(missing, 0755)
	test.ExpectedSuccess(t, err)
	touch(t, filepath.Join(missing, "logo.png"))

	// still a miss until reseeded
	test.Demand(t, !c.Exists(missing, "logo.png"))

	c.Reseed(missing)
	test.Demand(t, c.Exists(missing, "logo.png"))
}

func TestStaleListing(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "one.txt"))

	c, err := filecache.NewCache()
	test.ExpectedSuccess(t, err)
	test.Demand(t, c.Exists(dir, "one.txt"))

	// a file added after seeding is invisible until Purge
	touch(t, filepath.Join(dir, "two.txt"))
	test.Demand(t, !c.Exists(dir, "two.txt"))

	c.Purge()
	test.Demand(t, c.Exists(dir, "two.txt"))
}
