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

package launcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/retrofe/retrofe/collection"
	"github.com/retrofe/retrofe/config"
	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/filecache"
	"github.com/retrofe/retrofe/resources"
	"github.com/retrofe/retrofe/test"
)

// launcherFixture lays out an install root with one collection, one rom
// and a per-item launcher override.
func launcherFixture(t *testing.T) (*Launcher, *collection.Item, string) {
	t.Helper()

	root := t.TempDir()
	resources.SetBaseDir(root)

	romDir := filepath.Join(root, "collections", "Arcade", "roms")
	test.ExpectedSuccess(t, os.MkdirAll(romDir, 0755))
	test.ExpectedSuccess(t, os.WriteFile(filepath.Join(romDir, "sfiii.zip"), []byte("x"), 0644))

	launcherDir := filepath.Join(root, "collections", "Arcade", "launchers")
	test.ExpectedSuccess(t, os.MkdirAll(launcherDir, 0755))
	test.ExpectedSuccess(t, os.WriteFile(filepath.Join(launcherDir, "sfiii.conf"), []byte("foo\n"), 0644))

	cfg := config.NewConfiguration()
	cfg.SetProperty("collections.Arcade.list.extensions", "zip, 7z")
	cfg.SetProperty("collections.Arcade.launcher", "mame")
	cfg.SetProperty("launchers.foo.executable", "/usr/bin/global-foo")
	cfg.SetProperty("localLaunchers.foo.executable", "/opt/local/foo")
	cfg.SetProperty("launchers.foo.arguments", `-rompath "%ITEM_DIRECTORY%" %ITEM_FILEPATH% -name %ITEM_NAME%`)
	cfg.SetProperty("launchers.mame.executable", "/usr/bin/mame")

	cache, err := filecache.NewCache()
	test.ExpectedSuccess(t, err)

	info := collection.NewInfo("Arcade")
	item := collection.NewItem("sfiii", true, info)

	return NewLauncher(cfg, cache), item, romDir
}

func TestResolvePrecedence(t *testing.T) {
	lnc, item, romDir := launcherFixture(t)

	cmd, err := lnc.Resolve(item)
	test.ExpectedSuccess(t, err)

	// the per-item conf selects launcher foo; the localLaunchers entry
	// beats the plain launchers entry for the executable
	test.Equate(t, cmd.Launcher, "foo")
	test.Equate(t, cmd.Executable, "/opt/local/foo")

	rom := filepath.Join(romDir, "sfiii.zip")
	test.Equate(t, len(cmd.Arguments), 5)
	test.Equate(t, cmd.Arguments[0], "-rompath")
	test.Equate(t, cmd.Arguments[1], romDir)
	test.Equate(t, cmd.Arguments[2], rom)
	test.Equate(t, cmd.Arguments[4], "sfiii")
}

func TestResolveCollectionFallback(t *testing.T) {
	lnc, item, _ := launcherFixture(t)

	// without the per-item conf, the collection's launcher setting wins
	path, _ := resources.JoinPath("collections", "Arcade", "launchers", "sfiii.conf")
	test.ExpectedSuccess(t, os.Remove(path))

	cmd, err := lnc.Resolve(item)
	test.ExpectedSuccess(t, err)
	test.Equate(t, cmd.Launcher, "mame")
	test.Equate(t, cmd.Executable, "/usr/bin/mame")
}

func TestResolveMissingROM(t *testing.T) {
	lnc, item, _ := launcherFixture(t)
	item.Name = "nosuchgame"

	_, err := lnc.Resolve(item)
	test.ExpectedFailure(t, err)
	test.Demand(t, curated.Is(err, NoROMFile))
}

func TestTokenize(t *testing.T) {
	test.Equate(t, len(tokenize("")), 0)

	tok := tokenize(`-a  "b c"   'd e' f`)
	test.Equate(t, len(tok), 4)
	test.Equate(t, tok[1], "b c")
	test.Equate(t, tok[2], "d e")
	test.Equate(t, tok[3], "f")

	// adjacent quoted runs join into one token
	tok = tokenize(`pre"mid dle"post`)
	test.Equate(t, len(tok), 1)
	test.Equate(t, tok[0], "premid dlepost")
}

func TestSplitExtensions(t *testing.T) {
	exts := splitExtensions(" zip, .7z,,chd ")
	test.Equate(t, len(exts), 3)
	test.Equate(t, exts[0], "zip")
	test.Equate(t, exts[1], "7z")
	test.Equate(t, exts[2], "chd")
}
