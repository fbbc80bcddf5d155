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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/retrofe/retrofe/config"
	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/resources"
	"github.com/retrofe/retrofe/test"
)

func writeConf(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte(content), 0644)
	test.ExpectedSuccess(t, err)
	return path
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	path := writeConf(t, dir, "settings.conf", `
# comment line
layout = Arcade
attractModeTime=19
videoVolume = 0.5
kiosk = yes

malformed line without equals
 = emptykey
`)

	cfg := config.NewConfiguration()
	err := cfg.Import(path, "")
	test.ExpectedSuccess(t, err)

	v, ok := cfg.GetString("layout")
	test.Demand(t, ok)
	test.Equate(t, v, "Arcade")
	test.Equate(t, cfg.Int("attractModeTime", 0), 19)
	test.Equate(t, cfg.Float("videoVolume", 0), 0.5)
	test.Equate(t, cfg.Bool("kiosk", false), true)

	// malformed lines are skipped
	_, ok = cfg.GetString("malformed line without equals")
	test.Demand(t, !ok)

	// defaults for absent keys
	test.Equate(t, cfg.Int("absent", 42), 42)
	test.Equate(t, cfg.Bool("absent", true), true)
	test.Equate(t, cfg.String("absent", "def"), "def")
}

func TestImportMissingFile(t *testing.T) {
	cfg := config.NewConfiguration()
	err := cfg.Import(filepath.Join(t.TempDir(), "nosuch.conf"), "")
	test.ExpectedFailure(t, err)
	test.Demand(t, curated.Is(err, config.FileNotFound))
}

func TestKeyPrefix(t *testing.T) {
	dir := t.TempDir()
	path := writeConf(t, dir, "settings.conf", "launcher=mame\nlist.path=roms/arcade\n")

	cfg := config.NewConfiguration()
	err := cfg.Import(path, "collections.arcade.")
	test.ExpectedSuccess(t, err)

	test.Equate(t, cfg.String("collections.arcade.launcher", ""), "mame")
	test.Demand(t, cfg.PropertyPrefixExists("collections.arcade."))
	test.Demand(t, !cfg.PropertyPrefixExists("collections.consoles."))
	test.Equate(t, len(cfg.KeysWithPrefix("collections.arcade.")), 2)
}

func TestCollectionAbsolutePath(t *testing.T) {
	resources.SetBaseDir(filepath.Join("base"))

	cfg := config.NewConfiguration()

	// conventional location
	p, err := cfg.CollectionAbsolutePath("arcade")
	test.ExpectedSuccess(t, err)
	test.Equate(t, p, filepath.Join("base", "collections", "arcade", "roms"))

	// list.path override, relative to root
	cfg.SetProperty("collections.arcade.list.path", filepath.Join("elsewhere", "roms"))
	p, err = cfg.CollectionAbsolutePath("arcade")
	test.ExpectedSuccess(t, err)
	test.Equate(t, p, filepath.Join("base", "elsewhere", "roms"))
}

func TestSavedSettings(t *testing.T) {
	dir := t.TempDir()
	resources.SetBaseDir(dir)

	saved := config.NewSaved()
	first := &config.String{}
	test.ExpectedSuccess(t, saved.Add("firstPlaylist", first))

	// a second registration under the same key is rejected
	test.ExpectedFailure(t, saved.Add("firstPlaylist", &config.String{}))

	// the post hook persists the registry, so a Set is durable on its
	// own
	first.SetHookPost(func(string) error {
		return saved.Save()
	})
	test.ExpectedSuccess(t, first.Set("favorites"))

	cfg := config.NewConfiguration()
	test.ExpectedSuccess(t, cfg.LoadSettings())
	test.Equate(t, cfg.String("firstPlaylist", ""), "favorites")
}

func TestLoadSettingsMissingFile(t *testing.T) {
	resources.SetBaseDir(t.TempDir())
	cfg := config.NewConfiguration()

	// a missing saved-settings file is not an error
	test.ExpectedSuccess(t, cfg.LoadSettings())
}

func TestValues(t *testing.T) {
	var b config.Bool
	var s config.String
	var i config.Int
	var f config.Float

	test.ExpectedSuccess(t, b.Set("yes"))
	test.Demand(t, b.IsSet())
	test.ExpectedFailure(t, b.Set("maybe"))

	test.ExpectedSuccess(t, s.Set("attract"))
	test.Equate(t, s.String(), "attract")

	test.ExpectedSuccess(t, i.Set("19"))
	test.Equate(t, i.Value(), 19)
	test.ExpectedFailure(t, i.Set("nineteen"))

	test.ExpectedSuccess(t, f.Set(0.5))
	test.Equate(t, f.Value(), 0.5)

	// post hook fires on change
	count := 0
	b.SetHookPost(func(v bool) error {
		count++
		return nil
	})
	test.ExpectedSuccess(t, b.Set(false))
	test.ExpectedSuccess(t, b.Set(true))
	test.Equate(t, count, 2)
}
