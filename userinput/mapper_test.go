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

package userinput_test

import (
	"testing"
	"time"

	"github.com/retrofe/retrofe/config"
	"github.com/retrofe/retrofe/test"
	"github.com/retrofe/retrofe/userinput"
)

func TestSingleActions(t *testing.T) {
	m := userinput.NewMapper()
	m.Bind("Up", userinput.Up)
	m.Bind("Return", userinput.Select)

	now := time.Unix(0, 0)

	fired := m.KeyDown("up", now) // binding lookup is case-insensitive
	test.DemandEquality(t, len(fired), 1)
	test.Demand(t, fired[0] == userinput.Up)

	fired = m.KeyDown("Escape", now)
	test.Equate(t, len(fired), 0)
}

func TestComboWindow(t *testing.T) {
	m := userinput.NewMapper()
	m.Bind("Left Ctrl", userinput.QuitCombo1)
	m.Bind("Left Alt", userinput.QuitCombo2)

	now := time.Unix(100, 0)

	// halves inside the window complete the combo
	fired := m.KeyDown("Left Ctrl", now)
	test.Equate(t, len(fired), 0)
	fired = m.KeyDown("Left Alt", now.Add(150*time.Millisecond))
	test.DemandEquality(t, len(fired), 1)
	test.Demand(t, fired[0] == userinput.Quit)

	// the combo consumed both halves. pressing one again does nothing
	fired = m.KeyDown("Left Ctrl", now.Add(200*time.Millisecond))
	test.Equate(t, len(fired), 0)

	// halves outside the window do not complete
	fired = m.KeyDown("Left Alt", now.Add(time.Second))
	test.Equate(t, len(fired), 0)
}

func TestComboOrderIndependent(t *testing.T) {
	m := userinput.NewMapper()
	m.Bind("1", userinput.SettingsCombo1)
	m.Bind("2", userinput.SettingsCombo2)

	now := time.Unix(100, 0)
	m.KeyDown("2", now)
	fired := m.KeyDown("1", now.Add(50*time.Millisecond))
	test.DemandEquality(t, len(fired), 1)
	test.Demand(t, fired[0] == userinput.Settings)
}

func TestFirstInputLatch(t *testing.T) {
	m := userinput.NewMapper()
	m.Bind("Escape", userinput.QuitCombo1)
	m.Bind("Up", userinput.Up)

	_, ok := m.FirstInput()
	test.Demand(t, !ok)

	now := time.Unix(0, 0)
	m.KeyDown("Escape", now)
	first, ok := m.FirstInput()
	test.Demand(t, ok)
	test.Demand(t, first == userinput.QuitCombo1)

	// the latch holds the first action only
	m.KeyDown("Up", now)
	first, _ = m.FirstInput()
	test.Demand(t, first == userinput.QuitCombo1)

	m.ResetFirstInput()
	_, ok = m.FirstInput()
	test.Demand(t, !ok)
}

func TestDebouncer(t *testing.T) {
	d := userinput.NewDebouncer()
	now := time.Unix(0, 0)

	test.Demand(t, d.Allow(userinput.AddPlaylist, now, userinput.DefaultKeyDelay))
	test.Demand(t, !d.Allow(userinput.AddPlaylist, now.Add(100*time.Millisecond), userinput.DefaultKeyDelay))
	test.Demand(t, d.Allow(userinput.AddPlaylist, now.Add(400*time.Millisecond), userinput.DefaultKeyDelay))

	// independent per action
	test.Demand(t, d.Allow(userinput.Settings, now.Add(100*time.Millisecond), userinput.DefaultKeyDelay))

	d.Reset()
	test.Demand(t, d.Allow(userinput.AddPlaylist, now.Add(401*time.Millisecond), userinput.DefaultKeyDelay))
}

func TestLoadBindings(t *testing.T) {
	cfg := config.NewConfiguration()
	cfg.SetProperty("controls.up", "Up, joyHatUp")
	cfg.SetProperty("controls.select", "Return")

	m := userinput.NewMapper()
	m.LoadBindings(cfg)

	fired := m.KeyDown("joyHatUp", time.Unix(0, 0))
	test.DemandEquality(t, len(fired), 1)
	test.Demand(t, fired[0] == userinput.Up)
}
