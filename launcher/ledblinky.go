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
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/retrofe/retrofe/collection"
	"github.com/retrofe/retrofe/config"
	"github.com/retrofe/retrofe/logger"
	"github.com/retrofe/retrofe/resources"
)

// LEDBlinky command codes. 0, 7 and 10+ are reserved and never sent.
const (
	ledAppStart      = 1
	ledAppStop       = 2
	ledGameStart     = 3
	ledGameStop      = 4
	ledAttractStart  = 5
	ledAttractStop   = 6
	ledGameSelect    = 8
	ledGameHighlight = 9
)

// LEDBlinky drives the LEDBlinky controller around front-end events.
// Disabled unless ledBlinkyDirectory is configured; the controller is a
// Windows program so the type is inert elsewhere.
type LEDBlinky struct {
	executable string
}

// NewLEDBlinky is the preferred method of initialisation for the
// LEDBlinky type.
func NewLEDBlinky(cfg *config.Configuration) *LEDBlinky {
	led := &LEDBlinky{}

	if runtime.GOOS != "windows" {
		return led
	}

	dir, ok := cfg.GetString("ledBlinkyDirectory")
	if !ok {
		return led
	}

	led.executable = filepath.Join(dir, "LEDBlinky.exe")
	return led
}

// Enabled indicates the controller was configured.
func (led *LEDBlinky) Enabled() bool {
	return led.executable != ""
}

// notify fires the controller without waiting for it.
func (led *LEDBlinky) notify(command int, args ...string) {
	if led.executable == "" {
		return
	}

	argv := append([]string{strconv.Itoa(command)}, args...)
	if err := exec.Command(led.executable, argv...).Start(); err != nil {
		logger.Logf(logger.Warning, "launcher", "ledblinky: %v", err)
	}
}

// AppStart announces the front-end coming up.
func (led *LEDBlinky) AppStart() { led.notify(ledAppStart) }

// AppStop announces the front-end going down.
func (led *LEDBlinky) AppStop() { led.notify(ledAppStop) }

// GameStart announces a launch.
func (led *LEDBlinky) GameStart(item *collection.Item) {
	led.notify(ledGameStart, item.Name, item.CollectionName())
}

// GameStop announces the launched game exiting.
func (led *LEDBlinky) GameStop(item *collection.Item) {
	led.notify(ledGameStop, item.Name, item.CollectionName())
}

// AttractStart announces attract mode becoming active.
func (led *LEDBlinky) AttractStart() { led.notify(ledAttractStart) }

// AttractStop announces attract mode ending.
func (led *LEDBlinky) AttractStop() { led.notify(ledAttractStop) }

// GameSelect announces the selected item being entered.
func (led *LEDBlinky) GameSelect(item *collection.Item) {
	led.notify(ledGameSelect, item.Name, item.CollectionName())
}

// GameHighlight announces the menu highlight moving to an item.
func (led *LEDBlinky) GameHighlight(item *collection.Item) {
	led.notify(ledGameHighlight, item.Name, item.CollectionName())
}

// RunHookScript fires one of the lifetime hook scripts (start / exit)
// from the install root, if present. The script runs detached; nothing
// waits for it.
func RunHookScript(name string) {
	ext := ".sh"
	if runtime.GOOS == "windows" {
		ext = ".bat"
	}

	path, err := resources.JoinPath(name + ext)
	if err != nil {
		return
	}

	cmd := exec.Command(path)
	if err := cmd.Start(); err != nil {
		logger.Logf(logger.Debug, "launcher", "hook %s%s: %v", name, ext, err)
		return
	}
	logger.Logf(logger.Info, "launcher", "hook %s%s started", name, ext)

	// reap the child when it finishes
	go cmd.Wait()
}
