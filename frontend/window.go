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

package frontend

import (
	"strconv"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/retrofe/retrofe/config"
	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/logger"
	"github.com/retrofe/retrofe/userinput"
)

// screenGeometry is the per-display window setup read from the
// horizontal<i>/vertical<i>/rotation<i>/mirror<i> options.
type screenGeometry struct {
	width    int
	height   int
	rotation int
	mirror   bool
}

// Window owns the SDL windows and the event pump. It implements the
// launcher's Window and InputProbe interfaces.
type Window struct {
	cfg     *config.Configuration
	mapper  *userinput.Mapper
	decoder *userinput.Decoder

	windows []*sdl.Window
	screens []screenGeometry

	fullscreen bool
	minimize   bool
}

// NewWindow is the preferred method of initialisation for the Window
// type. sdl.Init must have been called.
func NewWindow(cfg *config.Configuration, mapper *userinput.Mapper) *Window {
	w := &Window{
		cfg:        cfg,
		mapper:     mapper,
		decoder:    userinput.NewDecoder(),
		fullscreen: cfg.Bool("fullscreen", true),
		minimize:   cfg.Bool("minimizeOnFocusLoss", false),
	}

	for i := 0; ; i++ {
		suffix := ""
		if i > 0 {
			suffix = strconv.Itoa(i)
		}
		width := cfg.Int("horizontal"+suffix, 0)
		if i > 0 && width == 0 {
			break
		}
		w.screens = append(w.screens, screenGeometry{
			width:    width,
			height:   cfg.Int("vertical"+suffix, 0),
			rotation: cfg.Int("rotation"+suffix, 0),
			mirror:   cfg.Bool("mirror"+suffix, false),
		})
		if i == 0 && !cfg.PropertyPrefixExists("horizontal1") {
			break
		}
	}

	return w
}

// Open creates the windows.
func (w *Window) Open() error {
	for i, s := range w.screens {
		flags := uint32(sdl.WINDOW_SHOWN)
		width, height := int32(s.width), int32(s.height)
		if w.fullscreen || width == 0 || height == 0 {
			flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
			width, height = 640, 480
		}

		win, err := sdl.CreateWindow("RetroFE",
			sdl.WINDOWPOS_CENTERED_MASK|int32(i), sdl.WINDOWPOS_CENTERED_MASK|int32(i),
			width, height, flags)
		if err != nil {
			return curated.Errorf("frontend: window: %v", err)
		}
		w.windows = append(w.windows, win)
	}

	if len(w.windows) == 0 {
		return curated.Errorf("frontend: window: no screens configured")
	}

	logger.Logf(logger.Info, "frontend", "%d window(s) open", len(w.windows))
	return nil
}

// MultiDisplay indicates more than one screen is configured; the
// launcher's marquee side loop only makes sense then.
func (w *Window) MultiDisplay() bool {
	return len(w.windows) > 1
}

// Close destroys the windows.
func (w *Window) Close() {
	for _, win := range w.windows {
		win.Destroy()
	}
	w.windows = nil
}

// Grab implements the launcher.Window interface.
func (w *Window) Grab() {
	if len(w.windows) == 0 {
		return
	}
	w.windows[0].Raise()
	w.windows[0].SetGrab(true)
}

// Ungrab implements the launcher.Window interface.
func (w *Window) Ungrab() {
	if len(w.windows) == 0 {
		return
	}
	w.windows[0].SetGrab(false)
	if w.minimize {
		w.windows[0].Minimize()
	}
}

// Unload implements the launcher.Window interface. Graphics memory is
// released for the duration of a run by tearing the windows down.
func (w *Window) Unload() {
	w.Close()
}

// Reload implements the launcher.Window interface.
func (w *Window) Reload() {
	if err := w.Open(); err != nil {
		logger.Logf(logger.Error, "frontend", "%v", err)
	}
}

// Pump implements the launcher.Window interface. Events are drained and
// discarded so the OS keeps talking to us while a child runs.
func (w *Window) Pump() {
	for sdl.PollEvent() != nil {
	}
}

// PollActions drains the event queue and decodes user actions.
func (w *Window) PollActions() []userinput.Action {
	var actions []userinput.Action

	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		if _, ok := ev.(*sdl.QuitEvent); ok {
			actions = append(actions, userinput.Quit)
			continue
		}

		key, ok := w.decoder.DownEdge(ev)
		if !ok {
			continue
		}
		actions = append(actions, w.mapper.KeyDown(key, time.Now())...)
	}

	return actions
}

// Poll implements the launcher.InputProbe interface. During an
// attract-mode run the first input decides whether the run was taken
// over by a player or aborted.
func (w *Window) Poll() (input bool, quit bool) {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		if _, ok := ev.(*sdl.QuitEvent); ok {
			return true, true
		}

		key, ok := w.decoder.DownEdge(ev)
		if !ok {
			continue
		}

		if key == "Escape" {
			return true, true
		}

		input = true
		for _, a := range w.mapper.KeyDown(key, time.Now()) {
			if a == userinput.Quit {
				return true, true
			}
		}
	}
	return input, false
}

// Run is the frame loop: poll, step, pace. It returns when the machine
// reaches its terminal state.
func Run(fe *Frontend, w *Window) error {
	fps := fe.svc.Cfg.Float("fps", 60)
	fpsIdle := fe.svc.Cfg.Float("fpsIdle", 15)
	if fps <= 0 {
		fps = 60
	}
	if fpsIdle <= 0 || fpsIdle > fps {
		fpsIdle = fps
	}

	last := time.Now()
	for !fe.ShouldQuit() {
		now := time.Now()
		dt := now.Sub(last).Seconds()
		last = now

		fe.Enqueue(w.PollActions()...)
		fe.Step(dt)

		// idle pages tick slower to save power
		target := fps
		if fe.State() == StateIdle && fe.page.IsIdle() {
			target = fpsIdle
		}

		budget := time.Duration(float64(time.Second) / target)
		if spent := time.Since(now); spent < budget {
			time.Sleep(budget - spent)
		}
	}

	return nil
}
