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

// Package launcher resolves an item to an emulator command line and
// supervises the child process. It owns the handoff dance around the
// launch: the window, the music, the joystick restrictor and the LED
// controller are parked before the child starts and restored when it
// exits.
package launcher

import (
	"os/exec"
	"strings"
	"time"

	"github.com/retrofe/retrofe/collection"
	"github.com/retrofe/retrofe/config"
	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/filecache"
	"github.com/retrofe/retrofe/hiscores"
	"github.com/retrofe/retrofe/logger"
	"github.com/retrofe/retrofe/musicplayer"
	"github.com/retrofe/retrofe/restrictor"
)

// poll cadence of the monitoring loops.
const monitorTick = 50 * time.Millisecond

// Window is the subset of the front-end window the launcher drives
// around a child process.
type Window interface {
	// Grab takes exclusive input and raises the window.
	Grab()

	// Ungrab releases input so the child can take the foreground.
	Ungrab()

	// Unload frees graphics memory for the duration of the run.
	Unload()

	// Reload reallocates what Unload freed.
	Reload()

	// Pump processes pending OS events without rendering. Called from
	// the wait loops so the host keeps delivering window messages.
	Pump()
}

// InputProbe reports user activity during an attract-mode run. Poll
// drains pending events; quit is true when the activity was an exit
// command (ESC, the quit combo, or Start+Back together).
type InputProbe interface {
	Poll() (input bool, quit bool)
}

// Result describes a finished run.
type Result struct {
	// the launcher configuration asked for a front-end reboot
	Reboot bool

	// the run counts as real play. always true for interactive runs;
	// attract runs only when the first input was gameplay.
	Gameplay bool

	// time from spawn to child exit
	Elapsed time.Duration
}

// Launcher runs items. One Launcher serves the whole front-end.
type Launcher struct {
	cfg   *config.Configuration
	cache *filecache.Cache

	// collaborators parked and restored around a run. any may be nil.
	window      Window
	probe       InputProbe
	music       *musicplayer.Player
	restrictors *restrictor.Manager
	converter   *hiscores.Converter
	leds        *LEDBlinky

	timeSpent func(item *collection.Item, spent time.Duration, when time.Time) error

	attractRunTime float64
	servoStik      bool
	unloadSDL      bool
	animateDuring  bool
	launchInFlight bool
}

// NewLauncher is the preferred method of initialisation for the Launcher
// type.
func NewLauncher(cfg *config.Configuration, cache *filecache.Cache) *Launcher {
	return &Launcher{
		cfg:            cfg,
		cache:          cache,
		leds:           NewLEDBlinky(cfg),
		attractRunTime: cfg.Float("attractModeLaunchRunTime", 30),
		servoStik:      cfg.Bool("servoStikEnabled", false),
		unloadSDL:      cfg.Bool("unloadSDL", false),
		animateDuring:  cfg.Bool("animateDuringGame", true),
	}
}

// Attach wires the collaborators the launcher parks around a run. Nil
// values are allowed and skipped.
func (lnc *Launcher) Attach(window Window, probe InputProbe, music *musicplayer.Player,
	restrictors *restrictor.Manager, converter *hiscores.Converter,
	timeSpent func(*collection.Item, time.Duration, time.Time) error) {
	lnc.window = window
	lnc.probe = probe
	lnc.music = music
	lnc.restrictors = restrictors
	lnc.converter = converter
	lnc.timeSpent = timeSpent
}

// AnimateDuringGame indicates the marquee displays should keep drawing
// while a child runs. The render side owns that loop; the launcher only
// reports the policy.
func (lnc *Launcher) AnimateDuringGame() bool {
	return lnc.animateDuring
}

// LEDs exposes the LED controller for page-level notifications.
func (lnc *Launcher) LEDs() *LEDBlinky {
	return lnc.leds
}

// Run launches the item and blocks until the child exits or, in attract
// mode, the run-time budget expires. Re-entry while a run is in flight
// is refused.
func (lnc *Launcher) Run(item *collection.Item, attractMode bool) (Result, error) {
	if lnc.launchInFlight {
		return Result{}, curated.Errorf("launcher: launch already in progress")
	}
	lnc.launchInFlight = true
	defer func() { lnc.launchInFlight = false }()

	cmd, err := lnc.Resolve(item)
	if err != nil {
		return Result{}, err
	}

	logger.Logf(logger.Info, "launcher", "%s: %s %s", item.Name, cmd.Executable, strings.Join(cmd.Arguments, " "))

	guard := lnc.preLaunch(item, cmd)
	defer lnc.postLaunch(item, cmd, guard)

	child := exec.Command(cmd.Executable, cmd.Arguments...)
	child.Dir = cmd.Dir
	setProcAttributes(child)

	start := time.Now()
	if err := child.Start(); err != nil {
		return Result{}, curated.Errorf("launcher: %s: %v", cmd.Executable, err)
	}

	exited := make(chan error, 1)
	go func() {
		exited <- child.Wait()
	}()

	gameplay := true
	if attractMode {
		gameplay = lnc.monitorAttract(child, exited)
	} else {
		lnc.monitorInteractive(exited)
	}

	elapsed := time.Since(start)

	if lnc.timeSpent != nil {
		if err := lnc.timeSpent(item, elapsed, time.Now()); err != nil {
			logger.Logf(logger.Warning, "launcher", "%v", err)
		}
	}

	return Result{
		Reboot:   cmd.Reboot,
		Gameplay: gameplay,
		Elapsed:  elapsed,
	}, nil
}

// preLaunch parks the front-end. The returned guard holds the
// restrictor in 4-way mode when the item needs it.
func (lnc *Launcher) preLaunch(item *collection.Item, cmd *Command) *restrictor.Guard {
	lnc.leds.GameStart(item)

	if lnc.window != nil {
		lnc.window.Ungrab()
		if lnc.unloadSDL {
			lnc.window.Unload()
		}
	}

	if lnc.music != nil && lnc.music.Enabled() {
		if lnc.music.PlayInGame() {
			lnc.music.FadeToVolume(lnc.music.PlayInGameVol())
		} else {
			lnc.music.Suspend()
		}
	}

	var guard *restrictor.Guard
	if lnc.servoStik && lnc.restrictors != nil {
		guard = lnc.restrictors.NewGuard(item.FourWay())
	}
	return guard
}

// postLaunch restores everything preLaunch parked and schedules the
// hi-score refresh for mame runs.
func (lnc *Launcher) postLaunch(item *collection.Item, cmd *Command, guard *restrictor.Guard) {
	if guard != nil {
		guard.Release()
	}

	if lnc.window != nil {
		if lnc.unloadSDL {
			lnc.window.Reload()
		}
		lnc.window.Grab()
	}

	if lnc.music != nil && lnc.music.Enabled() {
		if lnc.music.PlayInGame() {
			lnc.music.FadeBackToPreviousVolume()
		} else {
			lnc.music.Resume()
		}
	}

	lnc.leds.GameStop(item)

	// a mame launch may have written a new hi-score file
	if lnc.converter != nil && strings.Contains(strings.ToLower(cmd.Executable), "mame") {
		lnc.converter.RunAsync(item.Name)
	}
}

// monitorInteractive blocks until the child exits, pumping OS events so
// the host still delivers window messages.
func (lnc *Launcher) monitorInteractive(exited <-chan error) {
	for {
		select {
		case err := <-exited:
			if err != nil {
				logger.Logf(logger.Debug, "launcher", "child: %v", err)
			}
			return
		case <-time.After(monitorTick):
			if lnc.window != nil {
				lnc.window.Pump()
			}
			if lnc.music != nil {
				lnc.music.Update(monitorTick.Seconds())
			}
		}
	}
}

// monitorAttract supervises an attract-mode run. The first user input
// classifies the run: an exit command means the demo was interrupted to
// leave, anything else means someone started playing. With no input the
// child is killed, descendants included, when the run-time budget
// expires.
func (lnc *Launcher) monitorAttract(child *exec.Cmd, exited <-chan error) bool {
	deadline := time.Now().Add(time.Duration(lnc.attractRunTime * float64(time.Second)))
	classified := false
	gameplay := false

	for {
		select {
		case err := <-exited:
			if err != nil {
				logger.Logf(logger.Debug, "launcher", "child: %v", err)
			}
			return gameplay

		case <-time.After(monitorTick):
			if lnc.window != nil {
				lnc.window.Pump()
			}
			if lnc.music != nil {
				lnc.music.Update(monitorTick.Seconds())
			}

			if !classified && lnc.probe != nil {
				input, quit := lnc.probe.Poll()
				if input {
					classified = true
					gameplay = !quit
					if gameplay {
						logger.Log(logger.Info, "launcher", "attract run taken over by player")
					}
				}
			}

			// the budget applies only while nobody is playing
			if !gameplay && time.Now().After(deadline) {
				logger.Logf(logger.Info, "launcher", "attract run timed out after %.0fs", lnc.attractRunTime)
				killTree(child)
				<-exited
				return gameplay
			}
		}
	}
}
