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

package attract_test

import (
	"testing"

	"github.com/retrofe/retrofe/attract"
	"github.com/retrofe/retrofe/config"
	"github.com/retrofe/retrofe/test"
)

type stubPage struct {
	scrolling    bool
	scrolls      int
	jukebox      bool
	playbackDone bool
}

func (p *stubPage) SetScrolling(active bool) { p.scrolling = active }
func (p *stubPage) Scroll(forward bool)      { p.scrolls++ }
func (p *stubPage) IsJukebox() bool          { return p.jukebox }
func (p *stubPage) PlaybackDone() bool       { return p.playbackDone }

// runs the machine in small steps for a duration, failing on any signal
// other than Continue.
func runQuiet(t *testing.T, m *attract.Mode, page attract.Page, seconds float64) {
	t.Helper()
	const step = 0.05
	for elapsed := 0.0; elapsed < seconds; elapsed += step {
		sig := m.Update(step, page)
		if sig != attract.Continue {
			t.Fatalf("unexpected signal %v at %.2fs", sig, elapsed)
		}
	}
}

// runs the machine until it emits a signal, failing after the deadline.
func runUntilSignal(t *testing.T, m *attract.Mode, page attract.Page, deadline float64) (attract.Signal, float64) {
	t.Helper()
	const step = 0.05
	for elapsed := 0.0; elapsed < deadline; elapsed += step {
		if sig := m.Update(step, page); sig != attract.Continue {
			return sig, elapsed
		}
	}
	t.Fatal("no signal before deadline")
	return attract.Continue, 0
}

func launchConfig() *config.Configuration {
	cfg := config.NewConfiguration()
	cfg.SetProperty("attractModeTime", "1")
	cfg.SetProperty("attractModeNextTime", "1")
	cfg.SetProperty("attractModeMinTime", "1000")
	cfg.SetProperty("attractModeMaxTime", "1000")
	cfg.SetProperty("attractModeLaunch", "true")
	cfg.SetProperty("attractModeLaunchMinMaxScrolls", "2,2")
	return cfg
}

func TestScrollCycle(t *testing.T) {
	cfg := config.NewConfiguration()
	cfg.SetProperty("attractModeTime", "1")
	cfg.SetProperty("attractModeMinTime", "500")
	cfg.SetProperty("attractModeMaxTime", "500")

	m := attract.NewMode(cfg)
	page := &stubPage{}

	test.Demand(t, m.Enabled())
	test.Demand(t, m.State() == attract.Idle)

	// idle threshold not yet reached
	runQuiet(t, m, page, 0.9)
	test.Demand(t, !page.scrolling)

	// scrolling starts and runs for the drawn cycle time
	runQuiet(t, m, page, 0.2)
	test.Demand(t, page.scrolling)
	test.Demand(t, m.State() == attract.Scrolling)

	runQuiet(t, m, page, 0.6)
	test.Demand(t, !page.scrolling)
	test.Demand(t, m.State() == attract.Idle)
}

func scrollSteps(t *testing.T, fast bool) int {
	t.Helper()

	cfg := config.NewConfiguration()
	cfg.SetProperty("attractModeTime", "1")
	cfg.SetProperty("attractModeMinTime", "2000")
	cfg.SetProperty("attractModeMaxTime", "2000")
	if fast {
		cfg.SetProperty("attractModeFast", "yes")
	}

	m := attract.NewMode(cfg)
	page := &stubPage{}

	// 1s idle plus one fixed 2s cycle
	runQuiet(t, m, page, 3.2)
	test.Demand(t, !page.scrolling)
	return page.scrolls
}

func TestFastScrollAccelerates(t *testing.T) {
	slow := scrollSteps(t, false)
	fast := scrollSteps(t, true)

	test.Demand(t, slow > 0)

	// the fast option shortens the step period as the cycle runs, so
	// the same cycle covers more of the menu
	test.Demand(t, fast > slow)
}

func TestExactlyOneLaunch(t *testing.T) {
	m := attract.NewMode(launchConfig())
	page := &stubPage{}

	// two fixed 1s cycles separated by 1s idle, then the 2s cooldown.
	// allow slack for step granularity
	sig, elapsed := runUntilSignal(t, m, page, 10)
	test.Demand(t, sig == attract.Launch)
	test.Demand(t, elapsed > 5.5 && elapsed < 7.0)

	// the launch reset the campaign. the next signal is another launch,
	// a full campaign later, not an immediate repeat
	sig, elapsed = runUntilSignal(t, m, page, 10)
	test.Demand(t, sig == attract.Launch)
	test.Demand(t, elapsed > 5.5)
}

func TestInputDuringCooldownCancelsLaunch(t *testing.T) {
	m := attract.NewMode(launchConfig())
	page := &stubPage{}

	// run into the cooldown: 1s idle + 1s scroll + 1s idle + 1s scroll
	runQuiet(t, m, page, 4.3)
	test.Demand(t, m.State() == attract.Cooldown)

	// a user input discards launch progress entirely
	m.Reset(false)
	test.Demand(t, m.State() == attract.Idle)

	// the next launch needs a full campaign again
	sig, elapsed := runUntilSignal(t, m, page, 10)
	test.Demand(t, sig == attract.Launch)
	test.Demand(t, elapsed > 5.5)
}

func TestPlaylistChangeSuppressesLaunch(t *testing.T) {
	cfg := launchConfig()
	cfg.SetProperty("attractModePlaylistTime", "3.5")
	m := attract.NewMode(cfg)
	page := &stubPage{}

	// the playlist timer fires mid-campaign
	sig, _ := runUntilSignal(t, m, page, 5)
	test.Demand(t, sig == attract.ChangePlaylist)
	test.Demand(t, m.State() == attract.PlaylistChanged)

	// partial reset preserves the suppression state
	m.Reset(true)
	test.Demand(t, m.State() == attract.PlaylistChanged)

	// no launch for at least minStateTime (5s)
	const step = 0.05
	for elapsed := 0.0; elapsed < 4.9; elapsed += step {
		sig := m.Update(step, page)
		test.Demand(t, sig != attract.Launch)
	}
}

func TestPartialResetPreservesCycles(t *testing.T) {
	m := attract.NewMode(launchConfig())
	page := &stubPage{}

	// complete the first cycle (1s idle + 1s scroll)
	runQuiet(t, m, page, 2.3)
	test.Demand(t, m.State() == attract.Idle)

	// a partial reset does not discard the completed cycle: only one
	// more cycle is needed, so the launch arrives sooner than a full
	// campaign
	m.Reset(true)
	sig, elapsed := runUntilSignal(t, m, page, 10)
	test.Demand(t, sig == attract.Launch)
	test.Demand(t, elapsed < 5.0)
}

func TestJukeboxAdvancesWithoutScrolling(t *testing.T) {
	cfg := config.NewConfiguration()
	cfg.SetProperty("attractModeTime", "1")
	m := attract.NewMode(cfg)
	page := &stubPage{jukebox: true}

	// playback still running. nothing happens
	runQuiet(t, m, page, 5)
	test.Demand(t, !page.scrolling)

	// once playback is done, the page advances after the jukebox idle
	// threshold
	page.playbackDone = true
	sig, _ := runUntilSignal(t, m, page, 15)
	test.Demand(t, sig == attract.ChangePlaylist)
	test.Demand(t, !page.scrolling)
}

func TestDisabled(t *testing.T) {
	m := attract.NewMode(config.NewConfiguration())
	test.Demand(t, !m.Enabled())
	page := &stubPage{}
	runQuiet(t, m, page, 10)
}
