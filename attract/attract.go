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

// Package attract is the idle demo loop: once the user has been inactive
// long enough it scrolls the menu, periodically changes playlist or
// collection, and optionally auto-launches a game after a number of
// scroll cycles.
package attract

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/retrofe/retrofe/config"
	"github.com/retrofe/retrofe/logger"
)

// Signal is the result of an attract update, consumed by the frontend.
type Signal int

// List of valid Signal values.
const (
	Continue Signal = iota
	ChangePlaylist
	ChangeCollection
	Launch
)

// State of the scroll machine.
type State int

// List of valid State values.
const (
	Idle State = iota
	Scrolling
	Cooldown
	PlaylistChanged
	CollectionChanged
)

// the pause between the last scroll cycle and the auto-launch. a user
// input during the cooldown cancels the launch.
const cooldownTime = 2.0

// how long launching stays suppressed after a playlist or collection
// change.
const minStateTime = 5.0

// a jukebox page is not scrolled. it advances only when playback has
// finished and the machine has idled this long.
const jukeboxIdleTime = 10.0

// the pace of the scroll stepping. with attractModeFast each step
// shortens the period so the scroll accelerates over the cycle.
const (
	baseScrollPeriod = 0.25
	minScrollPeriod  = 0.05
	fastScrollFactor = 0.9
)

// Page is the slice of the page facade attract mode drives.
type Page interface {
	SetScrolling(active bool)
	Scroll(forward bool)
	IsJukebox() bool
	PlaybackDone() bool
}

// Mode is the attract state machine. Not safe for concurrent use; the
// frontend updates it once per frame on the main thread.
type Mode struct {
	// seconds of inactivity before the first scroll, and between scrolls
	idleTime     float64
	idleNextTime float64

	// seconds between automatic playlist and collection changes. zero
	// disables
	idlePlaylistTime   float64
	idleCollectionTime float64

	// bounds of one scroll cycle, milliseconds
	minTime int
	maxTime int

	// auto-launch after a number of completed cycles
	shouldLaunch    bool
	minLaunchCycles int
	maxLaunchCycles int

	// accelerate the scroll stepping over the cycle
	fast bool

	rnd *rand.Rand

	state     State
	stateTime float64

	idleElapsed   float64
	activatedOnce bool

	// progress through the current scroll cycle, seconds
	elapsed    float64
	activeTime float64

	scrollPeriod  float64
	scrollElapsed float64

	cycleCount   int
	launchTarget int

	playlistTimer   float64
	collectionTimer float64
}

// NewMode is the preferred method of initialisation for the Mode type.
// Tuning comes from the attractMode* configuration options.
func NewMode(cfg *config.Configuration) *Mode {
	m := &Mode{
		idleTime:           cfg.Float("attractModeTime", 0),
		idleNextTime:       cfg.Float("attractModeNextTime", 0),
		idlePlaylistTime:   cfg.Float("attractModePlaylistTime", 0),
		idleCollectionTime: cfg.Float("attractModeCollectionTime", 0),
		minTime:            cfg.Int("attractModeMinTime", 1000),
		maxTime:            cfg.Int("attractModeMaxTime", 5000),
		shouldLaunch:       cfg.Bool("attractModeLaunch", false),
		fast:               cfg.Bool("attractModeFast", false),
		rnd:                rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if m.idleNextTime <= 0 {
		m.idleNextTime = m.idleTime
	}

	m.minLaunchCycles, m.maxLaunchCycles = parseMinMax(cfg.String("attractModeLaunchMinMaxScrolls", "3,5"))
	m.drawCycle()
	m.drawLaunchTarget()
	return m
}

func parseMinMax(s string) (int, int) {
	min, max := 3, 5
	first, second, ok := strings.Cut(s, ",")
	if ok {
		a, errA := strconv.Atoi(strings.TrimSpace(first))
		b, errB := strconv.Atoi(strings.TrimSpace(second))
		if errA == nil && errB == nil && a > 0 && b >= a {
			min, max = a, b
		}
	}
	return min, max
}

// Enabled returns true if attract mode is configured to do anything at
// all.
func (m *Mode) Enabled() bool {
	return m.idleTime > 0
}

// State returns the current state of the scroll machine.
func (m *Mode) State() State {
	return m.state
}

func (m *Mode) drawCycle() {
	span := m.maxTime - m.minTime
	ms := m.minTime
	if span > 0 {
		ms += m.rnd.Intn(span + 1)
	}
	m.activeTime = float64(ms) / 1000.0
}

func (m *Mode) drawLaunchTarget() {
	span := m.maxLaunchCycles - m.minLaunchCycles
	m.launchTarget = m.minLaunchCycles
	if span > 0 {
		m.launchTarget += m.rnd.Intn(span + 1)
	}
}

// Update advances the machine by dt seconds. The returned signal tells
// the frontend what to do this frame. ChangePlaylist and ChangeCollection
// enter a suppression state during which no launch can happen for at
// least minStateTime.
func (m *Mode) Update(dt float64, page Page) Signal {
	if !m.Enabled() {
		return Continue
	}

	// the playlist and collection timers sit above the scroll machine
	if m.idleCollectionTime > 0 {
		m.collectionTimer += dt
		if m.collectionTimer >= m.idleCollectionTime {
			m.collectionTimer = 0
			m.enterSuppression(CollectionChanged, page)
			return ChangeCollection
		}
	}
	if m.idlePlaylistTime > 0 {
		m.playlistTimer += dt
		if m.playlistTimer >= m.idlePlaylistTime {
			m.playlistTimer = 0
			m.enterSuppression(PlaylistChanged, page)
			return ChangePlaylist
		}
	}

	switch m.state {
	case PlaylistChanged, CollectionChanged:
		m.stateTime += dt
		if m.stateTime >= minStateTime {
			m.state = Idle
			m.idleElapsed = 0
		}

	case Idle:
		m.idleElapsed += dt
		threshold := m.idleNextTime
		if !m.activatedOnce {
			threshold = m.idleTime
		}
		if m.idleElapsed < threshold {
			break
		}

		if page.IsJukebox() {
			// jukebox pages advance without scrolling, once playback is
			// over and the page has idled long enough
			if page.PlaybackDone() && m.idleElapsed >= threshold+jukeboxIdleTime {
				m.idleElapsed = 0
				m.activatedOnce = true
				return ChangePlaylist
			}
			break
		}

		m.state = Scrolling
		m.activatedOnce = true
		m.elapsed = 0
		m.scrollPeriod = baseScrollPeriod
		m.scrollElapsed = 0
		m.drawCycle()
		page.SetScrolling(true)
		logger.Logf(logger.Debug, "attract", "scrolling for %.2fs", m.activeTime)

	case Scrolling:
		m.elapsed += dt

		// the menu steps on its own clock while scrolling
		m.scrollElapsed += dt
		for m.scrollElapsed >= m.scrollPeriod {
			m.scrollElapsed -= m.scrollPeriod
			page.Scroll(true)
			if m.fast && m.scrollPeriod > minScrollPeriod {
				m.scrollPeriod *= fastScrollFactor
				if m.scrollPeriod < minScrollPeriod {
					m.scrollPeriod = minScrollPeriod
				}
			}
		}

		if m.elapsed < m.activeTime {
			break
		}

		// cycle complete
		page.SetScrolling(false)
		m.cycleCount++
		m.idleElapsed = 0

		if m.shouldLaunch && m.cycleCount >= m.launchTarget {
			m.state = Cooldown
			m.stateTime = 0
			logger.Logf(logger.Debug, "attract", "cooldown after %d cycles", m.cycleCount)
		} else {
			m.state = Idle
		}

	case Cooldown:
		m.stateTime += dt
		if m.stateTime >= cooldownTime {
			// full reset before signalling so a re-entrant update starts
			// a fresh campaign
			m.Reset(false)
			return Launch
		}
	}

	return Continue
}

func (m *Mode) enterSuppression(s State, page Page) {
	if m.state == Scrolling {
		page.SetScrolling(false)
	}
	m.state = s
	m.stateTime = 0
	m.elapsed = 0
	m.idleElapsed = 0
}

// Reset returns the machine to idle. With set false (a user input)
// everything is discarded, including progress toward an auto-launch.
// With set true (an automatic playlist or collection change) the cycle
// counter and the playlist/collection timers survive, as does any active
// suppression state.
func (m *Mode) Reset(set bool) {
	if !set {
		m.state = Idle
		m.cycleCount = 0
		m.playlistTimer = 0
		m.collectionTimer = 0
		m.activatedOnce = false
		m.drawLaunchTarget()
	} else if m.state != PlaylistChanged && m.state != CollectionChanged {
		m.state = Idle
	}
	m.idleElapsed = 0
	m.elapsed = 0
	m.stateTime = 0
}
