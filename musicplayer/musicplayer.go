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

// Package musicplayer is the background jukebox. Tracks come from a
// music folder or an m3u playlist; decoding goes through go-mp3 and
// go-audio/wav and out through an oto device. The player is driven from
// the main loop via Update; nothing in this package blocks the frame.
package musicplayer

import (
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/dhowden/tag"
	"github.com/ebitengine/oto/v3"

	"github.com/retrofe/retrofe/config"
	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/logger"
)

// duration of the FadeToVolume / FadeBackToPreviousVolume ramps.
const fadeTime = 1.0

// volume step used by the VolumeUp/VolumeDown actions.
const volumeStep = 5

type fade struct {
	active   bool
	from     int
	to       int
	elapsed  float64
	duration float64
}

// Player is the music controller. All methods are called from the main
// loop; the only concurrent visitors are the oto device goroutine
// (through the Tap) and the tag reader.
type Player struct {
	crit sync.Mutex

	enabled     bool
	folder      string
	m3u         string
	loop        bool
	shuffle     bool
	autostart   bool
	playInGame  bool
	inGameVol   int
	refreshRate int

	tracks []Track
	order  []int // permutation of track indices; identity when not shuffling
	cursor int   // position in order

	// tags read asynchronously are merged into this track index. updated
	// on every loadTrack.
	pendingTagTrackIndex int

	ctx    *oto.Context
	device *oto.Player
	str    *stream
	tap    *Tap

	playing   bool
	paused    bool
	suspended bool
	volume    int
	prevVol   int
	ramp      fade

	rng      *rand.Rand
	shutdown bool
}

// NewPlayer is the preferred method of initialisation for the Player
// type. The audio device is not opened until Start.
func NewPlayer(cfg *config.Configuration) *Player {
	folder, _ := cfg.AbsolutePath("musicPlayer.folder", "music")

	return &Player{
		enabled:              cfg.Bool("musicPlayer.enabled", false),
		folder:               folder,
		m3u:                  cfg.String("musicPlayer.m3uplaylist", ""),
		loop:                 cfg.Bool("musicPlayer.loop", true),
		shuffle:              cfg.Bool("musicPlayer.shuffle", false),
		autostart:            cfg.Bool("musicPlayer.autostart", true),
		playInGame:           cfg.Bool("musicPlayer.playInGame", false),
		inGameVol:            cfg.Int("musicPlayer.playInGameVol", 25),
		refreshRate:          cfg.Int("musicPlayer.refreshRate", 30),
		volume:               clampVolume(cfg.Int("musicPlayer.volume", 50)),
		pendingTagTrackIndex: -1,
		rng:                  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Enabled indicates whether the player was switched on in the
// configuration.
func (p *Player) Enabled() bool {
	return p.enabled
}

// Start opens the audio device and ingests the track list. Not called
// when the player is disabled.
func (p *Player) Start() error {
	p.crit.Lock()
	defer p.crit.Unlock()

	var err error
	if p.m3u != "" {
		p.tracks, err = tracksFromM3U(p.m3u)
	} else {
		p.tracks, err = tracksFromFolder(p.folder)
	}
	if err != nil {
		return err
	}
	if len(p.tracks) == 0 {
		return curated.Errorf("musicplayer: no playable tracks")
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   outSampleRate,
		ChannelCount: outChannels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return curated.Errorf("musicplayer: %v", err)
	}
	<-ready
	p.ctx = ctx

	if p.shuffle {
		p.order = shuffleOrder(len(p.tracks), p.rng)
	} else {
		p.order = identityOrder(len(p.tracks))
	}
	p.cursor = 0

	logger.Logf(logger.Info, "musicplayer", "%d tracks", len(p.tracks))

	if p.autostart {
		if err := p.loadTrack(p.order[p.cursor]); err != nil {
			return err
		}
		p.device.Play()
		p.playing = true
	}

	return nil
}

// loadTrack replaces the current stream. Caller must hold the lock.
func (p *Player) loadTrack(idx int) error {
	p.closeTrack()

	str, err := openStream(p.tracks[idx].Path)
	if err != nil {
		return err
	}

	p.str = str
	p.tap = newTap(str)
	p.device = p.ctx.NewPlayer(p.tap)
	p.applyVolume(p.volume)

	p.pendingTagTrackIndex = idx
	go p.readTags(p.tracks[idx].Path)

	logger.Logf(logger.Debug, "musicplayer", "loaded %s", p.tracks[idx].Name)
	return nil
}

func (p *Player) closeTrack() {
	if p.device != nil {
		p.device.Close()
		p.device = nil
	}
	if p.str != nil {
		p.str.Close()
		p.str = nil
	}
	p.tap = nil
}

// readTags merges the file's embedded tags into the pending track
// entry. Runs detached; the shutdown flag is checked before the merge.
func (p *Player) readTags(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return
	}

	p.crit.Lock()
	defer p.crit.Unlock()

	if p.shutdown || p.pendingTagTrackIndex < 0 {
		return
	}

	trk := &p.tracks[p.pendingTagTrackIndex]
	trk.Title = m.Title()
	trk.Artist = m.Artist()
	trk.Album = m.Album()
}

// Update drives the fade ramp and end-of-track advance. Called once per
// frame from the main loop.
func (p *Player) Update(dt float64) {
	p.crit.Lock()
	defer p.crit.Unlock()

	if p.shutdown {
		return
	}

	if p.ramp.active {
		p.ramp.elapsed += dt
		if p.ramp.elapsed >= p.ramp.duration {
			p.ramp.active = false
			p.volume = p.ramp.to
			p.applyVolume(p.volume)
		} else {
			frac := p.ramp.elapsed / p.ramp.duration
			v := float64(p.ramp.from) + (float64(p.ramp.to)-float64(p.ramp.from))*frac
			p.applyVolume(int(v))
		}
	}

	if p.playing && !p.paused && !p.suspended && p.device != nil && !p.device.IsPlaying() {
		p.advance()
	}
}

// advance moves to the next position in the play order. At the end of
// the order, loop restarts from the top; otherwise playback stops.
// Caller must hold the lock.
func (p *Player) advance() {
	p.cursor++
	if p.cursor >= len(p.order) {
		if !p.loop {
			p.playing = false
			p.closeTrack()
			return
		}
		p.cursor = 0
	}

	if err := p.loadTrack(p.order[p.cursor]); err != nil {
		logger.Logf(logger.Warning, "musicplayer", "%v", err)
		p.playing = false
		return
	}
	p.device.Play()
}

// Next skips to the next track in the play order.
func (p *Player) Next() {
	p.crit.Lock()
	defer p.crit.Unlock()
	if len(p.order) == 0 || p.ctx == nil {
		return
	}
	p.playing = true
	p.advance()
}

// Previous moves to the previous track in the play order.
func (p *Player) Previous() {
	p.crit.Lock()
	defer p.crit.Unlock()
	if len(p.order) == 0 || p.ctx == nil {
		return
	}

	p.cursor -= 2
	if p.cursor < -1 {
		p.cursor = len(p.order) - 2
	}
	p.playing = true
	p.advance()
}

// TogglePause flips between paused and playing.
func (p *Player) TogglePause() {
	p.crit.Lock()
	defer p.crit.Unlock()
	if p.device == nil {
		return
	}

	if p.paused {
		p.device.Play()
	} else {
		p.device.Pause()
	}
	p.paused = !p.paused
}

// Suspend pauses playback for the duration of a launched game. A
// paused player stays paused on Resume.
func (p *Player) Suspend() {
	p.crit.Lock()
	defer p.crit.Unlock()
	if p.device == nil || p.suspended {
		return
	}
	p.suspended = true
	if !p.paused {
		p.device.Pause()
	}
}

// Resume undoes Suspend.
func (p *Player) Resume() {
	p.crit.Lock()
	defer p.crit.Unlock()
	if p.device == nil || !p.suspended {
		return
	}
	p.suspended = false
	if !p.paused {
		p.device.Play()
	}
}

// SetVolume sets the playback volume, clamped to 0..100. An active fade
// is cancelled.
func (p *Player) SetVolume(percent int) {
	p.crit.Lock()
	defer p.crit.Unlock()
	p.ramp.active = false
	p.volume = clampVolume(percent)
	p.applyVolume(p.volume)
}

// Volume returns the current volume, 0..100.
func (p *Player) Volume() int {
	p.crit.Lock()
	defer p.crit.Unlock()
	return p.volume
}

// StepVolume nudges the volume by the standard step. Direction is the
// sign of d.
func (p *Player) StepVolume(d int) {
	if d < 0 {
		p.SetVolume(p.Volume() - volumeStep)
	} else {
		p.SetVolume(p.Volume() + volumeStep)
	}
}

// FadeToVolume captures the current volume and ramps linearly to
// percent. Used to duck the music while a game runs.
func (p *Player) FadeToVolume(percent int) {
	p.crit.Lock()
	defer p.crit.Unlock()

	p.prevVol = p.volume
	p.ramp = fade{
		active:   true,
		from:     p.volume,
		to:       clampVolume(percent),
		duration: fadeTime,
	}
}

// FadeBackToPreviousVolume ramps back to the volume captured by the
// last FadeToVolume.
func (p *Player) FadeBackToPreviousVolume() {
	p.crit.Lock()
	defer p.crit.Unlock()

	p.ramp = fade{
		active:   true,
		from:     p.volume,
		to:       p.prevVol,
		duration: fadeTime,
	}
}

// applyVolume maps the integer percent linearly onto the device volume.
// Caller must hold the lock.
func (p *Player) applyVolume(percent int) {
	if p.device != nil {
		p.device.SetVolume(float64(clampVolume(percent)) / 100.0)
	}
}

// SetShuffle switches between shuffled and linear play order. When
// shuffling is enabled the current track keeps playing and the cursor
// moves to the track's position in the new permutation, so Next and
// Previous follow the shuffled order with no discontinuity.
func (p *Player) SetShuffle(shuffle bool) {
	p.crit.Lock()
	defer p.crit.Unlock()

	if shuffle == p.shuffle || len(p.tracks) == 0 {
		p.shuffle = shuffle
		return
	}
	p.shuffle = shuffle

	current := p.currentTrackIndex()

	if shuffle {
		p.order = shuffleOrder(len(p.tracks), p.rng)
	} else {
		p.order = identityOrder(len(p.tracks))
	}

	if i := orderIndex(p.order, current); i >= 0 {
		p.cursor = i
	} else {
		p.cursor = 0
	}
}

// Shuffle indicates whether shuffled play order is active.
func (p *Player) Shuffle() bool {
	p.crit.Lock()
	defer p.crit.Unlock()
	return p.shuffle
}

// ToggleLoop flips whether the play order restarts after the last
// track.
func (p *Player) ToggleLoop() {
	p.crit.Lock()
	defer p.crit.Unlock()
	p.loop = !p.loop
}

// caller must hold the lock.
func (p *Player) currentTrackIndex() int {
	if len(p.order) == 0 {
		return 0
	}
	c := p.cursor
	if c < 0 || c >= len(p.order) {
		c = 0
	}
	return p.order[c]
}

// CurrentTrack returns a copy of the playing track's entry.
func (p *Player) CurrentTrack() (Track, bool) {
	p.crit.Lock()
	defer p.crit.Unlock()
	if len(p.tracks) == 0 || !p.playing {
		return Track{}, false
	}
	return p.tracks[p.currentTrackIndex()], true
}

// Playing indicates whether a track is loaded and not stopped. A paused
// or suspended player still counts as playing.
func (p *Player) Playing() bool {
	p.crit.Lock()
	defer p.crit.Unlock()
	return p.playing
}

// PlaybackDone indicates the play order has been exhausted. Only a
// non-looping player ever reaches this state.
func (p *Player) PlaybackDone() bool {
	p.crit.Lock()
	defer p.crit.Unlock()
	return p.ctx != nil && !p.playing
}

// PlayInGame indicates whether the music should keep playing, ducked,
// while a game runs. When false the launcher suspends the player
// instead.
func (p *Player) PlayInGame() bool {
	return p.playInGame
}

// PlayInGameVol is the ducked volume used when PlayInGame is set.
func (p *Player) PlayInGameVol() int {
	return p.inGameVol
}

// RefreshRate is the configured vu-meter refresh rate in Hz.
func (p *Player) RefreshRate() int {
	return p.refreshRate
}

// Meter returns the sample tap for the current track, or nil when
// nothing is loaded.
func (p *Player) Meter() *Tap {
	p.crit.Lock()
	defer p.crit.Unlock()
	return p.tap
}

// Shutdown stops playback and releases the device. No callbacks fire
// after Shutdown returns.
func (p *Player) Shutdown() {
	p.crit.Lock()
	defer p.crit.Unlock()
	if p.shutdown {
		return
	}
	p.shutdown = true
	p.playing = false
	p.closeTrack()
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
