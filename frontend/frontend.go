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

// Package frontend is the core state machine: it turns user actions and
// attract-mode signals into page transitions and launches. One instance
// runs on the main thread; everything blocking happens elsewhere.
package frontend

import (
	"math/rand"
	"strings"
	"time"

	"github.com/retrofe/retrofe/attract"
	"github.com/retrofe/retrofe/collection"
	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/launcher"
	"github.com/retrofe/retrofe/logger"
	"github.com/retrofe/retrofe/userinput"
)

// attract updates are clamped to this dt so a frame stall, a launch in
// particular, does not fast-forward the attract timers.
const maxAttractDt = 0.1

// menu distance of a PageUp / PageDown jump.
const pageJump = 10

// Frontend drives the core state machine.
type Frontend struct {
	svc     *CoreServices
	attract *attract.Mode
	rnd     *rand.Rand

	state State
	page  Page
	stack []Page

	// page factory. replaced by the render layer; defaults to the model
	// page
	newPage func() Page

	// per-collection memory for rememberMenu
	lastMenuOffsets   map[string]int
	lastMenuPlaylists map[string]string

	// the collection the front-end booted into. favorites are saved here
	// when globalFavLast is set
	rootInfo *collection.Info

	pending []userinput.Action

	// transition arguments
	pendingPlaylist   string
	pendingCollection string
	jumpTarget        int
	launchItem        *collection.Item
	launchAttract     bool
	launchInProgress  bool

	// navigation policy
	kiosk                bool
	rememberMenu         bool
	backOnCollection     bool
	backOnEmpty          bool
	collectionInputClear bool
	playlistInputClear   bool
	jumpInputClear       bool
	infoExitOnScroll     bool
	randomStart          bool
	globalFavLast        bool
	firstCollection      string
	autoPlaylist         string
	cycleCollection      []string
	cyclePlaylist        []string
	attractSkipPlaylist  []string
	attractSkipCollect   []string
	attractCyclePl       bool
	attractCollectEvery  int
	attractCollectCount  int
	lastPlayedSize       int
	lastPlayedSkip       []string
	keyDelay             time.Duration

	// info overlays
	infoGame       bool
	infoCollection bool
	infoBuild      bool
	fpsOverlay     bool

	reboot bool
	quit   bool
}

// NewFrontend is the preferred method of initialisation for the
// Frontend type.
func NewFrontend(svc *CoreServices) *Frontend {
	cfg := svc.Cfg

	return &Frontend{
		svc:     svc,
		attract: attract.NewMode(cfg),
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		state:   StateNew,
		newPage: func() Page { return NewMenuPage() },

		lastMenuOffsets:   make(map[string]int),
		lastMenuPlaylists: make(map[string]string),

		kiosk:                cfg.Bool("kiosk", false),
		rememberMenu:         cfg.Bool("rememberMenu", false),
		backOnCollection:     cfg.Bool("backOnCollection", false),
		backOnEmpty:          cfg.Bool("backOnEmpty", false),
		collectionInputClear: cfg.Bool("collectionInputClear", false),
		playlistInputClear:   cfg.Bool("playlistInputClear", false),
		jumpInputClear:       cfg.Bool("jumpInputClear", false),
		infoExitOnScroll:     cfg.Bool("infoExitOnScroll", false),
		randomStart:          cfg.Bool("randomStart", false),
		globalFavLast:        cfg.Bool("globalFavLast", false),
		firstCollection:      cfg.String("firstCollection", "Main"),
		autoPlaylist:         cfg.String("autoPlaylist", "all"),
		cycleCollection:      splitList(cfg.String("cycleCollection", "")),
		cyclePlaylist:        splitList(cfg.String("cyclePlaylist", "")),
		attractSkipPlaylist:  splitList(cfg.String("attractModeSkipPlaylist", "")),
		attractSkipCollect:   splitList(cfg.String("attractModeSkipCollection", "")),
		attractCyclePl:       cfg.Bool("attractModeCyclePlaylist", true),
		attractCollectEvery:  cfg.Int("attractModePlaylistCollectionNumber", 0),
		lastPlayedSize:       cfg.Int("lastPlayedSize", 10),
		lastPlayedSkip:       splitList(cfg.String("lastPlayedSkipCollection", "")),
		keyDelay:             time.Duration(cfg.Float("keyDelayTime", 0.3) * float64(time.Second)),
	}
}

// SetPageFactory replaces the model page with the render layer's
// implementation. Must be called before Boot.
func (fe *Frontend) SetPageFactory(f func() Page) {
	fe.newPage = f
}

// Boot builds the first collection and enters it. A failure here is
// fatal; later rebuild failures only log.
func (fe *Frontend) Boot() error {
	info, err := fe.svc.Builder.Build(fe.firstCollection)
	if err != nil {
		return curated.Errorf("frontend: boot: %v", err)
	}
	fe.rootInfo = info

	fe.page = fe.newPage()
	fe.page.SetCollection(info)

	playlist := fe.svc.Cfg.String("firstPlaylist", fe.autoPlaylist)
	if !fe.page.SetPlaylist(playlist) {
		fe.page.SetPlaylist("all")
	}

	if fe.randomStart && fe.page.Size() > 0 {
		fe.page.SetSelectedIndex(fe.rnd.Intn(fe.page.Size()))
	}

	fe.svc.Launch.LEDs().AppStart()
	launcher.RunHookScript("start")

	fe.page.Enter()
	fe.state = StateEnter
	logger.Logf(logger.Info, "frontend", "booted into %s/%s", info.Name, fe.page.Playlist())
	return nil
}

// Enqueue feeds decoded user actions into the machine. The event pump
// calls this; tests call it directly.
func (fe *Frontend) Enqueue(actions ...userinput.Action) {
	fe.pending = append(fe.pending, actions...)
}

// State returns the current machine state.
func (fe *Frontend) State() State {
	return fe.state
}

// Page returns the active page.
func (fe *Frontend) Page() Page {
	return fe.page
}

// ShouldQuit reports the machine reaching its terminal state.
func (fe *Frontend) ShouldQuit() bool {
	return fe.quit
}

// RebootRequested reports that the front-end should restart itself
// after quitting.
func (fe *Frontend) RebootRequested() bool {
	return fe.reboot
}

// Kiosk returns the kiosk lock state.
func (fe *Frontend) Kiosk() bool {
	return fe.kiosk
}

// Step advances the machine one frame.
func (fe *Frontend) Step(dt float64) {
	if fe.page != nil {
		fe.page.Update(dt)
	}

	// the music player's fades and end-of-track advance tick on the
	// same clock as the pages
	fe.svc.Music.Update(dt)

	switch fe.state {
	case StateNew:
		// waiting for Boot

	case StateEnter:
		if fe.page.IsIdle() {
			fe.state = StateIdle
		}

	case StateIdle:
		fe.idle(dt)

	case StateHighlightRequest:
		fe.state = StateHighlightExit
	case StateHighlightExit:
		if fe.page.IsIdle() {
			fe.state = StateHighlightLoadArt
		}
	case StateHighlightLoadArt:
		if item := fe.page.SelectedItem(); item != nil {
			fe.svc.Launch.LEDs().GameHighlight(item)
		}
		fe.state = StateHighlightEnter
	case StateHighlightEnter:
		if !fe.consumeInput() && fe.page.IsIdle() {
			fe.state = StateIdle
		}

	case StatePlaylistNext, StatePlaylistPrev:
		fe.state = StatePlaylistRequest
	case StatePlaylistRequest:
		fe.page.Exit()
		fe.state = StatePlaylistExit
	case StatePlaylistExit:
		if fe.page.IsIdle() {
			fe.state = StatePlaylistLoadArt
		}
	case StatePlaylistLoadArt:
		fe.applyDirtyPlaylists()
		if !fe.page.SetPlaylist(fe.pendingPlaylist) {
			logger.Logf(logger.Warning, "frontend", "no such playlist: %s", fe.pendingPlaylist)
		}
		if fe.playlistInputClear {
			fe.pending = nil
		}
		fe.page.Enter()
		fe.state = StatePlaylistEnter
	case StatePlaylistEnter:
		if fe.page.IsIdle() {
			fe.state = StateIdle
		}

	case StateMenuJumpRequest:
		fe.state = StateMenuJumpExit
	case StateMenuJumpExit:
		if fe.page.IsIdle() {
			fe.state = StateMenuJumpLoadArt
		}
	case StateMenuJumpLoadArt:
		fe.page.SetSelectedIndex(fe.jumpTarget)
		if fe.jumpInputClear {
			fe.pending = nil
		}
		fe.state = StateMenuJumpEnter
	case StateMenuJumpEnter:
		if fe.page.IsIdle() {
			fe.state = StateIdle
		}

	case StateNextPageRequest:
		fe.page.Exit()
		fe.state = StateNextPageMenuExit
	case StateNextPageMenuExit:
		if fe.page.IsIdle() {
			fe.state = StateNextPageMenuLoadArt
		}
	case StateNextPageMenuLoadArt:
		fe.enterSelected()
	case StateNextPageMenuEnter:
		if fe.page.IsIdle() {
			fe.state = StateIdle
		}

	case StateBackRequest:
		fe.page.Exit()
		fe.state = StateBackMenuExit
	case StateBackMenuExit:
		if fe.page.IsIdle() {
			fe.state = StateBackMenuLoadArt
		}
	case StateBackMenuLoadArt:
		fe.restorePrevious()
	case StateBackMenuEnter:
		if fe.page.IsIdle() {
			fe.state = StateIdle
		}

	case StateCollectionDownRequest, StateCollectionUpRequest:
		fe.page.Exit()
		if fe.state == StateCollectionDownRequest {
			fe.state = StateCollectionDownExit
		} else {
			fe.state = StateCollectionUpExit
		}
	case StateCollectionDownExit:
		if fe.page.IsIdle() {
			fe.state = StateCollectionDownScroll
		}
	case StateCollectionUpExit:
		if fe.page.IsIdle() {
			fe.state = StateCollectionUpScroll
		}
	case StateCollectionDownScroll:
		fe.changeCollection()
		fe.state = StateCollectionDownMenuEnter
	case StateCollectionUpScroll:
		fe.changeCollection()
		fe.state = StateCollectionUpMenuEnter
	case StateCollectionDownMenuEnter:
		fe.page.Enter()
		fe.state = StateCollectionDownEnter
	case StateCollectionUpMenuEnter:
		fe.page.Enter()
		fe.state = StateCollectionUpEnter
	case StateCollectionDownEnter, StateCollectionUpEnter:
		if !fe.consumeInput() && fe.page.IsIdle() {
			fe.state = StateIdle
		}

	case StateCollectionHighlightRequest:
		fe.state = StateCollectionHighlightExit
	case StateCollectionHighlightExit:
		if fe.page.IsIdle() {
			fe.state = StateCollectionHighlightLoadArt
		}
	case StateCollectionHighlightLoadArt:
		fe.state = StateCollectionHighlightEnter
	case StateCollectionHighlightEnter:
		if fe.page.IsIdle() {
			fe.state = StateIdle
		}

	case StateHandleMenuEntry:
		fe.enterSelected()

	case StateSettingsRequest, StateQuickListRequest:
		fe.page.Exit()
		if fe.state == StateSettingsRequest {
			fe.state = StateSettingsExit
		} else {
			fe.state = StateQuickListExit
		}
	case StateSettingsExit:
		if fe.page.IsIdle() {
			fe.state = StateSettingsLoadArt
		}
	case StateQuickListExit:
		if fe.page.IsIdle() {
			fe.state = StateQuickListLoadArt
		}
	case StateSettingsLoadArt:
		fe.pushSidebar("settings")
		fe.state = StateSettingsEnter
	case StateQuickListLoadArt:
		fe.pushSidebar("quicklist")
		fe.state = StateQuickListEnter
	case StateSettingsEnter, StateQuickListEnter:
		if fe.page.IsIdle() {
			fe.state = StateIdle
		}

	case StateMenuModeStartRequest:
		fe.state = StateMenuModeStartLoadArt
	case StateMenuModeStartLoadArt:
		fe.pushSidebar(fe.page.Playlist())
		fe.state = StateMenuModeStartEnter
	case StateMenuModeStartEnter:
		if fe.page.IsIdle() {
			fe.state = StateIdle
		}

	case StateGameInfoEnter, StateGameInfoExit,
		StateCollectionInfoEnter, StateCollectionInfoExit,
		StateBuildInfoEnter, StateBuildInfoExit:
		if fe.page.IsIdle() {
			fe.state = StateIdle
		}

	case StateLaunchRequest, StateAttractLaunchRequest:
		if fe.page.IsIdle() {
			if fe.state == StateLaunchRequest {
				fe.state = StateLaunchEnter
			} else {
				fe.state = StateAttractLaunchEnter
			}
		}
	case StateLaunchEnter, StateAttractLaunchEnter:
		fe.runLaunch()
	case StateLaunchExit:
		if fe.page.IsIdle() {
			fe.state = StateIdle
		}

	case StateQuitRequest:
		fe.page.Exit()
		fe.state = StateQuit
	case StateQuit:
		if fe.page.IsIdle() && !fe.quit {
			fe.svc.Launch.LEDs().AppStop()
			launcher.RunHookScript("exit")
			fe.quit = true
		}
	}
}

// idle consumes input when there is any and otherwise feeds attract
// mode.
func (fe *Frontend) idle(dt float64) {
	if fe.consumeInput() {
		return
	}

	if dt > maxAttractDt {
		dt = maxAttractDt
	}

	switch fe.attract.Update(dt, fe.page) {
	case attract.ChangePlaylist:
		if next, ok := fe.nextAttractPlaylist(); ok {
			fe.pendingPlaylist = next
			fe.state = StatePlaylistRequest
		}

	case attract.ChangeCollection:
		// every attractModePlaylistCollectionNumber'th collection
		// change becomes a playlist change instead
		fe.attractCollectCount++
		if fe.attractCollectEvery > 0 && fe.attractCollectCount >= fe.attractCollectEvery {
			fe.attractCollectCount = 0
			if next, ok := fe.nextAttractPlaylist(); ok {
				fe.pendingPlaylist = next
				fe.state = StatePlaylistRequest
			}
			break
		}
		if next, ok := fe.nextAttractCollection(); ok {
			fe.pendingCollection = next
			fe.state = StateCollectionDownRequest
		}

	case attract.Launch:
		if item, idx, ok := fe.randomLeaf(); ok {
			fe.jumpTarget = idx
			fe.page.SetSelectedIndex(idx)
			fe.launchItem = item
			fe.launchAttract = true
			fe.state = StateAttractLaunchRequest
			logger.Logf(logger.Info, "frontend", "attract launching %s", item.Name)
		}
	}
}

// consumeInput pops and handles one pending action. Returns true if an
// action was handled.
func (fe *Frontend) consumeInput() bool {
	for len(fe.pending) > 0 {
		a := fe.pending[0]
		fe.pending = fe.pending[1:]

		if a == userinput.NoAction || a.IsComboHalf() {
			continue
		}

		// any real input ends the attract campaign
		fe.attract.Reset(false)

		if !fe.isNavigation(a) && !fe.svc.Debounce.Allow(a, time.Now(), fe.debounceFor(a)) {
			continue
		}

		fe.handle(a)
		return true
	}
	return false
}

func (fe *Frontend) isNavigation(a userinput.Action) bool {
	switch a {
	case userinput.Up, userinput.Down, userinput.Left, userinput.Right,
		userinput.PageUp, userinput.PageDown:
		return true
	}
	return false
}

func (fe *Frontend) debounceFor(a userinput.Action) time.Duration {
	switch a {
	case userinput.CycleCollection, userinput.PrevCycleCollection:
		// collection rebuilds are expensive. a longer debounce
		return fe.keyDelay + time.Second
	}
	return fe.keyDelay
}

// kioskBlocked lists the actions the kiosk lock disables. Launching,
// random select and quit stay available.
func (fe *Frontend) kioskBlocked(a userinput.Action) bool {
	if !fe.kiosk {
		return false
	}
	switch a {
	case userinput.CollectionUp, userinput.CollectionDown,
		userinput.CollectionLeft, userinput.CollectionRight,
		userinput.CycleCollection, userinput.PrevCycleCollection,
		userinput.QuickList, userinput.Settings,
		userinput.AddPlaylist, userinput.RemovePlaylist, userinput.TogglePlaylist,
		userinput.NextPlaylist, userinput.PrevPlaylist,
		userinput.CyclePlaylistNext, userinput.CyclePlaylistPrev,
		userinput.PlaylistUp, userinput.PlaylistDown,
		userinput.PlaylistLeft, userinput.PlaylistRight,
		userinput.FavPlaylist, userinput.SaveFirstPlaylist:
		return true
	}
	return false
}

func (fe *Frontend) handle(a userinput.Action) {
	if fe.kioskBlocked(a) {
		logger.Logf(logger.Debug, "frontend", "kiosk lock: %v ignored", a)
		return
	}

	switch a {
	case userinput.Up, userinput.Left:
		fe.scroll(false)
	case userinput.Down, userinput.Right:
		fe.scroll(true)

	case userinput.PageUp:
		fe.jump(fe.page.SelectedIndex() - pageJump)
	case userinput.PageDown:
		fe.jump(fe.page.SelectedIndex() + pageJump)

	case userinput.LetterUp:
		fe.letterJump(false)
	case userinput.LetterDown:
		fe.letterJump(true)

	case userinput.Random:
		if fe.page.Size() > 0 {
			fe.jump(fe.rnd.Intn(fe.page.Size()))
		}

	case userinput.Select:
		fe.selectCurrent()

	case userinput.Back:
		switch {
		case len(fe.stack) > 0:
			fe.state = StateBackRequest
		case fe.backOnCollection && !fe.kiosk && len(fe.cycleCollection) > 0:
			if next, ok := fe.cycledCollection(false); ok {
				fe.pendingCollection = next
				fe.state = StateCollectionUpRequest
			}
		case fe.backOnEmpty:
			fe.state = StateQuitRequest
		}

	case userinput.NextPlaylist, userinput.CyclePlaylistNext,
		userinput.PlaylistDown, userinput.PlaylistRight:
		fe.cyclePlaylistStep(true)
	case userinput.PrevPlaylist, userinput.CyclePlaylistPrev,
		userinput.PlaylistUp, userinput.PlaylistLeft:
		fe.cyclePlaylistStep(false)

	case userinput.FavPlaylist:
		fe.pendingPlaylist = "favorites"
		fe.state = StatePlaylistRequest

	case userinput.TogglePlaylist:
		if fe.page.Playlist() == "favorites" {
			fe.pendingPlaylist = fe.autoPlaylist
		} else {
			fe.pendingPlaylist = "favorites"
		}
		fe.state = StatePlaylistRequest

	case userinput.AddPlaylist:
		fe.toggleFavorite(true)
	case userinput.RemovePlaylist:
		fe.toggleFavorite(false)

	case userinput.QuickList:
		fe.state = StateQuickListRequest
	case userinput.Settings:
		fe.state = StateSettingsRequest
	case userinput.Menu, userinput.AdminMode:
		fe.state = StateMenuModeStartRequest

	case userinput.Kiosk:
		fe.kiosk = !fe.kiosk
		logger.Logf(logger.Notice, "frontend", "kiosk lock %v", fe.kiosk)

	case userinput.ShowFps:
		fe.fpsOverlay = !fe.fpsOverlay

	case userinput.ToggleGameInfo:
		fe.infoGame = !fe.infoGame
		if fe.infoGame {
			fe.state = StateGameInfoEnter
		} else {
			fe.state = StateGameInfoExit
		}
	case userinput.ToggleCollectionInfo:
		fe.infoCollection = !fe.infoCollection
		if fe.infoCollection {
			fe.state = StateCollectionInfoEnter
		} else {
			fe.state = StateCollectionInfoExit
		}
	case userinput.ToggleBuildInfo:
		fe.infoBuild = !fe.infoBuild
		if fe.infoBuild {
			fe.state = StateBuildInfoEnter
		} else {
			fe.state = StateBuildInfoExit
		}

	case userinput.SkipForward, userinput.SkipBackward,
		userinput.SkipForwardP, userinput.SkipBackwardP,
		userinput.Pause, userinput.Restart:
		// media transport concerns the render layer's video player
		logger.Logf(logger.Debug, "frontend", "media action %v ignored", a)

	case userinput.SaveFirstPlaylist:
		fe.saveFirstPlaylist()

	case userinput.CycleCollection, userinput.CollectionDown, userinput.CollectionRight:
		if next, ok := fe.cycledCollection(true); ok {
			fe.pendingCollection = next
			fe.state = StateCollectionDownRequest
		}
	case userinput.PrevCycleCollection, userinput.CollectionUp, userinput.CollectionLeft:
		if next, ok := fe.cycledCollection(false); ok {
			fe.pendingCollection = next
			fe.state = StateCollectionUpRequest
		}

	case userinput.MusicPlayPause:
		fe.svc.Music.TogglePause()
	case userinput.MusicNext:
		fe.svc.Music.Next()
	case userinput.MusicPrev:
		fe.svc.Music.Previous()
	case userinput.MusicVolumeUp:
		fe.svc.Music.StepVolume(1)
	case userinput.MusicVolumeDown:
		fe.svc.Music.StepVolume(-1)
	case userinput.MusicToggleShuffle:
		fe.svc.Music.SetShuffle(!fe.svc.Music.Shuffle())
	case userinput.MusicToggleLoop:
		fe.svc.Music.ToggleLoop()

	case userinput.Quit:
		fe.state = StateQuitRequest
	case userinput.Reboot:
		fe.reboot = true
		fe.state = StateQuitRequest
	}
}

func (fe *Frontend) scroll(forward bool) {
	if fe.infoExitOnScroll {
		fe.infoGame = false
		fe.infoCollection = false
		fe.infoBuild = false
	}
	fe.page.Scroll(forward)
	fe.state = StateHighlightRequest
}

func (fe *Frontend) jump(target int) {
	fe.jumpTarget = target
	fe.state = StateMenuJumpRequest
}

// letterJump moves to the first item whose sort letter differs from the
// current one, scanning forward or backward.
func (fe *Frontend) letterJump(forward bool) {
	items, _ := fe.page.Collection().Playlist(fe.page.Playlist())
	n := len(items)
	if n == 0 {
		return
	}

	letter := func(i int) byte {
		t := strings.ToLower(items[i].FullTitle)
		if t == "" {
			return 0
		}
		return t[0]
	}

	cur := fe.page.SelectedIndex()
	step := 1
	if !forward {
		step = -1
	}

	for i, idx := 0, cur; i < n; i++ {
		idx = ((idx+step)%n + n) % n
		if letter(idx) != letter(cur) {
			fe.jump(idx)
			return
		}
	}
}

func (fe *Frontend) selectCurrent() {
	item := fe.page.SelectedItem()
	if item == nil {
		return
	}

	if !item.Leaf {
		fe.state = StateNextPageRequest
		return
	}

	if fe.launchInProgress {
		return
	}
	fe.launchItem = item
	fe.launchAttract = false
	fe.page.Exit()
	fe.state = StateLaunchRequest
}

// enterSelected pushes a new page for the selected non-leaf item.
func (fe *Frontend) enterSelected() {
	item := fe.page.SelectedItem()
	if item == nil || item.Leaf {
		fe.page.Enter()
		fe.state = StateNextPageMenuEnter
		return
	}

	info, err := fe.svc.Builder.Build(item.Name)
	if err != nil {
		logger.Logf(logger.Error, "frontend", "%v", err)
		fe.page.Enter()
		fe.state = StateNextPageMenuEnter
		return
	}

	// remember where we were
	owner := fe.page.Collection().Name
	fe.lastMenuOffsets[owner] = fe.page.SelectedIndex()
	fe.lastMenuPlaylists[owner] = fe.page.Playlist()

	fe.svc.Launch.LEDs().GameSelect(item)

	fe.stack = append(fe.stack, fe.page)
	fe.page = fe.newPage()
	fe.page.SetCollection(info)

	playlist := fe.autoPlaylist
	if fe.rememberMenu {
		if p, ok := fe.lastMenuPlaylists[info.Name]; ok {
			playlist = p
		}
	}
	if !fe.page.SetPlaylist(playlist) {
		fe.page.SetPlaylist("all")
	}
	if fe.rememberMenu {
		if off, ok := fe.lastMenuOffsets[info.Name]; ok {
			fe.page.SetSelectedIndex(off)
		}
	}

	if fe.collectionInputClear {
		fe.pending = nil
	}

	fe.page.Enter()
	fe.state = StateNextPageMenuEnter
}

// restorePrevious pops the page stack. The restored page keeps the
// scroll offset and playlist it had before the enter.
func (fe *Frontend) restorePrevious() {
	if len(fe.stack) == 0 {
		fe.page.Enter()
		fe.state = StateBackMenuEnter
		return
	}

	fe.page = fe.stack[len(fe.stack)-1]
	fe.stack = fe.stack[:len(fe.stack)-1]

	fe.page.Enter()
	fe.state = StateBackMenuEnter
}

// pushSidebar pushes a page showing the named playlist of the current
// collection. Back pops it like any other page.
func (fe *Frontend) pushSidebar(playlist string) {
	info := fe.page.Collection()

	fe.stack = append(fe.stack, fe.page)
	fe.page = fe.newPage()
	fe.page.SetCollection(info)
	if !fe.page.SetPlaylist(playlist) {
		fe.page.SetPlaylist("all")
	}
	fe.page.Enter()
}

// changeCollection swaps the current page's collection in place.
func (fe *Frontend) changeCollection() {
	info, err := fe.svc.Builder.Build(fe.pendingCollection)
	if err != nil {
		logger.Logf(logger.Error, "frontend", "%v", err)
		return
	}

	owner := fe.page.Collection().Name
	fe.lastMenuOffsets[owner] = fe.page.SelectedIndex()
	fe.lastMenuPlaylists[owner] = fe.page.Playlist()

	fe.page.SetCollection(info)

	playlist := fe.autoPlaylist
	if fe.rememberMenu {
		if p, ok := fe.lastMenuPlaylists[info.Name]; ok {
			playlist = p
		}
	}
	if !fe.page.SetPlaylist(playlist) {
		fe.page.SetPlaylist("all")
	}
	if fe.rememberMenu {
		if off, ok := fe.lastMenuOffsets[info.Name]; ok {
			fe.page.SetSelectedIndex(off)
		}
	}

	if fe.collectionInputClear {
		fe.pending = nil
	}
}

// cycledCollection returns the next collection in the cycleCollection
// list relative to the current one.
func (fe *Frontend) cycledCollection(forward bool) (string, bool) {
	if len(fe.cycleCollection) == 0 {
		return "", false
	}

	cur := fe.page.Collection().Name
	idx := -1
	for i, n := range fe.cycleCollection {
		if n == cur {
			idx = i
			break
		}
	}

	step := 1
	if !forward {
		step = -1
	}
	n := len(fe.cycleCollection)
	next := fe.cycleCollection[((idx+step)%n+n)%n]
	if next == cur {
		return "", false
	}
	return next, true
}

func (fe *Frontend) cyclePlaylistStep(forward bool) {
	names := cyclePlaylists(fe.page.Collection(), fe.cyclePlaylist)
	if len(names) == 0 {
		return
	}

	cur := fe.page.Playlist()
	idx := 0
	for i, n := range names {
		if n == cur {
			idx = i
			break
		}
	}

	step := 1
	if !forward {
		step = -1
	}
	n := len(names)
	fe.pendingPlaylist = names[((idx+step)%n+n)%n]
	if forward {
		fe.state = StatePlaylistNext
	} else {
		fe.state = StatePlaylistPrev
	}
}

// attractUsesCycle reports whether attract playlist changes are bound
// to the configured cycle. The attractModeCyclePlaylist default can be
// overridden per collection.
func (fe *Frontend) attractUsesCycle() bool {
	key := "collections." + fe.page.Collection().Name + ".attractModeCyclePlaylist"
	return fe.svc.Cfg.Bool(key, fe.attractCyclePl)
}

// nextAttractPlaylist picks the playlist an attract-mode playlist
// change moves to, honouring the skip list.
func (fe *Frontend) nextAttractPlaylist() (string, bool) {
	configured := fe.cyclePlaylist
	if !fe.attractUsesCycle() {
		// draw from every playlist of the collection instead
		configured = nil
	}
	names := cyclePlaylists(fe.page.Collection(), configured)

	var eligible []string
	for _, n := range names {
		if n == fe.page.Playlist() || fe.listed(fe.attractSkipPlaylist, n) {
			continue
		}
		if p, _ := fe.page.Collection().Playlist(n); len(p) == 0 {
			continue
		}
		eligible = append(eligible, n)
	}
	if len(eligible) == 0 {
		return "", false
	}
	return eligible[fe.rnd.Intn(len(eligible))], true
}

func (fe *Frontend) nextAttractCollection() (string, bool) {
	var eligible []string
	for _, n := range fe.cycleCollection {
		if n == fe.page.Collection().Name || fe.listed(fe.attractSkipCollect, n) {
			continue
		}
		eligible = append(eligible, n)
	}
	if len(eligible) == 0 {
		return "", false
	}
	return eligible[fe.rnd.Intn(len(eligible))], true
}

func (fe *Frontend) listed(list []string, name string) bool {
	for _, n := range list {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// randomLeaf picks a random launchable item from the current playlist.
func (fe *Frontend) randomLeaf() (*collection.Item, int, bool) {
	items, _ := fe.page.Collection().Playlist(fe.page.Playlist())

	var leaves []int
	for i, item := range items {
		if item.Leaf {
			leaves = append(leaves, i)
		}
	}
	if len(leaves) == 0 {
		return nil, 0, false
	}

	idx := leaves[fe.rnd.Intn(len(leaves))]
	return items[idx], idx, true
}

// toggleFavorite adds or removes the selected item from the favorites
// playlist and saves it. With globalFavLast the save goes to the boot
// collection's favorites instead of the current page's.
func (fe *Frontend) toggleFavorite(add bool) {
	item := fe.page.SelectedItem()
	if item == nil {
		return
	}

	target := fe.page.Collection()
	if fe.globalFavLast && fe.rootInfo != nil {
		target = fe.rootInfo
	}

	fav, _ := target.Playlist("favorites")

	present := -1
	for i, f := range fav {
		if f == item {
			present = i
			break
		}
	}

	switch {
	case add && present < 0:
		fav = append(fav, item)
	case !add && present >= 0:
		fav = append(fav[:present], fav[present+1:]...)
	default:
		return
	}

	target.SetPlaylist("favorites", fav)
	if err := collection.SaveFavorites(target); err != nil {
		logger.Logf(logger.Error, "frontend", "%v", err)
	}
}

func (fe *Frontend) saveFirstPlaylist() {
	// the post hook on the saved value persists the registry
	if err := fe.svc.FirstPlaylist.Set(fe.page.Playlist()); err != nil {
		logger.Logf(logger.Error, "frontend", "%v", err)
		return
	}
	logger.Logf(logger.Notice, "frontend", "first playlist saved: %s", fe.page.Playlist())
}

// applyDirtyPlaylists rebuilds the current collection if the payload
// sync rewrote any of its playlists.
func (fe *Frontend) applyDirtyPlaylists() {
	info := fe.page.Collection()
	changed := fe.svc.Dirty.DrainForCollection(info.Name)
	if len(changed) == 0 {
		return
	}

	logger.Logf(logger.Info, "frontend", "reloading %s: %s changed", info.Name, strings.Join(changed, ", "))

	rebuilt, err := fe.svc.Builder.Build(info.Name)
	if err != nil {
		logger.Logf(logger.Error, "frontend", "%v", err)
		return
	}

	if info == fe.rootInfo {
		fe.rootInfo = rebuilt
	}

	idx := fe.page.SelectedIndex()
	fe.page.SetCollection(rebuilt)
	fe.page.SetSelectedIndex(idx)
}

// runLaunch hands the pending item to the launcher and restores the
// page afterwards. Runs on the main thread; the frame loop is stalled
// for the duration, which is why attract dt is clamped.
func (fe *Frontend) runLaunch() {
	item := fe.launchItem
	fe.launchItem = nil
	if item == nil {
		fe.page.Enter()
		fe.state = StateLaunchExit
		return
	}

	fe.launchInProgress = true
	defer func() { fe.launchInProgress = false }()

	result, err := fe.svc.Launch.Run(item, fe.launchAttract)

	// back from the child. reset the idle machinery whatever happened
	fe.attract.Reset(false)
	fe.svc.Debounce.Reset()
	fe.svc.Mapper.ResetFirstInput()
	fe.pending = nil

	if err != nil {
		logger.Logf(logger.Error, "frontend", "%v", err)
		fe.page.Enter()
		fe.state = StateLaunchExit
		return
	}

	if result.Gameplay && !fe.listed(fe.lastPlayedSkip, item.CollectionName()) {
		collection.UpdateLastPlayedPlaylist(fe.page.Collection(), item, fe.lastPlayedSize)
	}

	if result.Reboot {
		fe.reboot = true
		fe.state = StateQuitRequest
		return
	}

	fe.page.Enter()
	fe.state = StateLaunchExit
}
