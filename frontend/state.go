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

// State of the core machine. Every visible transition follows the
// four-phase template REQUEST -> EXIT -> LOAD_ART -> ENTER; the machine
// returns to Idle only once the page reports idle after the enter
// phase.
type State int

// List of valid State values.
const (
	StateNew State = iota
	StateEnter
	StateIdle
	StateSplashExit

	StatePlaylistRequest
	StatePlaylistExit
	StatePlaylistLoadArt
	StatePlaylistEnter
	StatePlaylistNext
	StatePlaylistPrev

	StateMenuJumpRequest
	StateMenuJumpExit
	StateMenuJumpLoadArt
	StateMenuJumpEnter

	StateHighlightRequest
	StateHighlightExit
	StateHighlightLoadArt
	StateHighlightEnter

	StateNextPageRequest
	StateNextPageMenuExit
	StateNextPageMenuLoadArt
	StateNextPageMenuEnter

	StateBackRequest
	StateBackMenuExit
	StateBackMenuLoadArt
	StateBackMenuEnter

	StateCollectionDownRequest
	StateCollectionDownExit
	StateCollectionDownEnter
	StateCollectionDownMenuEnter
	StateCollectionDownScroll

	StateCollectionUpRequest
	StateCollectionUpExit
	StateCollectionUpEnter
	StateCollectionUpMenuEnter
	StateCollectionUpScroll

	StateCollectionHighlightRequest
	StateCollectionHighlightExit
	StateCollectionHighlightLoadArt
	StateCollectionHighlightEnter

	StateHandleMenuEntry

	StateSettingsRequest
	StateSettingsExit
	StateSettingsLoadArt
	StateSettingsEnter

	StateQuickListRequest
	StateQuickListExit
	StateQuickListLoadArt
	StateQuickListEnter

	StateMenuModeStartRequest
	StateMenuModeStartLoadArt
	StateMenuModeStartEnter

	StateGameInfoEnter
	StateGameInfoExit
	StateCollectionInfoEnter
	StateCollectionInfoExit
	StateBuildInfoEnter
	StateBuildInfoExit

	StateLaunchRequest
	StateLaunchExit
	StateLaunchEnter

	StateAttractLaunchRequest
	StateAttractLaunchEnter

	StateQuitRequest
	StateQuit
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateEnter:
		return "enter"
	case StateIdle:
		return "idle"
	case StateSplashExit:
		return "splash exit"
	case StatePlaylistRequest, StatePlaylistExit, StatePlaylistLoadArt, StatePlaylistEnter,
		StatePlaylistNext, StatePlaylistPrev:
		return "playlist change"
	case StateMenuJumpRequest, StateMenuJumpExit, StateMenuJumpLoadArt, StateMenuJumpEnter:
		return "menu jump"
	case StateHighlightRequest, StateHighlightExit, StateHighlightLoadArt, StateHighlightEnter:
		return "highlight change"
	case StateNextPageRequest, StateNextPageMenuExit, StateNextPageMenuLoadArt, StateNextPageMenuEnter:
		return "next page"
	case StateBackRequest, StateBackMenuExit, StateBackMenuLoadArt, StateBackMenuEnter:
		return "back"
	case StateCollectionDownRequest, StateCollectionDownExit, StateCollectionDownEnter,
		StateCollectionDownMenuEnter, StateCollectionDownScroll:
		return "collection down"
	case StateCollectionUpRequest, StateCollectionUpExit, StateCollectionUpEnter,
		StateCollectionUpMenuEnter, StateCollectionUpScroll:
		return "collection up"
	case StateCollectionHighlightRequest, StateCollectionHighlightExit,
		StateCollectionHighlightLoadArt, StateCollectionHighlightEnter:
		return "collection highlight"
	case StateHandleMenuEntry:
		return "menu entry"
	case StateSettingsRequest, StateSettingsExit, StateSettingsLoadArt, StateSettingsEnter:
		return "settings"
	case StateQuickListRequest, StateQuickListExit, StateQuickListLoadArt, StateQuickListEnter:
		return "quicklist"
	case StateMenuModeStartRequest, StateMenuModeStartLoadArt, StateMenuModeStartEnter:
		return "menu mode"
	case StateGameInfoEnter, StateGameInfoExit:
		return "game info"
	case StateCollectionInfoEnter, StateCollectionInfoExit:
		return "collection info"
	case StateBuildInfoEnter, StateBuildInfoExit:
		return "build info"
	case StateLaunchRequest, StateLaunchExit, StateLaunchEnter:
		return "launch"
	case StateAttractLaunchRequest, StateAttractLaunchEnter:
		return "attract launch"
	case StateQuitRequest, StateQuit:
		return "quit"
	}
	return "unknown"
}
