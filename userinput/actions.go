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

package userinput

// Action is one of the closed set of user actions the frontend responds
// to. Raw keyboard and joystick events never travel further than this
// package.
type Action int

// List of valid Action values.
const (
	NoAction Action = iota

	Up
	Down
	Left
	Right
	PlaylistUp
	PlaylistDown
	PlaylistLeft
	PlaylistRight
	CollectionUp
	CollectionDown
	CollectionLeft
	CollectionRight
	PageUp
	PageDown
	LetterUp
	LetterDown
	Select
	Back

	NextPlaylist
	PrevPlaylist
	CyclePlaylistNext
	CyclePlaylistPrev
	FavPlaylist
	TogglePlaylist
	AddPlaylist
	RemovePlaylist
	QuickList
	Settings
	Menu
	Kiosk
	ShowFps
	ToggleGameInfo
	ToggleCollectionInfo
	ToggleBuildInfo
	SkipForward
	SkipBackward
	SkipForwardP
	SkipBackwardP
	Pause
	Restart
	Random
	SaveFirstPlaylist
	AdminMode
	Quit
	Reboot
	CycleCollection
	PrevCycleCollection

	MusicPlayPause
	MusicNext
	MusicPrev
	MusicVolumeUp
	MusicVolumeDown
	MusicToggleShuffle
	MusicToggleLoop

	QuitCombo1
	QuitCombo2
	SettingsCombo1
	SettingsCombo2
	GameInfoCombo1
	GameInfoCombo2
	CollectionInfoCombo1
	CollectionInfoCombo2
	BuildInfoCombo1
	BuildInfoCombo2
)

// actionNames maps the controls.conf key for each action. Combo halves
// are bound individually; the combined action fires when both halves are
// seen inside the combo window.
var actionNames = map[string]Action{
	"up":                   Up,
	"down":                 Down,
	"left":                 Left,
	"right":                Right,
	"playlistUp":           PlaylistUp,
	"playlistDown":         PlaylistDown,
	"playlistLeft":         PlaylistLeft,
	"playlistRight":        PlaylistRight,
	"collectionUp":         CollectionUp,
	"collectionDown":       CollectionDown,
	"collectionLeft":       CollectionLeft,
	"collectionRight":      CollectionRight,
	"pageUp":               PageUp,
	"pageDown":             PageDown,
	"letterUp":             LetterUp,
	"letterDown":           LetterDown,
	"select":               Select,
	"back":                 Back,
	"nextPlaylist":         NextPlaylist,
	"prevPlaylist":         PrevPlaylist,
	"cyclePlaylist":        CyclePlaylistNext,
	"prevCyclePlaylist":    CyclePlaylistPrev,
	"favPlaylist":          FavPlaylist,
	"togglePlaylist":       TogglePlaylist,
	"addPlaylist":          AddPlaylist,
	"removePlaylist":       RemovePlaylist,
	"quickList":            QuickList,
	"settings":             Settings,
	"menu":                 Menu,
	"kiosk":                Kiosk,
	"showFps":              ShowFps,
	"gameInfo":             ToggleGameInfo,
	"collectionInfo":       ToggleCollectionInfo,
	"buildInfo":            ToggleBuildInfo,
	"skipForward":          SkipForward,
	"skipBackward":         SkipBackward,
	"skipForwardP":         SkipForwardP,
	"skipBackwardP":        SkipBackwardP,
	"pause":                Pause,
	"restart":              Restart,
	"random":               Random,
	"saveFirstPlaylist":    SaveFirstPlaylist,
	"adminMode":            AdminMode,
	"quit":                 Quit,
	"reboot":               Reboot,
	"cycleCollection":      CycleCollection,
	"prevCycleCollection":  PrevCycleCollection,
	"musicPlayPause":       MusicPlayPause,
	"musicNext":            MusicNext,
	"musicPrev":            MusicPrev,
	"musicVolumeUp":        MusicVolumeUp,
	"musicVolumeDown":      MusicVolumeDown,
	"musicToggleShuffle":   MusicToggleShuffle,
	"musicToggleLoop":      MusicToggleLoop,
	"quitCombo1":           QuitCombo1,
	"quitCombo2":           QuitCombo2,
	"settingsCombo1":       SettingsCombo1,
	"settingsCombo2":       SettingsCombo2,
	"gameInfoCombo1":       GameInfoCombo1,
	"gameInfoCombo2":       GameInfoCombo2,
	"collectionInfoCombo1": CollectionInfoCombo1,
	"collectionInfoCombo2": CollectionInfoCombo2,
	"buildInfoCombo1":      BuildInfoCombo1,
	"buildInfoCombo2":      BuildInfoCombo2,
}

// combos pairs the halves with the action they complete.
var combos = []struct {
	first  Action
	second Action
	fires  Action
}{
	{QuitCombo1, QuitCombo2, Quit},
	{SettingsCombo1, SettingsCombo2, Settings},
	{GameInfoCombo1, GameInfoCombo2, ToggleGameInfo},
	{CollectionInfoCombo1, CollectionInfoCombo2, ToggleCollectionInfo},
	{BuildInfoCombo1, BuildInfoCombo2, ToggleBuildInfo},
}

// IsComboHalf returns true for the actions that only have meaning as one
// half of a two-key combo.
func (a Action) IsComboHalf() bool {
	return a >= QuitCombo1 && a <= BuildInfoCombo2
}
