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
	"sort"
	"strings"

	"github.com/retrofe/retrofe/collection"
)

// Page is the facade over one menu screen. The core machine drives
// pages purely through this interface; the rendering side supplies its
// own implementation. MenuPage is the model-level implementation used
// when no renderer is attached, and by the tests.
type Page interface {
	// attract mode drives these three
	SetScrolling(active bool)
	IsJukebox() bool
	PlaybackDone() bool

	Collection() *collection.Info
	SetCollection(info *collection.Info)

	Playlist() string
	SetPlaylist(name string) bool

	SelectedIndex() int
	SetSelectedIndex(i int)
	SelectedItem() *collection.Item
	Size() int

	// Scroll moves the highlight one step.
	Scroll(forward bool)

	// animation lifecycle of the four-phase transitions
	Enter()
	Exit()
	Update(dt float64)
	IsIdle() bool
}

// transitionTime is how long MenuPage's enter and exit animations take.
// The renderer's page reports its own timings through IsIdle.
const transitionTime = 0.25

// MenuPage is the model implementation of Page.
type MenuPage struct {
	info     *collection.Info
	playlist string
	index    int

	scrolling bool
	jukebox   bool
	animLeft  float64
}

// NewMenuPage is the preferred method of initialisation for the
// MenuPage type.
func NewMenuPage() *MenuPage {
	return &MenuPage{playlist: "all"}
}

// SetScrolling implements the Page interface.
func (pg *MenuPage) SetScrolling(active bool) {
	pg.scrolling = active
}

// IsScrolling returns true while attract mode is scrolling the menu.
func (pg *MenuPage) IsScrolling() bool {
	return pg.scrolling
}

// SetJukebox marks the page as a jukebox layout.
func (pg *MenuPage) SetJukebox(jukebox bool) {
	pg.jukebox = jukebox
}

// IsJukebox implements the Page interface.
func (pg *MenuPage) IsJukebox() bool {
	return pg.jukebox
}

// PlaybackDone implements the Page interface. The model page has no
// media pipeline so playback is always done.
func (pg *MenuPage) PlaybackDone() bool {
	return true
}

// Collection implements the Page interface.
func (pg *MenuPage) Collection() *collection.Info {
	return pg.info
}

// SetCollection implements the Page interface. The selection resets and
// the playlist falls back to "all" when the new collection does not
// have the current one.
func (pg *MenuPage) SetCollection(info *collection.Info) {
	pg.info = info
	pg.index = 0
	if _, ok := info.Playlist(pg.playlist); !ok {
		pg.playlist = "all"
	}
}

// Playlist implements the Page interface.
func (pg *MenuPage) Playlist() string {
	return pg.playlist
}

// SetPlaylist implements the Page interface.
func (pg *MenuPage) SetPlaylist(name string) bool {
	if pg.info == nil {
		return false
	}
	if _, ok := pg.info.Playlist(name); !ok {
		return false
	}
	pg.playlist = name
	pg.index = 0
	return true
}

// items of the current playlist.
func (pg *MenuPage) items() []*collection.Item {
	if pg.info == nil {
		return nil
	}
	p, _ := pg.info.Playlist(pg.playlist)
	return p
}

// Size implements the Page interface.
func (pg *MenuPage) Size() int {
	return len(pg.items())
}

// SelectedIndex implements the Page interface.
func (pg *MenuPage) SelectedIndex() int {
	return pg.index
}

// SetSelectedIndex implements the Page interface.
func (pg *MenuPage) SetSelectedIndex(i int) {
	if n := pg.Size(); n > 0 {
		pg.index = ((i % n) + n) % n
	} else {
		pg.index = 0
	}
}

// SelectedItem implements the Page interface.
func (pg *MenuPage) SelectedItem() *collection.Item {
	items := pg.items()
	if pg.index < 0 || pg.index >= len(items) {
		return nil
	}
	return items[pg.index]
}

// Scroll implements the Page interface.
func (pg *MenuPage) Scroll(forward bool) {
	if forward {
		pg.SetSelectedIndex(pg.index + 1)
	} else {
		pg.SetSelectedIndex(pg.index - 1)
	}
}

// Enter implements the Page interface.
func (pg *MenuPage) Enter() {
	pg.animLeft = transitionTime
}

// Exit implements the Page interface.
func (pg *MenuPage) Exit() {
	pg.animLeft = transitionTime
}

// Update implements the Page interface.
func (pg *MenuPage) Update(dt float64) {
	if pg.animLeft > 0 {
		pg.animLeft -= dt
	}
}

// IsIdle implements the Page interface.
func (pg *MenuPage) IsIdle() bool {
	return pg.animLeft <= 0
}

// cyclePlaylists returns the playlists eligible for NextPlaylist and
// PrevPlaylist cycling: the configured cyclePlaylist list when set,
// otherwise every playlist of the collection except the sidebars.
func cyclePlaylists(info *collection.Info, configured []string) []string {
	if len(configured) > 0 {
		var names []string
		for _, n := range configured {
			if _, ok := info.Playlist(n); ok {
				names = append(names, n)
			}
		}
		if len(names) > 0 {
			return names
		}
	}

	var names []string
	for _, n := range info.PlaylistNames() {
		if n == "settings" || n == "quicklist" {
			continue
		}
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// splitList splits a comma-separated configuration list.
func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
