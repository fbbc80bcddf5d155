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

package collection

import (
	"path"
	"strings"
)

// PlaylistPath identifies a playlist file relative to the installation
// root.
type PlaylistPath struct {
	Collection string
	Playlist   string
}

// FormatPlaylistPath returns the relative path of a playlist file. Always
// forward-slashed, regardless of host.
func FormatPlaylistPath(collection string, playlist string) string {
	return path.Join("collections", collection, "playlists", playlist+".txt")
}

// ParsePlaylistPath parses a relative path of the form
// collections/<c>/playlists/<p>.txt. Paths that escape the collections
// root, or whose parent directory is not literally "playlists", are
// rejected.
func ParsePlaylistPath(rel string) (PlaylistPath, bool) {
	rel = strings.ReplaceAll(rel, "\\", "/")

	// reject traversal before any interpretation of the path
	for _, part := range strings.Split(rel, "/") {
		if part == ".." {
			return PlaylistPath{}, false
		}
	}

	parts := strings.Split(path.Clean(rel), "/")
	if len(parts) != 4 {
		return PlaylistPath{}, false
	}
	if parts[0] != "collections" || parts[2] != "playlists" {
		return PlaylistPath{}, false
	}
	if parts[1] == "" || parts[1] == "." {
		return PlaylistPath{}, false
	}

	name, ok := strings.CutSuffix(parts[3], ".txt")
	if !ok || name == "" {
		return PlaylistPath{}, false
	}

	return PlaylistPath{Collection: parts[1], Playlist: name}, true
}
