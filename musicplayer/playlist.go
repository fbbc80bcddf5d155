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

package musicplayer

import (
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/retrofe/retrofe/curated"
)

// Track is one entry in the player's list. Tag fields are filled in
// lazily, after the track has been loaded at least once.
type Track struct {
	Path string
	Name string

	// from the file's embedded tags, when present
	Title  string
	Artist string
	Album  string
}

// DisplayName returns the tag title when one has been read, the
// filename otherwise.
func (trk Track) DisplayName() string {
	if trk.Title != "" {
		return trk.Title
	}
	return trk.Name
}

// file extensions the decoder understands.
func isSupportedAudioFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3", ".wav":
		return true
	}
	return false
}

// tracksFromFolder enumerates the supported audio files in a folder,
// sorted lexicographically.
func tracksFromFolder(folder string) ([]Track, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, curated.Errorf("musicplayer: %v", err)
	}

	var tracks []Track
	for _, e := range entries {
		if e.IsDir() || !isSupportedAudioFile(e.Name()) {
			continue
		}
		tracks = append(tracks, Track{
			Path: filepath.Join(folder, e.Name()),
			Name: strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
		})
	}

	sort.Slice(tracks, func(i, j int) bool {
		return strings.ToLower(tracks[i].Name) < strings.ToLower(tracks[j].Name)
	})

	return tracks, nil
}

// tracksFromM3U parses a .m3u playlist. Comment and directive lines
// begin with '#'. Relative paths are resolved against the playlist's
// own directory. Entries are kept in file order.
func tracksFromM3U(path string) ([]Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, curated.Errorf("musicplayer: %v", err)
	}

	base := filepath.Dir(path)

	var tracks []Track
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		if !isSupportedAudioFile(line) {
			continue
		}
		name := filepath.Base(line)
		tracks = append(tracks, Track{
			Path: line,
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
		})
	}

	return tracks, nil
}

// shuffleOrder returns a random permutation of [0, n).
func shuffleOrder(n int, rng *rand.Rand) []int {
	order := identityOrder(n)
	rng.Shuffle(n, func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// orderIndex returns the position of track in order. The permutation is
// total so the track is always found; -1 indicates a corrupt order and
// is treated as position zero by the caller.
func orderIndex(order []int, track int) int {
	for i, t := range order {
		if t == track {
			return i
		}
	}
	return -1
}
