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
	"testing"

	"github.com/retrofe/retrofe/config"
	"github.com/retrofe/retrofe/test"
)

func TestFolderIngestion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zebra.mp3", "Alpha.wav", "notes.txt", "beta.MP3"} {
		test.ExpectedSuccess(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	tracks, err := tracksFromFolder(dir)
	test.ExpectedSuccess(t, err)
	test.Equate(t, len(tracks), 3)

	// lexicographic, case folded; the text file is skipped
	test.Equate(t, tracks[0].Name, "Alpha")
	test.Equate(t, tracks[1].Name, "beta")
	test.Equate(t, tracks[2].Name, "zebra")
}

func TestM3UIngestion(t *testing.T) {
	dir := t.TempDir()
	m3u := filepath.Join(dir, "jukebox.m3u")

	abs := filepath.Join(dir, "elsewhere", "b.wav")
	content := "#EXTM3U\n#EXTINF:123,Some Track\na.mp3\r\n\n" + abs + "\ncover.jpg\n"
	test.ExpectedSuccess(t, os.WriteFile(m3u, []byte(content), 0644))

	tracks, err := tracksFromM3U(m3u)
	test.ExpectedSuccess(t, err)
	test.Equate(t, len(tracks), 2)

	// file order preserved; relative entries resolve against the m3u
	test.Equate(t, tracks[0].Path, filepath.Join(dir, "a.mp3"))
	test.Equate(t, tracks[1].Path, abs)
}

func TestShuffleOrderIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	order := shuffleOrder(20, rng)
	test.Equate(t, len(order), 20)

	seen := make(map[int]bool)
	for _, v := range order {
		test.Demand(t, v >= 0 && v < 20)
		test.Demand(t, !seen[v])
		seen[v] = true
	}
}

func TestShuffleContinuity(t *testing.T) {
	p := NewPlayer(config.NewConfiguration())
	p.rng = rand.New(rand.NewSource(7))

	p.tracks = make([]Track, 10)
	p.order = identityOrder(10)
	p.cursor = 4

	p.SetShuffle(true)

	// the playing track keeps its place in the new order
	test.Equate(t, p.order[p.cursor], 4)

	p.SetShuffle(false)
	test.Equate(t, p.cursor, 4)
	test.Equate(t, p.order[p.cursor], 4)
}

func TestFadeRamp(t *testing.T) {
	p := NewPlayer(config.NewConfiguration())
	p.SetVolume(80)

	p.FadeToVolume(20)
	for i := 0; i < 30; i++ {
		p.Update(0.05)
	}
	test.Equate(t, p.Volume(), 20)

	p.FadeBackToPreviousVolume()
	for i := 0; i < 30; i++ {
		p.Update(0.05)
	}
	test.Equate(t, p.Volume(), 80)
}

func TestVolumeClamp(t *testing.T) {
	p := NewPlayer(config.NewConfiguration())

	p.SetVolume(150)
	test.Equate(t, p.Volume(), 100)

	p.SetVolume(-10)
	test.Equate(t, p.Volume(), 0)

	p.StepVolume(1)
	test.Equate(t, p.Volume(), 5)
}

func TestSampleWidthConversion(t *testing.T) {
	test.Equate(t, int(sampleToS16(255, 8)), 127<<8)
	test.Equate(t, int(sampleToS16(0, 8)), -(128 << 8))
	test.Equate(t, int(sampleToS16(-12345, 16)), -12345)
	test.Equate(t, int(sampleToS16(8388607, 24)), 32767)
	test.Equate(t, int(sampleToS16(-2147483648, 32)), -32768)
}
