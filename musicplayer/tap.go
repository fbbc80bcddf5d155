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
	"encoding/binary"
	"io"
	"sync"

	"github.com/go-audio/audio"
)

// number of recent frames held for the visualiser.
const tapFrames = 2048

// Tap sits between the decoder and the output device and keeps a copy
// of the most recent samples for the vu-meter and visualiser layers.
// Read is called from the audio device goroutine; Buffer and Peaks from
// the render loop.
type Tap struct {
	src io.Reader

	crit  sync.Mutex
	ring  []int16 // interleaved stereo
	head  int
	fill  int
	peakL int16
	peakR int16
}

func newTap(src io.Reader) *Tap {
	return &Tap{
		src:  src,
		ring: make([]int16, tapFrames*outChannels),
	}
}

// Read implements the io.Reader interface.
func (t *Tap) Read(p []byte) (int, error) {
	n, err := t.src.Read(p)
	if n > 0 {
		t.absorb(p[:n])
	}
	return n, err
}

func (t *Tap) absorb(p []byte) {
	t.crit.Lock()
	defer t.crit.Unlock()

	for i := 0; i+3 < len(p); i += 4 {
		l := int16(binary.LittleEndian.Uint16(p[i:]))
		r := int16(binary.LittleEndian.Uint16(p[i+2:]))

		t.ring[t.head] = l
		t.ring[t.head+1] = r
		t.head = (t.head + 2) % len(t.ring)
		if t.fill < len(t.ring) {
			t.fill += 2
		}

		if a := abs16(l); a > t.peakL {
			t.peakL = a
		}
		if a := abs16(r); a > t.peakR {
			t.peakR = a
		}
	}
}

// Buffer returns a copy of the most recent samples as an interleaved
// stereo buffer in playback order.
func (t *Tap) Buffer() *audio.IntBuffer {
	t.crit.Lock()
	defer t.crit.Unlock()

	data := make([]int, t.fill)
	start := (t.head - t.fill + len(t.ring)) % len(t.ring)
	for i := 0; i < t.fill; i++ {
		data[i] = int(t.ring[(start+i)%len(t.ring)])
	}

	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: outChannels,
			SampleRate:  outSampleRate,
		},
		SourceBitDepth: 16,
		Data:           data,
	}
}

// Peaks returns the per-channel peak level since the last call,
// normalised to 0..1, and resets the accumulator.
func (t *Tap) Peaks() (left float64, right float64) {
	t.crit.Lock()
	defer t.crit.Unlock()

	left = float64(t.peakL) / 32767.0
	right = float64(t.peakR) / 32767.0
	t.peakL = 0
	t.peakR = 0
	return left, right
}

func abs16(v int16) int16 {
	if v < 0 {
		if v == -32768 {
			return 32767
		}
		return -v
	}
	return v
}
