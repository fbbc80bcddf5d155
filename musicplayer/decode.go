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
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"

	"github.com/retrofe/retrofe/curated"
)

// every decoded stream is normalised to this format before it reaches
// the output device.
const (
	outSampleRate = 44100
	outChannels   = 2
	bytesPerFrame = outChannels * 2 // s16le
)

// stream is a decoded track: signed 16-bit little-endian stereo at
// outSampleRate, read until io.EOF.
type stream struct {
	io.Reader
	closer io.Closer
}

func (s *stream) Close() error {
	return s.closer.Close()
}

// openStream decodes path into the output format. The caller owns the
// returned stream and must Close it.
func openStream(path string) (*stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, curated.Errorf("musicplayer: %v", err)
	}

	var r io.Reader
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		dec, err := mp3.NewDecoder(f)
		if err != nil {
			f.Close()
			return nil, curated.Errorf("musicplayer: %s: %v", filepath.Base(path), err)
		}
		// go-mp3 always produces s16le stereo at the source rate
		r = resampleS16(dec, dec.SampleRate())

	case ".wav":
		dec := wav.NewDecoder(f)
		dec.ReadInfo()
		if !dec.IsValidFile() {
			f.Close()
			return nil, curated.Errorf("musicplayer: %s: not a valid wav file", filepath.Base(path))
		}
		w := &wavStream{
			dec: dec,
			buf: &audio.IntBuffer{
				Format: dec.Format(),
				Data:   make([]int, 2048),
			},
			depth: int(dec.BitDepth),
			chans: int(dec.NumChans),
		}
		r = resampleS16(w, int(dec.SampleRate))

	default:
		f.Close()
		return nil, curated.Errorf("musicplayer: %s: unsupported format", filepath.Base(path))
	}

	return &stream{Reader: r, closer: f}, nil
}

// wavStream converts a wav decoder's integer PCM chunks to s16le
// stereo at the file's native rate.
type wavStream struct {
	dec     *wav.Decoder
	buf     *audio.IntBuffer
	depth   int
	chans   int
	pending []byte
}

func (w *wavStream) Read(p []byte) (int, error) {
	for len(w.pending) == 0 {
		n, err := w.dec.PCMBuffer(w.buf)
		if n == 0 {
			if err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		w.convert(w.buf.Data[:n])
	}

	n := copy(p, w.pending)
	w.pending = w.pending[n:]
	return n, nil
}

func (w *wavStream) convert(data []int) {
	frame := make([]byte, 0, len(data)*4)

	for i := 0; i < len(data); i += w.chans {
		l := sampleToS16(data[i], w.depth)
		r := l
		if w.chans > 1 {
			r = sampleToS16(data[i+1], w.depth)
		}
		frame = binary.LittleEndian.AppendUint16(frame, uint16(l))
		frame = binary.LittleEndian.AppendUint16(frame, uint16(r))
	}

	w.pending = frame
}

func sampleToS16(v int, depth int) int16 {
	switch depth {
	case 8:
		// wav 8-bit samples are unsigned
		return int16((v - 128) << 8)
	case 16:
		return int16(v)
	case 24:
		return int16(v >> 8)
	case 32:
		return int16(v >> 16)
	}
	return int16(v)
}

// resampleS16 converts an s16le stereo reader from its native rate to
// outSampleRate by linear interpolation. A source already at the output
// rate is passed through untouched.
func resampleS16(src io.Reader, rate int) io.Reader {
	if rate == outSampleRate || rate <= 0 {
		return src
	}
	return &resampler{
		src:  src,
		step: float64(rate) / float64(outSampleRate),
	}
}

type resampler struct {
	src  io.Reader
	step float64
	pos  float64

	// source frames buffered for interpolation. prev holds the last
	// frame of the previous buffer so interpolation can straddle reads.
	frames  [][2]int16
	prev    [2]int16
	hasPrev bool
	eof     bool
}

func (rs *resampler) fill() error {
	buf := make([]byte, 4096*bytesPerFrame)
	n, err := io.ReadFull(rs.src, buf)
	n -= n % bytesPerFrame

	rs.frames = rs.frames[:0]
	for i := 0; i < n; i += bytesPerFrame {
		rs.frames = append(rs.frames, [2]int16{
			int16(binary.LittleEndian.Uint16(buf[i:])),
			int16(binary.LittleEndian.Uint16(buf[i+2:])),
		})
	}

	if err == io.EOF || err == io.ErrUnexpectedEOF {
		rs.eof = true
		return nil
	}
	return err
}

func (rs *resampler) Read(p []byte) (int, error) {
	written := 0

	for written+bytesPerFrame <= len(p) {
		idx := int(rs.pos)

		for idx >= len(rs.frames) {
			if rs.eof {
				if written == 0 {
					return 0, io.EOF
				}
				return written, nil
			}
			if len(rs.frames) > 0 {
				rs.prev = rs.frames[len(rs.frames)-1]
				rs.hasPrev = true
			}
			rs.pos -= float64(len(rs.frames))
			idx = int(rs.pos)
			if err := rs.fill(); err != nil {
				return written, err
			}
		}

		frac := rs.pos - float64(idx)
		cur := rs.frames[idx]

		var last [2]int16
		switch {
		case idx > 0:
			last = rs.frames[idx-1]
		case rs.hasPrev:
			last = rs.prev
		default:
			last = cur
		}

		for ch := 0; ch < 2; ch++ {
			v := float64(last[ch]) + (float64(cur[ch])-float64(last[ch]))*frac
			binary.LittleEndian.PutUint16(p[written+ch*2:], uint16(int16(v)))
		}
		written += bytesPerFrame
		rs.pos += rs.step
	}

	if written == 0 && len(p) > 0 {
		return 0, io.ErrShortBuffer
	}
	return written, nil
}
