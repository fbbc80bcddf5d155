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

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// joystick axes fire once the value crosses this magnitude.
const axisThreshold = 16384

// Decoder turns SDL events into the key names the Mapper binds against.
// Keyboard keys use their SDL name ("Return", "Left Ctrl"). Joystick
// inputs use synthetic names: "joyButton3", "joyHatUp", "joyAxis0+".
//
// The decoder keeps per-axis state so an axis held past the threshold
// produces a single down-edge.
type Decoder struct {
	axisHeld map[string]bool
}

// NewDecoder is the preferred method of initialisation for the Decoder
// type.
func NewDecoder() *Decoder {
	return &Decoder{
		axisHeld: make(map[string]bool),
	}
}

// DownEdge returns the key name of an event's down-edge. The second
// return value is false for events that are not down-edges (key-up,
// key-repeat, axis return to centre, unrelated event types).
func (dec *Decoder) DownEdge(ev sdl.Event) (string, bool) {
	switch ev := ev.(type) {
	case *sdl.KeyboardEvent:
		if ev.Type != sdl.KEYDOWN || ev.Repeat != 0 {
			return "", false
		}
		return sdl.GetKeyName(ev.Keysym.Sym), true

	case *sdl.JoyButtonEvent:
		if ev.Type != sdl.JOYBUTTONDOWN {
			return "", false
		}
		return fmt.Sprintf("joyButton%d", ev.Button), true

	case *sdl.JoyHatEvent:
		switch ev.Value {
		case sdl.HAT_UP:
			return "joyHatUp", true
		case sdl.HAT_DOWN:
			return "joyHatDown", true
		case sdl.HAT_LEFT:
			return "joyHatLeft", true
		case sdl.HAT_RIGHT:
			return "joyHatRight", true
		}
		return "", false

	case *sdl.JoyAxisEvent:
		pos := fmt.Sprintf("joyAxis%d+", ev.Axis)
		neg := fmt.Sprintf("joyAxis%d-", ev.Axis)

		switch {
		case ev.Value > axisThreshold:
			dec.axisHeld[neg] = false
			if dec.axisHeld[pos] {
				return "", false
			}
			dec.axisHeld[pos] = true
			return pos, true
		case ev.Value < -axisThreshold:
			dec.axisHeld[pos] = false
			if dec.axisHeld[neg] {
				return "", false
			}
			dec.axisHeld[neg] = true
			return neg, true
		default:
			dec.axisHeld[pos] = false
			dec.axisHeld[neg] = false
			return "", false
		}
	}

	return "", false
}
