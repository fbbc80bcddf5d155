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

// Package userinput normalises keyboard and joystick events into the
// closed set of user actions. Bindings come from controls.conf. Two-key
// combos fire when both halves are pressed within the combo window.
package userinput

import (
	"strings"
	"time"

	"github.com/retrofe/retrofe/config"
	"github.com/retrofe/retrofe/logger"
)

// the window inside which both halves of a combo must be pressed.
const ComboWindow = 200 * time.Millisecond

// the default key-repeat debounce for non-navigation actions.
const DefaultKeyDelay = 300 * time.Millisecond

// Mapper turns key names into actions.
type Mapper struct {
	// lower-cased key name -> bound actions. one key may be bound to a
	// single action and to a combo half at the same time
	bindings map[string][]Action

	// timestamp of the most recent down-edge per combo half
	comboDown map[Action]time.Time

	// the first action seen since the last ResetFirstInput. used by the
	// launcher to decide whether an attract run counts as a real play
	firstInput         Action
	firstInputReceived bool
}

// NewMapper is the preferred method of initialisation for the Mapper
// type.
func NewMapper() *Mapper {
	return &Mapper{
		bindings:  make(map[string][]Action),
		comboDown: make(map[Action]time.Time),
	}
}

// Bind attaches a key name to an action. Key names are case-insensitive.
func (m *Mapper) Bind(key string, action Action) {
	key = strings.ToLower(key)
	m.bindings[key] = append(m.bindings[key], action)
}

// LoadBindings reads the bindings from the imported controls.conf
// properties (keys under "controls."). A binding value is a
// comma-separated list of key names.
func (m *Mapper) LoadBindings(cfg *config.Configuration) {
	for name, action := range actionNames {
		v, ok := cfg.GetString("controls." + name)
		if !ok {
			continue
		}
		for _, key := range strings.Split(v, ",") {
			key = strings.TrimSpace(key)
			if key != "" {
				m.Bind(key, action)
			}
		}
	}
	logger.Logf(logger.Info, "userinput", "%d keys bound", len(m.bindings))
}

// KeyDown processes the down-edge of a key at the given time, returning
// the actions that fire. Single actions fire immediately. A combo half
// records its timestamp and fires the combined action when the other
// half was seen inside the combo window.
func (m *Mapper) KeyDown(key string, now time.Time) []Action {
	fired := make([]Action, 0, 2)

	for _, action := range m.bindings[strings.ToLower(key)] {
		if !m.firstInputReceived {
			m.firstInput = action
			m.firstInputReceived = true
		}

		if !action.IsComboHalf() {
			fired = append(fired, action)
			continue
		}

		m.comboDown[action] = now
		for _, combo := range combos {
			if action != combo.first && action != combo.second {
				continue
			}
			other := combo.first
			if action == combo.first {
				other = combo.second
			}
			if t, ok := m.comboDown[other]; ok && now.Sub(t) <= ComboWindow {
				fired = append(fired, combo.fires)
				delete(m.comboDown, combo.first)
				delete(m.comboDown, combo.second)
			}
		}
	}

	return fired
}

// ResetFirstInput clears the first-input latch and any pending combo
// halves. Called when the launcher hands control back to the frontend.
func (m *Mapper) ResetFirstInput() {
	m.firstInput = NoAction
	m.firstInputReceived = false
	m.comboDown = make(map[Action]time.Time)
}

// FirstInput returns the first action seen since the last reset.
func (m *Mapper) FirstInput() (Action, bool) {
	return m.firstInput, m.firstInputReceived
}

// Debouncer gates repeated actions. Navigation is exempt at the caller's
// discretion; everything else is dropped when repeated faster than the
// delay.
type Debouncer struct {
	last map[Action]time.Time
}

// NewDebouncer is the preferred method of initialisation for the
// Debouncer type.
func NewDebouncer() *Debouncer {
	return &Debouncer{
		last: make(map[Action]time.Time),
	}
}

// Allow returns true if the action may fire now, recording the time when
// it does.
func (d *Debouncer) Allow(action Action, now time.Time, delay time.Duration) bool {
	if t, ok := d.last[action]; ok && now.Sub(t) < delay {
		return false
	}
	d.last[action] = now
	return true
}

// Reset forgets all recorded action times. Called after a launch so the
// first press on return is never swallowed.
func (d *Debouncer) Reset() {
	d.last = make(map[Action]time.Time)
}
