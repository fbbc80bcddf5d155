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

// Package restrictor drives the joystick-gate hardware that switches a
// stick between 4-way and 8-way modes. Supported devices are the TOSGRS
// serial restrictor and the Ultimarc ServoStik. The probe runs once at
// startup on a worker; the detected device is published through an
// atomic handle that the launcher reads without locking.
package restrictor

import (
	"sync/atomic"

	"github.com/retrofe/retrofe/logger"
	"github.com/retrofe/retrofe/workers"
)

// Restrictor is the shared surface of the supported gate hardware.
type Restrictor interface {
	// Name of the device, for logging.
	Name() string

	// SetWay switches the gate. Supported ways are 4 and 8.
	SetWay(way int) error

	// Way returns the gate mode last set.
	Way() int

	// Close releases the device.
	Close() error
}

// Manager owns the process-wide restrictor handle.
type Manager struct {
	handle atomic.Value // Restrictor
}

// NewManager is the preferred method of initialisation for the Manager
// type.
func NewManager() *Manager {
	return &Manager{}
}

// probe order: serial first, then USB HID.
var probes = []func() (Restrictor, error){
	probeTOSGRS,
	probeServoStik,
}

// Probe tries each supported device in order and publishes the first
// that initialises. Returns false when no device was found.
func (m *Manager) Probe() bool {
	for _, p := range probes {
		r, err := p()
		if err != nil {
			logger.Logf(logger.Debug, "restrictor", "%v", err)
			continue
		}
		if r == nil {
			continue
		}
		logger.Logf(logger.Notice, "restrictor", "detected %s", r.Name())
		m.handle.Store(r)
		return true
	}
	logger.Log(logger.Info, "restrictor", "no restrictor hardware detected")
	return false
}

// ProbeAsync runs Probe on the worker pool, or on a detached goroutine
// when no pool is supplied. The handle is published only when the probe
// resolves; Get returns nothing until then.
func (m *Manager) ProbeAsync(pool *workers.Pool) {
	task := func() { m.Probe() }
	if pool == nil || !pool.Submit(task) {
		go task()
	}
}

// Get returns the published restrictor, if any. Lock-free; safe from any
// goroutine.
func (m *Manager) Get() (Restrictor, bool) {
	r, ok := m.handle.Load().(Restrictor)
	return r, ok
}

// publish is used by tests to install a fake device.
func (m *Manager) publish(r Restrictor) {
	m.handle.Store(r)
}

// Guard switches the restrictor to 4-way for the duration of a game that
// needs it. Release restores 8-way. A guard taken when no restrictor is
// published, or for a game that is not 4-way, is a no-op.
type Guard struct {
	r      Restrictor
	active bool
}

// NewGuard engages the restrictor for a launch. fourWay comes from the
// item's control type.
func (m *Manager) NewGuard(fourWay bool) *Guard {
	g := &Guard{}
	if !fourWay {
		return g
	}

	r, ok := m.Get()
	if !ok {
		return g
	}

	if err := r.SetWay(4); err != nil {
		logger.Logf(logger.Warning, "restrictor", "%v", err)
		return g
	}
	g.r = r
	g.active = true
	return g
}

// Release restores the 8-way gate. Safe to call more than once.
func (g *Guard) Release() {
	if !g.active {
		return
	}
	g.active = false
	if err := g.r.SetWay(8); err != nil {
		logger.Logf(logger.Warning, "restrictor", "%v", err)
	}
}
