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

package restrictor

import (
	"testing"

	"github.com/retrofe/retrofe/test"
)

type fakeRestrictor struct {
	way    int
	called int
}

func (f *fakeRestrictor) Name() string { return "fake" }
func (f *fakeRestrictor) SetWay(way int) error {
	f.way = way
	f.called++
	return nil
}
func (f *fakeRestrictor) Way() int     { return f.way }
func (f *fakeRestrictor) Close() error { return nil }

func TestGuard(t *testing.T) {
	m := NewManager()
	fake := &fakeRestrictor{way: 8}
	m.publish(fake)

	g := m.NewGuard(true)
	test.Equate(t, fake.way, 4)

	g.Release()
	test.Equate(t, fake.way, 8)

	// double release is harmless
	g.Release()
	test.Equate(t, fake.called, 2)
}

func TestGuardNonFourWay(t *testing.T) {
	m := NewManager()
	fake := &fakeRestrictor{way: 8}
	m.publish(fake)

	// an 8-way game never touches the hardware
	g := m.NewGuard(false)
	test.Equate(t, fake.called, 0)
	g.Release()
	test.Equate(t, fake.called, 0)
}

func TestGuardNoHardware(t *testing.T) {
	m := NewManager()

	_, ok := m.Get()
	test.Demand(t, !ok)

	// no restrictor published. the guard is a no-op
	g := m.NewGuard(true)
	g.Release()
}
