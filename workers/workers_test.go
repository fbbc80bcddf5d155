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

package workers_test

import (
	"sync/atomic"
	"testing"

	"github.com/retrofe/retrofe/test"
	"github.com/retrofe/retrofe/workers"
)

func TestPoolSizeBounds(t *testing.T) {
	t.Setenv("RETROFE_WORKERS", "1")
	test.Equate(t, workers.PoolSize(), 2)

	t.Setenv("RETROFE_WORKERS", "32")
	test.Equate(t, workers.PoolSize(), 6)

	t.Setenv("RETROFE_WORKERS", "4")
	test.Equate(t, workers.PoolSize(), 4)

	// nonsense value falls back to hardware sizing, still clamped
	t.Setenv("RETROFE_WORKERS", "what")
	n := workers.PoolSize()
	test.Demand(t, n >= 2 && n <= 6)
}

func TestShutdownDrainsQueue(t *testing.T) {
	p := workers.NewPool(2)

	var done atomic.Int32
	for i := 0; i < 50; i++ {
		ok := p.Submit(func() {
			done.Add(1)
		})
		test.Demand(t, ok)
	}

	p.Shutdown()
	test.Equate(t, int(done.Load()), 50)

	// no submissions after shutdown
	test.ExpectedFailure(t, p.Submit(func() {}))

	// a second shutdown is harmless
	p.Shutdown()
}
