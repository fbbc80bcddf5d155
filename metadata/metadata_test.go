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

package metadata_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/retrofe/retrofe/metadata"
	"github.com/retrofe/retrofe/test"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.dat")

	s, err := metadata.NewStore(path)
	test.ExpectedSuccess(t, err)

	when := time.Unix(1700000000, 0)
	s.AddPlay("arcade", "pacman", 90*time.Second, when)
	s.AddPlay("arcade", "pacman", 30*time.Second, when.Add(time.Hour))
	s.AddPlay("consoles", "sonic", 10*time.Second, when)

	r := s.Get("arcade", "pacman")
	test.Equate(t, r.PlayCount, 2)
	test.Equate(t, int64(r.TimeSpent/time.Second), int64(120))
	test.Demand(t, r.LastPlayed.Equal(when.Add(time.Hour)))

	test.ExpectedSuccess(t, s.Save())

	// reload and compare
	s2, err := metadata.NewStore(path)
	test.ExpectedSuccess(t, err)

	r = s2.Get("arcade", "pacman")
	test.Equate(t, r.PlayCount, 2)
	test.Equate(t, int64(r.TimeSpent/time.Second), int64(120))
	test.Demand(t, r.LastPlayed.Equal(when.Add(time.Hour)))

	r = s2.Get("consoles", "sonic")
	test.Equate(t, r.PlayCount, 1)
}

func TestNeverPlayed(t *testing.T) {
	s, err := metadata.NewStore(filepath.Join(t.TempDir(), "stats.dat"))
	test.ExpectedSuccess(t, err)

	r := s.Get("arcade", "never")
	test.Equate(t, r.PlayCount, 0)
	test.Demand(t, r.LastPlayed.IsZero())
}
