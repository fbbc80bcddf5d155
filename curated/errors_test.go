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

package curated_test

import (
	"errors"
	"testing"

	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/test"
)

func TestNormalisation(t *testing.T) {
	inner := curated.Errorf("launcher: no such executable")
	outer := curated.Errorf("launcher: %v", inner)

	// the duplicate adjacent part is removed
	test.Equate(t, outer.Error(), "launcher: no such executable")

	wrapped := curated.Errorf("frontend: %v", outer)
	test.Equate(t, wrapped.Error(), "frontend: launcher: no such executable")
}

func TestIsHas(t *testing.T) {
	e := curated.Errorf("attract: %v", "bad value")
	f := curated.Errorf("frontend: %v", e)

	test.Demand(t, curated.IsAny(e))
	test.Demand(t, !curated.IsAny(errors.New("plain")))
	test.Demand(t, !curated.IsAny(nil))

	test.Demand(t, curated.Is(e, "attract: %v"))
	test.Demand(t, !curated.Is(f, "attract: %v"))
	test.Demand(t, curated.Has(f, "attract: %v"))
	test.Demand(t, curated.Has(f, "frontend: %v"))
	test.Demand(t, !curated.Has(f, "launcher: %v"))
}
