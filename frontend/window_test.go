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

package frontend

import (
	"strconv"
	"testing"

	"github.com/retrofe/retrofe/config"
	"github.com/retrofe/retrofe/test"
	"github.com/retrofe/retrofe/userinput"
)

func TestScreenGeometrySuffixes(t *testing.T) {
	cfg := config.NewConfiguration()
	cfg.SetProperty("horizontal", "640")
	cfg.SetProperty("vertical", "480")
	for i := 1; i <= 11; i++ {
		cfg.SetProperty("horizontal"+strconv.Itoa(i), strconv.Itoa(1000+i))
		cfg.SetProperty("vertical"+strconv.Itoa(i), "480")
		cfg.SetProperty("rotation"+strconv.Itoa(i), "90")
	}

	w := NewWindow(cfg, userinput.NewMapper())
	test.Equate(t, len(w.screens), 12)

	// double-digit suffixes read past the tenth display
	test.Equate(t, w.screens[10].width, 1010)
	test.Equate(t, w.screens[11].width, 1011)
	test.Equate(t, w.screens[11].rotation, 90)
}
