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

package modalflag_test

import (
	"os"
	"testing"

	"github.com/retrofe/retrofe/modalflag"
	"github.com/retrofe/retrofe/test"
)

func TestNoModesNoFlags(t *testing.T) {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs([]string{})

	p, err := md.Parse()
	test.Demand(t, p == modalflag.ParseContinue)
	test.ExpectedSuccess(t, err)
	test.Equate(t, md.Mode(), "")
	test.Equate(t, md.Path(), "")
}

func TestNoModes(t *testing.T) {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs([]string{"-dry", "one", "two"})
	dry := md.AddBool("dry", false, "report without writing")

	test.Demand(t, !*dry)

	p, err := md.Parse()
	test.Demand(t, p == modalflag.ParseContinue)
	test.ExpectedSuccess(t, err)
	test.Equate(t, md.Mode(), "")

	test.Demand(t, *dry)
	test.Equate(t, len(md.RemainingArgs()), 2)
	test.Equate(t, md.GetArg(0), "one")
}

func TestModeSelection(t *testing.T) {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs([]string{"payload", "-dry"})
	md.AddSubModes("RUN", "PAYLOAD", "VERSION")

	p, err := md.Parse()
	test.Demand(t, p == modalflag.ParseContinue)
	test.ExpectedSuccess(t, err)

	// comparison is case insensitive
	test.Equate(t, md.Mode(), "PAYLOAD")

	// the sub-mode's own flags are parsed in a fresh mode
	md.NewMode()
	dry := md.AddBool("dry", false, "report without writing")
	p, err = md.Parse()
	test.Demand(t, p == modalflag.ParseContinue)
	test.ExpectedSuccess(t, err)
	test.Demand(t, *dry)

	test.Equate(t, md.Path(), "PAYLOAD")
}

func TestDefaultMode(t *testing.T) {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs([]string{})
	md.AddSubModes("RUN", "PAYLOAD", "VERSION")

	p, err := md.Parse()
	test.Demand(t, p == modalflag.ParseContinue)
	test.ExpectedSuccess(t, err)

	// no argument selects the first sub-mode in the list
	test.Equate(t, md.Mode(), "RUN")
}

func TestNoHelpAvailable(t *testing.T) {
	tw := &test.Writer{}

	md := modalflag.Modes{Output: tw}
	md.NewArgs([]string{"-help"})

	p, _ := md.Parse()
	test.Demand(t, p == modalflag.ParseHelp)
	test.Demand(t, tw.Compare("No help available\n"))
}

func TestHelpFlags(t *testing.T) {
	tw := &test.Writer{}

	md := modalflag.Modes{Output: tw}
	md.NewArgs([]string{"-help"})
	md.AddBool("dry", true, "report without writing")

	p, _ := md.Parse()
	test.Demand(t, p == modalflag.ParseHelp)

	expectedHelp := "Usage:\n" +
		"  -dry\n" +
		"    	report without writing (default true)\n"

	test.Demand(t, tw.Compare(expectedHelp))
}

func TestHelpModes(t *testing.T) {
	tw := &test.Writer{}

	md := modalflag.Modes{Output: tw}
	md.NewArgs([]string{"-help"})
	md.AddSubModes("RUN", "PAYLOAD", "VERSION")

	p, _ := md.Parse()
	test.Demand(t, p == modalflag.ParseHelp)

	expectedHelp := "Usage:\n" +
		"  available sub-modes: RUN, PAYLOAD, VERSION\n" +
		"    default: RUN\n"

	test.Demand(t, tw.Compare(expectedHelp))
}

func TestHelpFlagsAndModes(t *testing.T) {
	tw := &test.Writer{}

	md := modalflag.Modes{Output: tw}
	md.NewArgs([]string{"-help"})
	md.AddBool("dry", true, "report without writing")
	md.AddSubModes("RUN", "PAYLOAD", "VERSION")

	p, _ := md.Parse()
	test.Demand(t, p == modalflag.ParseHelp)

	expectedHelp := "Usage:\n" +
		"  -dry\n" +
		"    	report without writing (default true)\n" +
		"\n" +
		"  available sub-modes: RUN, PAYLOAD, VERSION\n" +
		"    default: RUN\n"

	test.Demand(t, tw.Compare(expectedHelp))
}
