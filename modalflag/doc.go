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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It provides a convenient method of handling program modes (and
// sub-modes) and allows different flags for each mode.
//
// Whereas with flag.FlagSet you call Parse() with the array of strings as the
// only argument, with modalflag you first NewArgs() with the array of
// arguments and then Parse() with no arguments:
//
//	md = Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	_, _ = md.Parse()
//
// The reason for this difference is to allow effective parsing of modes and
// sub-modes. A mode is a special command line argument that, when specified,
// puts the program into a different mode of operation, in the manner of the
// go command (build, doc, get, test, etc.). Sub-modes are declared with the
// AddSubModes() function before parsing, with the first in the list acting as
// the default:
//
//	md.AddSubModes("run", "payload", "version")
//
// Sub-mode comparisons are case insensitive. After the call to Parse() the
// selected mode is available through the Mode() function:
//
//	switch md.Mode() {
//	case "RUN":
//		runMode(md)
//	case "PAYLOAD":
//		payloadMode(md)
//	}
//
// Flags are added in the manner of the flag package. Each mode starts a fresh
// flag set with the NewMode() function, so each mode can carry its own flags:
//
//	func payloadMode(md *Modes) {
//		md.NewMode()
//		dry := md.AddBool("dry", false, "report without writing")
//		p, err := md.Parse()
//		switch p {
//		case ParseError:
//			fmt.Println(err)
//			return
//		case ParseHelp:
//			return
//		}
//		doPayload(*dry)
//	}
//
// Non-flag arguments that remain after the flags and the mode selector are
// available through the RemainingArgs() and GetArg() functions. Modes can be
// chained as deep as required; the Path() function returns every mode
// encountered, separated by slashes.
package modalflag
