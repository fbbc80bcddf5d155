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

// Package logger is the central log for the RetroFE process. Entries are
// tagged with the component that logged them and are kept in memory so the
// recent history can be dumped on demand. Adjacent duplicate entries fold
// into a repeat count.
//
// Which entries are recorded is decided by the filter built from the "log"
// configuration option. See ParseFilter for the option's format.
package logger

import (
	"fmt"
	"io"
)

// the maximum number of entries in the central logger.
const maxCentral = 256

// the central log for the running process.
var central *logger

func init() {
	central = newLogger(maxCentral)
}

// Log adds an entry at the specified level to the central logger.
func Log(lv Level, tag, detail string) {
	central.log(lv, tag, detail)
}

// Logf adds a formatted entry at the specified level to the central logger.
func Logf(lv Level, tag, detail string, args ...interface{}) {
	central.log(lv, tag, fmt.Sprintf(detail, args...))
}

// Clear all entries from central logger.
func Clear() {
	central.clear()
}

// SetFilter changes the filter that decides which entries the central
// logger records. Entries already recorded are unaffected.
func SetFilter(f Filter) {
	central.setFilter(f)
}

// Write contents of central logger to io.Writer. Returns true if anything
// was written.
func Write(output io.Writer) bool {
	return central.write(output)
}

// Tail writes the last N entries in the central logger to io.Writer.
func Tail(output io.Writer, number int) {
	central.tail(output, number)
}

// SetEcho prints entries to io.Writer as they are added. If writeRecent is
// true then the most recent entries will be written out immediately.
func SetEcho(output io.Writer, writeRecent bool) {
	central.setEcho(output, writeRecent)
}
