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

package logger_test

import (
	"strings"
	"testing"

	"github.com/retrofe/retrofe/logger"
	"github.com/retrofe/retrofe/test"
)

func TestCentral(t *testing.T) {
	logger.Clear()
	logger.SetFilter(logger.AllowAll())

	b := &strings.Builder{}
	test.Demand(t, !logger.Write(b))
	test.Equate(t, b.String(), "")

	logger.Log(logger.Info, "test", "this is a test")
	test.Demand(t, logger.Write(b))
	test.Equate(t, b.String(), "[INFO] test: this is a test\n")

	// adjacent duplicates fold into a repeat count
	logger.Log(logger.Info, "test", "this is a test")
	b.Reset()
	test.Demand(t, logger.Write(b))
	test.Equate(t, b.String(), "[INFO] test: this is a test (repeat x2)\n")

	// a different level breaks the fold
	logger.Log(logger.Warning, "test", "this is a test")
	b.Reset()
	test.Demand(t, logger.Write(b))
	test.Equate(t, b.String(), "[INFO] test: this is a test (repeat x2)\n[WARNING] test: this is a test\n")

	logger.Clear()
	b.Reset()
	test.Demand(t, !logger.Write(b))
}

func TestTail(t *testing.T) {
	logger.Clear()
	logger.SetFilter(logger.AllowAll())

	logger.Log(logger.Info, "test", "one")
	logger.Log(logger.Info, "test", "two")
	logger.Log(logger.Info, "test", "three")

	b := &strings.Builder{}
	logger.Tail(b, 2)
	test.Equate(t, b.String(), "[INFO] test: two\n[INFO] test: three\n")

	// number larger than entry count is capped
	b.Reset()
	logger.Tail(b, 100)
	test.Equate(t, b.String(), "[INFO] test: one\n[INFO] test: two\n[INFO] test: three\n")
}

func TestParseFilter(t *testing.T) {
	// empty option is the default filter
	f, err := logger.ParseFilter("")
	test.ExpectedSuccess(t, err)
	test.Demand(t, f.Allow(logger.Info, "launcher"))
	test.Demand(t, f.Allow(logger.Error, "launcher"))
	test.Demand(t, !f.Allow(logger.Debug, "launcher"))
	test.Demand(t, !f.Allow(logger.FileCache, "filecache"))

	// levels and tag qualifiers
	f, err = logger.ParseFilter("ERROR, DEBUG:launcher")
	test.ExpectedSuccess(t, err)
	test.Demand(t, f.Allow(logger.Error, "anything"))
	test.Demand(t, f.Allow(logger.Debug, "launcher"))
	test.Demand(t, !f.Allow(logger.Debug, "attract"))
	test.Demand(t, !f.Allow(logger.Info, "launcher"))

	// exclusions take precedence
	f, err = logger.ParseFilter("ALL, -FILECACHE, -DEBUG:attract")
	test.ExpectedSuccess(t, err)
	test.Demand(t, f.Allow(logger.Debug, "launcher"))
	test.Demand(t, !f.Allow(logger.Debug, "attract"))
	test.Demand(t, !f.Allow(logger.FileCache, "filecache"))

	// NONE resets
	f, err = logger.ParseFilter("ALL, NONE, NOTICE")
	test.ExpectedSuccess(t, err)
	test.Demand(t, f.Allow(logger.Notice, "x"))
	test.Demand(t, !f.Allow(logger.Error, "x"))

	// tokens are case-insensitive
	f, err = logger.ParseFilter("info:Music")
	test.ExpectedSuccess(t, err)
	test.Demand(t, f.Allow(logger.Info, "music"))
	test.Demand(t, f.Allow(logger.Info, "MUSIC"))

	// unrecognised token
	_, err = logger.ParseFilter("VERBOSE")
	test.ExpectedFailure(t, err)

	_, err = logger.ParseFilter("-ALL")
	test.ExpectedFailure(t, err)
}
