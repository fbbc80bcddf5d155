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

package logger

import (
	"fmt"
	"strings"
)

// Filter decides which log entries are recorded. The zero value records
// nothing; use ParseFilter or one of the constructors.
type Filter struct {
	// levels allowed for any tag
	levels map[Level]bool

	// levels allowed only for specific tags. key is "LEVEL:tag"
	tagged map[string]bool

	// explicit exclusions take precedence over inclusions
	excluded       map[Level]bool
	excludedTagged map[string]bool
}

func newFilter() Filter {
	return Filter{
		levels:         make(map[Level]bool),
		tagged:         make(map[string]bool),
		excluded:       make(map[Level]bool),
		excludedTagged: make(map[string]bool),
	}
}

// AllowAll returns a filter that records every entry.
func AllowAll() Filter {
	f := newFilter()
	for lv := Debug; lv <= FileCache; lv++ {
		f.levels[lv] = true
	}
	return f
}

// DefaultFilter returns the filter used when the "log" option is not set.
// Info and above are recorded. Debug and FileCache are not.
func DefaultFilter() Filter {
	f := newFilter()
	f.levels[Info] = true
	f.levels[Notice] = true
	f.levels[Warning] = true
	f.levels[Error] = true
	return f
}

func parseLevel(s string) (Level, bool) {
	switch s {
	case "DEBUG":
		return Debug, true
	case "INFO":
		return Info, true
	case "NOTICE":
		return Notice, true
	case "WARNING":
		return Warning, true
	case "ERROR":
		return Error, true
	case "FILECACHE":
		return FileCache, true
	}
	return Debug, false
}

// ParseFilter builds a Filter from the value of the "log" configuration
// option. The value is a comma-separated list of tokens:
//
//	DEBUG INFO NOTICE WARNING ERROR FILECACHE
//
// A token may carry a component qualifier, eg. "DEBUG:launcher", limiting
// that level to one component tag. A "-" prefix excludes rather than
// includes. The shorthands ALL and NONE include or exclude everything and
// replace any tokens processed so far. Tokens are case-insensitive.
//
// An unrecognised token is an error and the filter returned alongside the
// error is the default filter.
func ParseFilter(option string) (Filter, error) {
	option = strings.TrimSpace(option)
	if option == "" {
		return DefaultFilter(), nil
	}

	f := newFilter()

	for _, tok := range strings.Split(option, ",") {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}

		exclude := false
		if strings.HasPrefix(tok, "-") {
			exclude = true
			tok = tok[1:]
		}

		switch tok {
		case "ALL":
			if exclude {
				return DefaultFilter(), fmt.Errorf("log filter: cannot exclude ALL (use NONE)")
			}
			f = AllowAll()
			continue
		case "NONE":
			if exclude {
				return DefaultFilter(), fmt.Errorf("log filter: cannot exclude NONE")
			}
			f = newFilter()
			continue
		}

		var tag string
		if i := strings.Index(tok, ":"); i >= 0 {
			tag = strings.ToLower(tok[i+1:])
			tok = tok[:i]
		}

		lv, ok := parseLevel(tok)
		if !ok {
			return DefaultFilter(), fmt.Errorf("log filter: unrecognised token: %s", tok)
		}

		switch {
		case exclude && tag == "":
			f.excluded[lv] = true
		case exclude:
			f.excludedTagged[fmt.Sprintf("%s:%s", lv, tag)] = true
		case tag == "":
			f.levels[lv] = true
		default:
			f.tagged[fmt.Sprintf("%s:%s", lv, tag)] = true
		}
	}

	return f, nil
}

// Allow returns true if an entry at the level with the tag should be
// recorded.
func (f Filter) Allow(lv Level, tag string) bool {
	tag = strings.ToLower(tag)
	key := fmt.Sprintf("%s:%s", lv, tag)

	if f.excluded[lv] || f.excludedTagged[key] {
		return false
	}
	return f.levels[lv] || f.tagged[key]
}
