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

package hiscores

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// columns of a formatted global table.
var globalColumns = []string{"Player", "Score", "Date"}

// numericValue strips score decoration before a numeric comparison.
func numericValue(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", ""))
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// scoreLess is the numeric-preferred comparator. Values that both parse
// as numbers compare numerically, anything else falls back to string
// comparison.
func scoreLess(a string, b string) bool {
	fa, okA := numericValue(a)
	fb, okB := numericValue(b)
	if okA && okB {
		return fa < fb
	}
	if okA != okB {
		// numbers sort before non-numbers
		return okA
	}
	return a < b
}

// thousands inserts separators into the integer part of a numeric string.
func thousands(s string) string {
	f, ok := numericValue(s)
	if !ok {
		return s
	}
	n := int64(f)
	neg := n < 0
	if neg {
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// formatScore renders a raw score value per the sort descriptor. Time
// values are milliseconds rendered mm:ss:mss, money values get a dollar
// sign and separators, everything else numeric gets separators only.
func formatScore(raw string, descriptor string) string {
	switch {
	case strings.HasPrefix(descriptor, "time"):
		f, ok := numericValue(raw)
		if !ok {
			return raw
		}
		ms := int64(f)
		return fmt.Sprintf("%02d:%02d:%03d", ms/60000, (ms/1000)%60, ms%1000)

	case strings.HasPrefix(descriptor, "money"):
		if _, ok := numericValue(raw); !ok {
			return raw
		}
		return "$" + thousands(raw)

	default:
		return thousands(raw)
	}
}

// descending decides the sort direction for a descriptor. Times default
// to ascending (fastest first), everything else to descending (highest
// first); an explicit ascending/descending in the descriptor wins.
func descending(descriptor string) bool {
	if strings.Contains(descriptor, "descending") {
		return true
	}
	if strings.Contains(descriptor, "ascending") {
		return false
	}
	return !strings.HasPrefix(descriptor, "time")
}

// GlobalTables formats the global score pages for a comma-separated list
// of iscored ids, sorted and rendered per the descriptor. Ids with no
// page in the cache are skipped. The returned tables share nothing with
// the cache.
func (c *GlobalCache) GlobalTables(ids string, descriptor string) []Table {
	descriptor = strings.ToLower(strings.TrimSpace(descriptor))

	tables := make([]Table, 0)
	for _, id := range strings.Split(ids, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}

		game, ok := c.Get(id)
		if !ok {
			continue
		}

		rows := game.Rows
		sort.SliceStable(rows, func(i, j int) bool {
			if descending(descriptor) {
				return scoreLess(rows[j].Score, rows[i].Score)
			}
			return scoreLess(rows[i].Score, rows[j].Score)
		})

		table := Table{
			ID:      game.GameName,
			Columns: append([]string(nil), globalColumns...),
		}
		if table.ID == "" {
			table.ID = game.GameID
		}
		for _, r := range rows {
			table.Rows = append(table.Rows, []string{r.Player, formatScore(r.Score, descriptor), r.Date})
		}
		tables = append(tables, table)
	}

	return tables
}
