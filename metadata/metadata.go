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

// Package metadata persists per-item play statistics across runs. The
// store is a flat file of tab separated records, one per (collection,
// item) pair. It backs the lastplayed playlist and the playCount and
// timeSpent sort attributes.
package metadata

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/logger"
	"github.com/retrofe/retrofe/resources"
)

const fieldSep = "\t"

const (
	fieldCollection int = iota
	fieldName
	fieldPlayCount
	fieldTimeSpent
	fieldLastPlayed
	numFields
)

// Record is the play statistics of one item.
type Record struct {
	Collection string
	Name       string
	PlayCount  int
	TimeSpent  time.Duration
	LastPlayed time.Time
}

// Store is the collection of all play statistics. Safe for concurrent
// use. Launch monitoring records play time from its own goroutine.
type Store struct {
	crit    sync.Mutex
	path    string
	records map[string]*Record
}

func key(collection string, name string) string {
	return collection + "\x00" + name
}

// NewStore loads the store at the supplied path. A missing file is not an
// error, it simply means no statistics have been recorded yet.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:    path,
		records: make(map[string]*Record),
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, curated.Errorf("metadata: %v", err)
	}
	defer f.Close()

	lineNum := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" {
			continue
		}

		fields := strings.Split(line, fieldSep)
		if len(fields) != numFields {
			logger.Logf(logger.Warning, "metadata", "line %d: wrong number of fields, ignoring", lineNum)
			continue
		}

		r := &Record{
			Collection: fields[fieldCollection],
			Name:       fields[fieldName],
		}
		r.PlayCount, _ = strconv.Atoi(fields[fieldPlayCount])
		if n, err := strconv.ParseInt(fields[fieldTimeSpent], 10, 64); err == nil {
			r.TimeSpent = time.Duration(n) * time.Second
		}
		if n, err := strconv.ParseInt(fields[fieldLastPlayed], 10, 64); err == nil && n > 0 {
			r.LastPlayed = time.Unix(n, 0)
		}

		s.records[key(r.Collection, r.Name)] = r
	}
	if err := scanner.Err(); err != nil {
		return nil, curated.Errorf("metadata: %v", err)
	}

	return s, nil
}

// Get returns the record for an item. The zero record is returned for
// items never played.
func (s *Store) Get(collection string, name string) Record {
	s.crit.Lock()
	defer s.crit.Unlock()

	if r, ok := s.records[key(collection, name)]; ok {
		return *r
	}
	return Record{Collection: collection, Name: name}
}

// AddPlay records one play of an item, accumulating the time spent and
// updating the last-played timestamp.
func (s *Store) AddPlay(collection string, name string, spent time.Duration, when time.Time) {
	s.crit.Lock()
	defer s.crit.Unlock()

	k := key(collection, name)
	r, ok := s.records[k]
	if !ok {
		r = &Record{Collection: collection, Name: name}
		s.records[k] = r
	}
	r.PlayCount++
	r.TimeSpent += spent
	r.LastPlayed = when
}

// Save writes the store to disk. Records are sorted so the file is stable
// across runs and the write is atomic.
func (s *Store) Save() error {
	s.crit.Lock()
	defer s.crit.Unlock()

	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b := strings.Builder{}
	for _, k := range keys {
		r := s.records[k]
		var lastPlayed int64
		if !r.LastPlayed.IsZero() {
			lastPlayed = r.LastPlayed.Unix()
		}
		b.WriteString(fmt.Sprintf("%s%s%s%s%d%s%d%s%d\n",
			r.Collection, fieldSep, r.Name, fieldSep,
			r.PlayCount, fieldSep,
			int64(r.TimeSpent/time.Second), fieldSep,
			lastPlayed))
	}

	if err := resources.WriteAtomic(s.path, []byte(b.String())); err != nil {
		return curated.Errorf("metadata: %v", err)
	}
	return nil
}
