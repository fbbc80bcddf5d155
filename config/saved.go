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

package config

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/resources"
)

// the file that persists settings across runs, distinct from the
// hand-edited settings.conf.
const savedFile = "settings_saved.conf"

// Saved is the registry of live settings persisted across runs. Each
// registered Value is written to settings_saved.conf under its key; the
// write is atomic and the keys are sorted so the file is stable.
type Saved struct {
	crit    sync.Mutex
	entries map[string]Value
}

// NewSaved is the preferred method of initialisation for the Saved
// type.
func NewSaved() *Saved {
	return &Saved{
		entries: make(map[string]Value),
	}
}

// Add a value to the registry. Keys must be unique.
func (s *Saved) Add(key string, v Value) error {
	s.crit.Lock()
	defer s.crit.Unlock()

	if _, ok := s.entries[key]; ok {
		return curated.Errorf("config: duplicate saved setting: %s", key)
	}
	s.entries[key] = v
	return nil
}

// Save writes every registered value to settings_saved.conf.
func (s *Saved) Save() error {
	s.crit.Lock()
	defer s.crit.Unlock()

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b := strings.Builder{}
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("%s=%s\n", k, s.entries[k].String()))
	}

	path, err := resources.JoinPath(savedFile)
	if err != nil {
		return err
	}
	return resources.WriteAtomic(path, []byte(b.String()))
}

// LoadSettings imports settings_saved.conf into the configuration. A
// missing file is not an error, it simply means nothing has been saved
// yet.
func (cfg *Configuration) LoadSettings() error {
	path, err := resources.JoinPath(savedFile)
	if err != nil {
		return err
	}
	err = cfg.Import(path, "")
	if err != nil {
		if curated.Is(err, FileNotFound) {
			return nil
		}
		return err
	}
	return nil
}
