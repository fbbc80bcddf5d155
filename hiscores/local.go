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

// Package hiscores holds the two high-score caches: the local cache of
// per-game tables converted from emulator NVRAM by hi2txt, and the global
// cache fetched from the score server. Both are read during render and
// written from worker goroutines, each under its own RWMutex.
package hiscores

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/logger"
	"github.com/retrofe/retrofe/resources"
)

// sentinel errors for the hiscores package.
const (
	BadPayload = "hiscores: bad payload: %v"
)

// Table is one page of a game's high-score display.
type Table struct {
	ID      string
	Columns []string
	Rows    [][]string

	// set when the table is installed or replaced. the renderer clears it
	// once the page has been redrawn
	ForceRedraw bool
}

// Data is the set of tables for one game.
type Data struct {
	Tables []Table
}

// the on-disk XML shape produced by hi2txt.
type xmlDocument struct {
	XMLName xml.Name   `xml:"hi2txt"`
	Tables  []xmlTable `xml:"table"`
}

type xmlTable struct {
	ID   string   `xml:"id,attr"`
	Cols []string `xml:"col"`
	Rows []xmlRow `xml:"row"`
}

type xmlRow struct {
	Cells []string `xml:"cell"`
}

// ParseData parses a deobfuscated hi2txt XML payload.
func ParseData(payload []byte) (Data, error) {
	var doc xmlDocument
	if err := xml.Unmarshal(payload, &doc); err != nil {
		return Data{}, curated.Errorf(BadPayload, err)
	}

	data := Data{}
	for _, t := range doc.Tables {
		table := Table{
			ID:      t.ID,
			Columns: t.Cols,
		}
		for _, r := range t.Rows {
			table.Rows = append(table.Rows, r.Cells)
		}
		data.Tables = append(data.Tables, table)
	}
	return data, nil
}

// LocalCache maps game name to its high-score tables.
type LocalCache struct {
	crit  sync.RWMutex
	games map[string]Data
}

// NewLocalCache is the preferred method of initialisation for the
// LocalCache type.
func NewLocalCache() *LocalCache {
	return &LocalCache{
		games: make(map[string]Data),
	}
}

// Load populates the cache from the scores ZIP and then overlays every
// XML in the override directory, which holds the scores captured by this
// machine. All payloads are stored obfuscated.
func (c *LocalCache) Load(zipPath string, overrideDir string) error {
	if zipPath != "" {
		z, err := zip.OpenReader(zipPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return curated.Errorf("hiscores: %v", err)
			}
		} else {
			defer z.Close()
			for _, f := range z.File {
				if !strings.HasSuffix(strings.ToLower(f.Name), ".xml") {
					continue
				}
				r, err := f.Open()
				if err != nil {
					logger.Logf(logger.Warning, "hiscores", "%s in %s: %v", f.Name, zipPath, err)
					continue
				}
				payload, err := io.ReadAll(r)
				r.Close()
				if err != nil {
					logger.Logf(logger.Warning, "hiscores", "%s in %s: %v", f.Name, zipPath, err)
					continue
				}
				c.installPayload(stem(f.Name), payload)
			}
		}
	}

	if overrideDir != "" {
		entries, err := os.ReadDir(overrideDir)
		if err != nil && !os.IsNotExist(err) {
			return curated.Errorf("hiscores: %v", err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".xml") {
				continue
			}
			payload, err := os.ReadFile(filepath.Join(overrideDir, e.Name()))
			if err != nil {
				logger.Logf(logger.Warning, "hiscores", "%s: %v", e.Name(), err)
				continue
			}
			c.installPayload(stem(e.Name()), payload)
		}
	}

	return nil
}

func stem(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func (c *LocalCache) installPayload(game string, payload []byte) {
	data, err := ParseData(resources.Deobfuscate(payload))
	if err != nil {
		logger.Logf(logger.Warning, "hiscores", "%s: %v", game, err)
		return
	}
	c.Install(game, data)
}

// Install replaces a game's tables. Every table is marked for redraw.
func (c *LocalCache) Install(game string, data Data) {
	for i := range data.Tables {
		data.Tables[i].ForceRedraw = true
	}

	c.crit.Lock()
	defer c.crit.Unlock()
	c.games[game] = data
}

// Get returns a copy of a game's tables. Callers may retain the copy
// freely; it shares nothing with the cache.
func (c *LocalCache) Get(game string) (Data, bool) {
	c.crit.RLock()
	defer c.crit.RUnlock()

	data, ok := c.games[game]
	if !ok {
		return Data{}, false
	}
	return copyData(data), true
}

func copyData(data Data) Data {
	cp := Data{Tables: make([]Table, len(data.Tables))}
	for i, t := range data.Tables {
		ct := Table{
			ID:          t.ID,
			Columns:     append([]string(nil), t.Columns...),
			ForceRedraw: t.ForceRedraw,
		}
		for _, r := range t.Rows {
			ct.Rows = append(ct.Rows, append([]string(nil), r...))
		}
		cp.Tables[i] = ct
	}
	return cp
}

// ClearRedraw resets the force-redraw flags of a game once the renderer
// has caught up.
func (c *LocalCache) ClearRedraw(game string) {
	c.crit.Lock()
	defer c.crit.Unlock()

	data, ok := c.games[game]
	if !ok {
		return
	}
	for i := range data.Tables {
		data.Tables[i].ForceRedraw = false
	}
	c.games[game] = data
}
