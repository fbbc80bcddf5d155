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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/logger"
	"github.com/retrofe/retrofe/resources"
	"github.com/retrofe/retrofe/workers"
)

// version tag of the on-disk snapshot format.
const snapshotVersion = 1

// cap on the size of a score-server response.
const maxResponseSize = 32 * 1024 * 1024

// Row is one score line of a global game.
type Row struct {
	Player string `json:"player"`
	Score  string `json:"score"`
	Date   string `json:"date"`
}

// GlobalGame is the score page of one game in the global cache.
type GlobalGame struct {
	GameID   string `json:"gameId"`
	GameName string `json:"gameName"`
	Rows     []Row  `json:"rows"`
}

// GlobalCache maps external game id to its score page. Fetched over HTTP
// from the score server and persisted as a deterministic snapshot.
type GlobalCache struct {
	crit sync.RWMutex
	byID map[string]*GlobalGame

	// where the snapshot is persisted
	path string

	client *http.Client
}

// NewGlobalCache is the preferred method of initialisation for the
// GlobalCache type.
func NewGlobalCache(path string) *GlobalCache {
	return &GlobalCache{
		byID: make(map[string]*GlobalGame),
		path: path,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// scalar converts the loosely-typed JSON values the score server emits
// into strings. json numbers keep their textual form via json.Number.
func scalar(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	}
	return fmt.Sprintf("%v", v)
}

func field(m map[string]interface{}, names ...string) string {
	for _, n := range names {
		if v, ok := m[n]; ok {
			return scalar(v)
		}
	}
	return ""
}

func parseRow(m map[string]interface{}) Row {
	return Row{
		Player: field(m, "player", "name"),
		Score:  field(m, "score", "value"),
		Date:   field(m, "date", "when"),
	}
}

func parseGame(id string, m map[string]interface{}, out map[string]*GlobalGame) {
	if id == "" {
		id = field(m, "gameId", "game_id", "id")
	}
	if id == "" {
		return
	}

	g, ok := out[id]
	if !ok {
		g = &GlobalGame{GameID: id}
		out[id] = g
	}
	if n := field(m, "gameName", "game_name", "name"); n != "" {
		g.GameName = n
	}

	rows, ok := m["scores"].([]interface{})
	if !ok {
		rows, _ = m["rows"].([]interface{})
	}
	for _, r := range rows {
		if rm, ok := r.(map[string]interface{}); ok {
			g.Rows = append(g.Rows, parseRow(rm))
		}
	}
}

// a flat row carries its own game id.
func parseFlatRow(m map[string]interface{}, out map[string]*GlobalGame) {
	id := field(m, "gameId", "game_id")
	if id == "" {
		return
	}
	g, ok := out[id]
	if !ok {
		g = &GlobalGame{GameID: id, GameName: field(m, "gameName", "game_name")}
		out[id] = g
	}
	g.Rows = append(g.Rows, parseRow(m))
}

func looksLikeFlatRow(m map[string]interface{}) bool {
	_, player := m["player"]
	_, scores := m["scores"]
	_, rows := m["rows"]
	return player && !scores && !rows
}

// ParseGlobalResponse accepts the four response shapes the score server
// has been seen to produce: an object with a top-level games array, an
// object with a top-level flat scores array, a bare array of either, or
// an object keyed by game id. Row order within a game follows arrival
// order.
func ParseGlobalResponse(payload []byte) (map[string]*GlobalGame, error) {
	out := make(map[string]*GlobalGame)

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var top interface{}
	if err := dec.Decode(&top); err != nil {
		return nil, curated.Errorf(BadPayload, err)
	}

	switch top := top.(type) {
	case []interface{}:
		for _, e := range top {
			m, ok := e.(map[string]interface{})
			if !ok {
				continue
			}
			if looksLikeFlatRow(m) {
				parseFlatRow(m, out)
			} else {
				parseGame("", m, out)
			}
		}

	case map[string]interface{}:
		if games, ok := top["games"].([]interface{}); ok {
			for _, e := range games {
				if m, ok := e.(map[string]interface{}); ok {
					parseGame("", m, out)
				}
			}
			return out, nil
		}
		if scores, ok := top["scores"].([]interface{}); ok {
			for _, e := range scores {
				if m, ok := e.(map[string]interface{}); ok {
					parseFlatRow(m, out)
				}
			}
			return out, nil
		}
		// an object keyed by game id
		for id, e := range top {
			if m, ok := e.(map[string]interface{}); ok {
				parseGame(id, m, out)
			}
		}

	default:
		return nil, curated.Errorf(BadPayload, "unrecognised response shape")
	}

	return out, nil
}

// rowSetEqual compares two row slices as unordered multisets.
func rowSetEqual(a []Row, b []Row) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, r := range a {
		counts[r.Player+"\x1f"+r.Score+"\x1f"+r.Date]++
	}
	for _, r := range b {
		k := r.Player + "\x1f" + r.Score + "\x1f" + r.Date
		counts[k]--
		if counts[k] < 0 {
			return false
		}
	}
	return true
}

// Ingest merges a parsed response into the cache. Each game's rows are
// truncated to limit (0 = unlimited). A stored game is replaced only when
// its row set differs from the response; games absent from the response
// are retained untouched. The whole merge happens under one lock
// acquisition so readers never observe a partial update.
//
// Returns the ids of the games that changed, sorted.
func (c *GlobalCache) Ingest(games map[string]*GlobalGame, limit int) []string {
	changed := make([]string, 0)

	c.crit.Lock()
	defer c.crit.Unlock()

	for id, g := range games {
		rows := g.Rows
		if limit > 0 && len(rows) > limit {
			rows = rows[:limit]
		}

		stored, ok := c.byID[id]
		if ok && stored.GameName == g.GameName && rowSetEqual(stored.Rows, rows) {
			continue
		}

		c.byID[id] = &GlobalGame{
			GameID:   id,
			GameName: g.GameName,
			Rows:     append([]Row(nil), rows...),
		}
		changed = append(changed, id)
	}

	sort.Strings(changed)
	return changed
}

// Refresh fetches the score server's response and ingests it. Returns
// the ids of the games that changed.
func (c *GlobalCache) Refresh(url string, limit int) ([]string, error) {
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, curated.Errorf("hiscores: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, curated.Errorf("hiscores: unexpected response: %s", resp.Status)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, curated.Errorf("hiscores: %v", err)
	}

	games, err := ParseGlobalResponse(payload)
	if err != nil {
		return nil, err
	}

	return c.Ingest(games, limit), nil
}

// RefreshAsync schedules Refresh on the worker pool, falling back to a
// detached goroutine when no pool is supplied or the pool has shut
// down. The onChanged callback receives the changed ids on success; it
// runs on the worker and must not touch main-thread state directly.
func (c *GlobalCache) RefreshAsync(pool *workers.Pool, url string, limit int, onChanged func([]string)) {
	task := func() {
		changed, err := c.Refresh(url, limit)
		if err != nil {
			logger.Logf(logger.Warning, "hiscores", "refresh: %v", err)
			return
		}
		logger.Logf(logger.Info, "hiscores", "refresh: %d games changed", len(changed))
		if onChanged != nil {
			onChanged(changed)
		}
	}
	if pool == nil || !pool.Submit(task) {
		go task()
	}
}

// Get returns a copy of one game's page. Callers must not assume the
// copy is updated by later refreshes.
func (c *GlobalCache) Get(gameID string) (GlobalGame, bool) {
	c.crit.RLock()
	defer c.crit.RUnlock()

	g, ok := c.byID[gameID]
	if !ok {
		return GlobalGame{}, false
	}
	return GlobalGame{
		GameID:   g.GameID,
		GameName: g.GameName,
		Rows:     append([]Row(nil), g.Rows...),
	}, true
}

// the snapshot file layout.
type snapshot struct {
	Version int          `json:"version"`
	Games   []GlobalGame `json:"games"`
}

// Save writes the cache to disk. Games are sorted by id so the snapshot
// is deterministic, and the write is atomic.
func (c *GlobalCache) Save() error {
	c.crit.RLock()
	snap := snapshot{Version: snapshotVersion}
	for _, g := range c.byID {
		snap.Games = append(snap.Games, GlobalGame{
			GameID:   g.GameID,
			GameName: g.GameName,
			Rows:     append([]Row(nil), g.Rows...),
		})
	}
	c.crit.RUnlock()

	sort.Slice(snap.Games, func(i, j int) bool { return snap.Games[i].GameID < snap.Games[j].GameID })

	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return curated.Errorf("hiscores: %v", err)
	}
	if err := resources.WriteAtomic(c.path, payload); err != nil {
		return curated.Errorf("hiscores: %v", err)
	}
	return nil
}

// Load restores the cache from disk. A missing snapshot is not an error.
func (c *GlobalCache) Load() error {
	payload, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return curated.Errorf("hiscores: %v", err)
	}

	var snap snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return curated.Errorf(BadPayload, err)
	}
	if snap.Version != snapshotVersion {
		return curated.Errorf("hiscores: unsupported snapshot version: %d", snap.Version)
	}

	c.crit.Lock()
	defer c.crit.Unlock()
	c.byID = make(map[string]*GlobalGame, len(snap.Games))
	for i := range snap.Games {
		g := snap.Games[i]
		c.byID[g.GameID] = &g
	}
	return nil
}
