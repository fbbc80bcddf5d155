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

package hiscores_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/retrofe/retrofe/hiscores"
	"github.com/retrofe/retrofe/test"
	"github.com/retrofe/retrofe/workers"
)

func TestRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"games":[{"gameId":"g1","scores":[{"player":"ann","score":100,"date":"d1"}]}]}`))
	}))
	defer srv.Close()

	cache := hiscores.NewGlobalCache(filepath.Join(t.TempDir(), "global_cache.json"))

	changed, err := cache.Refresh(srv.URL, 0)
	test.ExpectedSuccess(t, err)
	test.DemandEquality(t, len(changed), 1)
	test.Equate(t, changed[0], "g1")

	// an identical second response changes nothing
	changed, err = cache.Refresh(srv.URL, 0)
	test.ExpectedSuccess(t, err)
	test.DemandEquality(t, len(changed), 0)
}

func TestRefreshServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cache := hiscores.NewGlobalCache(filepath.Join(t.TempDir(), "global_cache.json"))
	cache.Ingest(map[string]*hiscores.GlobalGame{"g1": game("g1", row("ann", "1", ""))}, 0)

	_, err := cache.Refresh(srv.URL, 0)
	test.ExpectedFailure(t, err)

	// failure never mutates the cache
	_, ok := cache.Get("g1")
	test.Demand(t, ok)
}

func TestRefreshAsyncRunsOnPool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"games":[{"gameId":"g1","scores":[{"player":"ann","score":100,"date":"d1"}]}]}`))
	}))
	defer srv.Close()

	cache := hiscores.NewGlobalCache(filepath.Join(t.TempDir(), "global_cache.json"))

	pool := workers.NewPool(2)
	defer pool.Shutdown()

	done := make(chan []string, 1)
	cache.RefreshAsync(pool, srv.URL, 0, func(changed []string) {
		done <- changed
	})

	select {
	case changed := <-done:
		test.DemandEquality(t, len(changed), 1)
	case <-time.After(5 * time.Second):
		t.Fatal("refresh did not complete")
	}

	_, ok := cache.Get("g1")
	test.Demand(t, ok)
}
