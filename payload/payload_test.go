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

package payload

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/retrofe/retrofe/collection"
	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/test"
)

func TestParseStanzas(t *testing.T) {
	data := `# weekly refresh
url = https://raw.githubusercontent.com/org/repo/main/favorites.txt
local = collections/Main/playlists/favorites.txt
etag = "abc123"
max_bytes = 1024

url = https://github.com/org/repo/releases/download/v1/extra.zip
local = payloads/extra.zip
`

	stanzas, err := ParseStanzas(data, 4096)
	test.ExpectedSuccess(t, err)
	test.Equate(t, len(stanzas), 2)

	test.Equate(t, stanzas[0].Local, "collections/Main/playlists/favorites.txt")
	test.Equate(t, stanzas[0].ETag, `"abc123"`)
	test.Equate(t, stanzas[0].MaxBytes, int64(1024))

	// second stanza inherits the default cap
	test.Equate(t, stanzas[1].MaxBytes, int64(4096))
}

func TestParseStanzasRejectsUnknownKey(t *testing.T) {
	_, err := ParseStanzas("url = https://github.com/a\nlocal = b\nmaxbytes = 12\n", 0)
	test.ExpectedFailure(t, err)
	test.Demand(t, curated.Is(err, BadStanza))
}

func TestLocalEscapeRejectedBeforeHTTP(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	s := &Syncer{
		client:   srv.Client(),
		root:     t.TempDir(),
		cacheDir: t.TempDir(),
	}

	err := s.syncStanza(Stanza{URL: srv.URL, Local: "../../etc/passwd", MaxBytes: 1024}, false)
	test.ExpectedFailure(t, err)
	test.Demand(t, curated.Is(err, LocalEscapes))
	test.Equate(t, requests, 0)
}

func TestURLAllowList(t *testing.T) {
	s := &Syncer{
		root:          t.TempDir(),
		cacheDir:      t.TempDir(),
		allowGitHub:   true,
		allowPrefixes: allowedURLPrefixes,
	}

	err := s.syncStanza(Stanza{URL: "https://example.com/x", Local: "x", MaxBytes: 1}, true)
	test.ExpectedFailure(t, err)
	test.Demand(t, curated.Is(err, URLNotAllowed))

	// dry run of an allowed url issues no HTTP and succeeds
	err = s.syncStanza(Stanza{URL: "https://raw.githubusercontent.com/a/b", Local: "x", MaxBytes: 1}, true)
	test.ExpectedSuccess(t, err)
}

func TestAllowGitHubOffRejectsEveryURL(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	s := &Syncer{
		client:        srv.Client(),
		root:          t.TempDir(),
		cacheDir:      t.TempDir(),
		allowGitHub:   false,
		allowPrefixes: allowedURLPrefixes,
	}

	// with allow_github off nothing is fetched, not even an otherwise
	// allow-listed url
	for _, url := range []string{srv.URL, "https://raw.githubusercontent.com/a/b"} {
		err := s.syncStanza(Stanza{URL: url, Local: "x", MaxBytes: 1024}, false)
		test.ExpectedFailure(t, err)
		test.Demand(t, curated.Is(err, URLNotAllowed))
	}

	test.Equate(t, hits, 0)
	_, err := os.Stat(filepath.Join(s.root, "x"))
	test.ExpectedFailure(t, err)
}

func TestConditionalGet(t *testing.T) {
	const body = "line1\nline2\n"

	var sawIfNoneMatch string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawIfNoneMatch = r.Header.Get("If-None-Match")
		if sawIfNoneMatch == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	root := t.TempDir()
	s := &Syncer{
		client:        srv.Client(),
		dirty:         collection.NewDirtyRegistry(),
		root:          root,
		cacheDir:      filepath.Join(root, ".cache", "payload"),
		allowGitHub:   true,
		allowPrefixes: []string{srv.URL},
	}

	st := Stanza{
		URL:      srv.URL,
		Local:    "collections/Main/playlists/favorites.txt",
		MaxBytes: 1024,
	}

	// first pass downloads and writes the sidecar
	test.ExpectedSuccess(t, s.syncStanza(st, false))

	data, err := os.ReadFile(filepath.Join(root, "collections", "Main", "playlists", "favorites.txt"))
	test.ExpectedSuccess(t, err)
	test.Equate(t, string(data), body)

	// the rewritten playlist is marked dirty
	test.Demand(t, s.dirty.IsDirty("Main", "favorites"))

	// second pass sends the stored validator and accepts the 304
	test.ExpectedSuccess(t, s.syncStanza(st, false))
	test.Equate(t, sawIfNoneMatch, `"v1"`)

	// no tmp residue
	_, err = os.Stat(filepath.Join(root, "collections", "Main", "playlists", "favorites.txt.tmp"))
	test.ExpectedFailure(t, err)
}

func TestByteCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	root := t.TempDir()
	s := &Syncer{
		client:        srv.Client(),
		root:          root,
		cacheDir:      t.TempDir(),
		allowGitHub:   true,
		allowPrefixes: []string{srv.URL},
	}

	err := s.syncStanza(Stanza{URL: srv.URL, Local: "big.bin", MaxBytes: 1024}, false)
	test.ExpectedFailure(t, err)

	// neither the file nor the tmp exists after the abort
	_, err = os.Stat(filepath.Join(root, "big.bin"))
	test.ExpectedFailure(t, err)
	_, err = os.Stat(filepath.Join(root, "big.bin.tmp"))
	test.ExpectedFailure(t, err)
}

func TestRunnerStop(t *testing.T) {
	r := &Runner{
		syncer:   &Syncer{root: t.TempDir(), cacheDir: t.TempDir()},
		interval: time.Hour,
		initial:  time.Hour,
		stop:     make(chan struct{}),
	}
	r.Start()
	r.Stop()

	// a second stop is harmless
	r.Stop()
}
