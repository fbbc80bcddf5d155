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

// Package payload keeps a set of files under the install root in sync
// with remote copies. The payload file lists what to fetch; downloads
// are conditional, size-capped and atomic. Playlist files rewritten by
// a sync are marked in the dirty registry so the frontend reloads them.
package payload

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/retrofe/retrofe/collection"
	"github.com/retrofe/retrofe/config"
	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/logger"
	"github.com/retrofe/retrofe/resources"
	"github.com/retrofe/retrofe/workers"
)

const (
	requestTimeout  = 60 * time.Second
	defaultMaxBytes = 8 * 1024 * 1024

	cacheSubdir = ".cache/payload"
)

// Syncer downloads the files named by a payload file. All methods run
// on a worker, never the main loop.
type Syncer struct {
	client *http.Client
	dirty  *collection.DirtyRegistry

	file          string
	root          string
	cacheDir      string
	allowGitHub   bool
	allowPrefixes []string
	maxBytes      int64
}

// NewSyncer is the preferred method of initialisation for the Syncer
// type. The dirty registry may be nil for one-shot command-line runs.
func NewSyncer(cfg *config.Configuration, dirty *collection.DirtyRegistry) (*Syncer, error) {
	root, err := resources.BaseDir()
	if err != nil {
		return nil, curated.Errorf("payload: %v", err)
	}

	file, err := cfg.AbsolutePath("payload.file", "payload.conf")
	if err != nil {
		return nil, curated.Errorf("payload: %v", err)
	}

	return &Syncer{
		client:        &http.Client{Timeout: requestTimeout},
		dirty:         dirty,
		file:          file,
		root:          root,
		cacheDir:      filepath.Join(root, filepath.FromSlash(cacheSubdir)),
		allowGitHub:   cfg.Bool("payload.allow_github", true),
		allowPrefixes: allowedURLPrefixes,
		maxBytes:      int64(cfg.Int("payload.max_bytes_default", defaultMaxBytes)),
	}, nil
}

// Run performs one full pass over the payload file. Individual stanza
// failures are logged and skipped; the pass continues. In a dry run the
// stanzas are validated and reported but no HTTP is issued.
func (s *Syncer) Run(dryRun bool) error {
	data, err := os.ReadFile(s.file)
	if err != nil {
		return curated.Errorf("payload: %v", err)
	}

	stanzas, err := ParseStanzas(string(data), s.maxBytes)
	if err != nil {
		return err
	}

	for _, st := range stanzas {
		if err := s.syncStanza(st, dryRun); err != nil {
			logger.Logf(logger.Warning, "payload", "%v", err)
		}
	}

	return nil
}

// syncStanza validates and fetches one stanza. Validation happens
// before any network activity.
func (s *Syncer) syncStanza(st Stanza, dryRun bool) error {
	dest, err := resolveLocal(s.root, st.Local)
	if err != nil {
		return err
	}

	// remote fetches are GitHub-only. with allow_github off no URL is
	// accepted at all.
	if !s.allowGitHub || !urlAllowed(st.URL, s.allowPrefixes) {
		return curated.Errorf(URLNotAllowed, st.URL)
	}

	if dryRun {
		logger.Logf(logger.Info, "payload", "dry run: %s -> %s", st.URL, dest)
		return nil
	}

	etag, lastModified := s.readSidecars(st)

	req, err := http.NewRequest(http.MethodGet, st.URL, nil)
	if err != nil {
		return curated.Errorf("payload: %v", err)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return curated.Errorf("payload: %s: %v", st.URL, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		logger.Logf(logger.Debug, "payload", "not modified: %s", st.Local)
		return nil
	case http.StatusOK:
		// fallthrough to download
	default:
		return curated.Errorf("payload: %s: http %d", st.URL, resp.StatusCode)
	}

	if err := s.download(resp, st, dest); err != nil {
		return err
	}

	s.writeSidecars(st, resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"))

	if s.dirty != nil {
		rel, err := filepath.Rel(s.root, dest)
		if err == nil && s.dirty.AddPath(filepath.ToSlash(rel)) {
			logger.Logf(logger.Info, "payload", "playlist updated: %s", st.Local)
		}
	}

	logger.Logf(logger.Info, "payload", "updated %s", st.Local)
	return nil
}

// download streams the response body to <dest>.tmp, enforcing the byte
// cap and the sha256 digest, then renames into place.
func (s *Syncer) download(resp *http.Response, st Stanza, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return curated.Errorf("payload: %v", err)
	}

	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return curated.Errorf("payload: %v", err)
	}

	hash := sha256.New()
	n, err := io.Copy(io.MultiWriter(f, hash), io.LimitReader(resp.Body, st.MaxBytes+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return curated.Errorf("payload: %s: %v", st.Local, err)
	}
	if n > st.MaxBytes {
		os.Remove(tmp)
		return curated.Errorf("payload: %s: exceeds byte cap of %d", st.Local, st.MaxBytes)
	}

	if st.SHA256 != "" {
		sum := hex.EncodeToString(hash.Sum(nil))
		if sum != st.SHA256 {
			os.Remove(tmp)
			return curated.Errorf("payload: %s: sha256 mismatch", st.Local)
		}
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return curated.Errorf("payload: %v", err)
	}
	return nil
}

// sidecar bookkeeping. stanza-supplied validators are the fallback when
// no sidecar has been written yet.

func (s *Syncer) sidecarPath(st Stanza, ext string) string {
	return filepath.Join(s.cacheDir, sidecarName(st.Local)+ext)
}

func (s *Syncer) readSidecars(st Stanza) (etag string, lastModified string) {
	etag = st.ETag
	lastModified = st.LastModified

	if data, err := os.ReadFile(s.sidecarPath(st, ".etag")); err == nil {
		etag = string(data)
	}
	if data, err := os.ReadFile(s.sidecarPath(st, ".lm")); err == nil {
		lastModified = string(data)
	}
	return etag, lastModified
}

func (s *Syncer) writeSidecars(st Stanza, etag string, lastModified string) {
	if etag != "" {
		if err := resources.WriteAtomic(s.sidecarPath(st, ".etag"), []byte(etag)); err != nil {
			logger.Logf(logger.Warning, "payload", "%v", err)
		}
	}
	if lastModified != "" {
		if err := resources.WriteAtomic(s.sidecarPath(st, ".lm"), []byte(lastModified)); err != nil {
			logger.Logf(logger.Warning, "payload", "%v", err)
		}
	}
}

// Runner triggers payload syncs on a schedule: an initial delay, a
// uniform jitter on top of each interval, and a stop channel for
// shutdown.
type Runner struct {
	syncer   *Syncer
	pool     *workers.Pool
	interval time.Duration
	initial  time.Duration
	jitter   time.Duration
	stop     chan struct{}
}

// NewRunner is the preferred method of initialisation for the Runner
// type. Sync passes execute on the pool; a nil pool runs them on the
// schedule goroutine itself.
func NewRunner(cfg *config.Configuration, syncer *Syncer, pool *workers.Pool) *Runner {
	return &Runner{
		syncer:   syncer,
		pool:     pool,
		interval: time.Duration(cfg.Int("payload.interval_seconds", 3600)) * time.Second,
		initial:  time.Duration(cfg.Int("payload.initial_delay_seconds", 30)) * time.Second,
		jitter:   time.Duration(cfg.Int("payload.jitter_seconds", 60)) * time.Second,
		stop:     make(chan struct{}),
	}
}

// Start launches the schedule on a detached goroutine.
func (r *Runner) Start() {
	go r.loop()
}

// Stop ends the schedule. A sync already in flight completes.
func (r *Runner) Stop() {
	select {
	case <-r.stop:
	default:
		close(r.stop)
	}
}

func (r *Runner) loop() {
	delay := r.initial
	for {
		select {
		case <-r.stop:
			return
		case <-time.After(delay + r.nextJitter()):
		}

		pass := func() {
			if err := r.syncer.Run(false); err != nil {
				logger.Logf(logger.Warning, "payload", "%v", err)
			}
		}
		if r.pool == nil || !r.pool.Submit(pass) {
			pass()
		}

		delay = r.interval
	}
}

func (r *Runner) nextJitter() time.Duration {
	if r.jitter <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(r.jitter)))
}

// String implements the fmt.Stringer interface. Used by the command
// line's dry run report.
func (st Stanza) String() string {
	return fmt.Sprintf("%s -> %s (cap %d)", st.URL, st.Local, st.MaxBytes)
}
