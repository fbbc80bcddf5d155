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
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/logger"
	"github.com/retrofe/retrofe/resources"
	"github.com/retrofe/retrofe/workers"
)

// how long a hi2txt conversion may run before it is abandoned.
const hi2txtTimeout = 30 * time.Second

// Converter runs the external hi2txt program to turn emulator NVRAM into
// high-score XML and installs the result into the local cache.
type Converter struct {
	cache *LocalCache
	pool  *workers.Pool

	// path of the hi2txt executable
	executable string

	// where converted payloads are persisted, obfuscated
	overrideDir string
}

// NewConverter is the preferred method of initialisation for the
// Converter type. The pool may be nil; asynchronous conversions then
// run on detached goroutines.
func NewConverter(cache *LocalCache, executable string, overrideDir string, pool *workers.Pool) *Converter {
	return &Converter{
		cache:       cache,
		pool:        pool,
		executable:  executable,
		overrideDir: overrideDir,
	}
}

// Run converts one game. The converter's stdout must begin with the
// <hi2txt root tag or the output is rejected without touching the cache
// or the override directory.
func (cnv *Converter) Run(ctx context.Context, game string) error {
	ctx, cancel := context.WithTimeout(ctx, hi2txtTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cnv.executable, "-r", game)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return curated.Errorf("hiscores: hi2txt: %v", err)
	}

	payload := bytes.TrimSpace(stdout.Bytes())
	if !strings.HasPrefix(string(payload), "<hi2txt") {
		return curated.Errorf("hiscores: hi2txt: unexpected output for %s", game)
	}

	data, err := ParseData(payload)
	if err != nil {
		return err
	}
	cnv.cache.Install(game, data)

	// the on-disk copy is obfuscated. Obfuscate mutates its argument so
	// the parse above must come first
	path := filepath.Join(cnv.overrideDir, game+".xml")
	if err := resources.WriteAtomic(path, resources.Obfuscate(payload)); err != nil {
		return curated.Errorf("hiscores: %v", err)
	}

	logger.Logf(logger.Info, "hiscores", "hi2txt converted %s", game)
	return nil
}

// RunAsync converts one game on the worker pool. Failures surface in
// the log only.
func (cnv *Converter) RunAsync(game string) {
	task := func() {
		if err := cnv.Run(context.Background(), game); err != nil {
			logger.Logf(logger.Warning, "hiscores", "%v", err)
		}
	}
	if cnv.pool == nil || !cnv.pool.Submit(task) {
		go task()
	}
}
