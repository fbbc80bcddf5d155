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

// Package workers is the fixed-size pool that runs the front-end's
// background work: hi-score ingestion, collection rebuilds, restrictor
// probing and payload sync. The main loop never blocks; anything that
// touches network or disk for more than a moment goes through here.
package workers

import (
	"os"
	"runtime"
	"strconv"
	"sync"

	"github.com/retrofe/retrofe/logger"
)

// pool size bounds. the environment variable overrides the sizing but
// not the bounds.
const (
	minWorkers = 2
	maxWorkers = 6

	sizeEnvVar = "RETROFE_WORKERS"
)

// queue depth before Submit blocks.
const queueDepth = 64

// PoolSize returns the number of workers: hardware concurrency clamped
// to [2, 6], overridable with RETROFE_WORKERS.
func PoolSize() int {
	n := runtime.NumCPU()
	if v := os.Getenv(sizeEnvVar); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			n = i
		}
	}
	if n < minWorkers {
		n = minWorkers
	}
	if n > maxWorkers {
		n = maxWorkers
	}
	return n
}

// Pool runs submitted tasks on a fixed set of goroutines.
type Pool struct {
	queue chan func()
	wg    sync.WaitGroup

	crit   sync.Mutex
	closed bool
}

// NewPool is the preferred method of initialisation for the Pool type.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = PoolSize()
	}

	p := &Pool{
		queue: make(chan func(), queueDepth),
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for task := range p.queue {
				task()
			}
		}()
	}

	logger.Logf(logger.Info, "workers", "pool started with %d workers", size)
	return p
}

// Submit queues a task. Returns false if the pool has shut down. Submit
// blocks when the queue is full; only worker-bound code should submit,
// never the frame loop directly.
func (p *Pool) Submit(task func()) bool {
	p.crit.Lock()
	defer p.crit.Unlock()

	if p.closed {
		return false
	}
	p.queue <- task
	return true
}

// Shutdown stops accepting work, drains the queue and joins every
// worker.
func (p *Pool) Shutdown() {
	p.crit.Lock()
	if p.closed {
		p.crit.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.crit.Unlock()

	p.wg.Wait()
	logger.Log(logger.Info, "workers", "pool drained")
}
