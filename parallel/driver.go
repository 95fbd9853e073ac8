// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package parallel implements the worker-pool dispatch used by the
// simulation core: Driver.ForEach(n, fn) and Driver.Run(fns...), both
// synchronous barriers (joins), sized by MaximalThreads.
package parallel

import (
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Driver dispatches work over a bounded set of goroutines. Parallelism
// state is per-Driver rather than a package global: tests and signal
// handlers call SetForceSingleThread on the Driver they hold.
type Driver struct {
	maximalThreads int32
	forceSingle    atomic.Bool
}

// NewDriver returns a Driver sized to runtime.GOMAXPROCS(0), or to the
// SHIOKAZE_MAX_THREADS environment variable when set.
func NewDriver() *Driver {
	n := runtime.GOMAXPROCS(0)
	if s := os.Getenv("SHIOKAZE_MAX_THREADS"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			n = v
		}
	}
	d := &Driver{}
	d.SetMaximalThreads(n)
	return d
}

// MaximalThreads returns the current worker cap
func (d *Driver) MaximalThreads() int { return int(atomic.LoadInt32(&d.maximalThreads)) }

// SetMaximalThreads sets the worker cap; must be >=1
func (d *Driver) SetMaximalThreads(n int) {
	if n < 1 {
		n = 1
	}
	atomic.StoreInt32(&d.maximalThreads, int32(n))
}

// SetForceSingleThread disables all parallel dispatch when on,
// collapsing ForEach/Run to a plain sequential loop; used by tests and
// by code that must not spawn goroutines (e.g. inside a signal handler).
func (d *Driver) SetForceSingleThread(on bool) { d.forceSingle.Store(on) }

// ForceSingleThread reports the current single-thread override
func (d *Driver) ForceSingleThread() bool { return d.forceSingle.Load() }

// ForEach dispatches fn(n, threadIndex) over the half-open range
// [0,size) and blocks until every call has returned. Writes inside
// fn to distinct indices must not alias; ForEach itself only guarantees
// that every index in [0,size) is visited exactly once, not in what
// order. It is safe to call ForEach from inside a function already
// running on this Driver's pool (e.g. the redistancer's per-pass inner
// loop called from inside projection's outer loop): the strided
// dispatch below spawns plain goroutines rather than routing through a
// fixed-size worker queue, so nested calls never block waiting for a
// worker slot that nesting itself is holding.
func (d *Driver) ForEach(size int, fn func(n, threadIndex int)) {
	if size <= 0 {
		return
	}
	numThreads := d.MaximalThreads()
	if d.forceSingle.Load() || numThreads <= 1 || size < numThreads {
		if numThreads <= 1 || d.forceSingle.Load() {
			for n := 0; n < size; n++ {
				fn(n, 0)
			}
			return
		}
		numThreads = size
	}
	var wg sync.WaitGroup
	wg.Add(numThreads)
	for t := 0; t < numThreads; t++ {
		go func(tid int) {
			defer wg.Done()
			for n := tid; n < size; n += numThreads {
				fn(n, tid)
			}
		}(t)
	}
	wg.Wait()
}

// ForEachSimple is ForEach without the thread-index parameter, for
// callers with no per-thread scratch.
func (d *Driver) ForEachSimple(size int, fn func(n int)) {
	d.ForEach(size, func(n, _ int) { fn(n) })
}

// Run executes every function in fns concurrently and blocks until all
// have returned. Unlike ForEach, the
// functions in fns are heterogeneous, so Run is backed by errgroup
// rather than a strided index split.
func (d *Driver) Run(fns ...func()) {
	if d.forceSingle.Load() || d.MaximalThreads() <= 1 {
		for _, f := range fns {
			f()
		}
		return
	}
	var g errgroup.Group
	for _, f := range fns {
		fn := f
		g.Go(func() error {
			fn()
			return nil
		})
	}
	_ = g.Wait()
}
