// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/cpmech/gosl/chk"
)

// Test_foreach_visits_every_index checks that ForEach visits every
// index in [0,size) exactly once, both in forced-single-thread mode
// and with the default parallel dispatch.
func Test_foreach_visits_every_index(tst *testing.T) {

	chk.PrintTitle("parallel ForEach visits every index once")

	const size = 997 // deliberately not a multiple of any small thread count
	for _, single := range []bool{true, false} {
		d := NewDriver()
		d.SetForceSingleThread(single)

		var counts [size]int32
		d.ForEachSimple(size, func(n int) {
			atomic.AddInt32(&counts[n], 1)
		})
		for n, c := range counts {
			if c != 1 {
				tst.Fatalf("single=%v: index %d visited %d times, expected exactly once", single, n, c)
			}
		}
	}
}

// Test_foreach_empty_range_is_noop checks that a non-positive size
// dispatches no work.
func Test_foreach_empty_range_is_noop(tst *testing.T) {

	chk.PrintTitle("parallel ForEach empty range")

	d := NewDriver()
	called := false
	d.ForEachSimple(0, func(n int) { called = true })
	if called {
		tst.Fatalf("expected ForEach(0, ...) to call fn zero times")
	}
}

// Test_run_executes_every_function checks Run's heterogeneous
// dispatch, in both single-threaded and parallel modes.
func Test_run_executes_every_function(tst *testing.T) {

	chk.PrintTitle("parallel Run executes every function")

	for _, single := range []bool{true, false} {
		d := NewDriver()
		d.SetForceSingleThread(single)

		var a, b, c int32
		d.Run(
			func() { atomic.AddInt32(&a, 1) },
			func() { atomic.AddInt32(&b, 1) },
			func() { atomic.AddInt32(&c, 1) },
		)
		if a != 1 || b != 1 || c != 1 {
			tst.Fatalf("single=%v: expected each function to run exactly once, got a=%d b=%d c=%d", single, a, b, c)
		}
	}
}

// Test_maximal_threads_clamped checks that SetMaximalThreads
// clamps to at least 1.
func Test_maximal_threads_clamped(tst *testing.T) {

	chk.PrintTitle("parallel Driver.SetMaximalThreads clamps to >=1")

	d := NewDriver()
	d.SetMaximalThreads(0)
	if d.MaximalThreads() != 1 {
		tst.Fatalf("expected SetMaximalThreads(0) to clamp to 1, got %d", d.MaximalThreads())
	}
	d.SetMaximalThreads(-5)
	if d.MaximalThreads() != 1 {
		tst.Fatalf("expected SetMaximalThreads(-5) to clamp to 1, got %d", d.MaximalThreads())
	}
}
