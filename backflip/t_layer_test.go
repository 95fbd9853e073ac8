// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backflip

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/ryichando/shiokaze/grid"
)

func layerAt(time float64) *Layer {
	return &Layer{Time: time, Dt: 0.01}
}

// Test_deque_register_pops_oldest checks the bounded ring-buffer
// behavior: Register pushes to the front and pops the
// oldest once MaxLayers is exceeded.
func Test_deque_register_pops_oldest(tst *testing.T) {

	chk.PrintTitle("backflip deque pops oldest beyond MaxLayers")

	d := NewDeque(3, 3)
	for t := 0.0; t < 5; t++ {
		d.Register(layerAt(t))
	}
	if d.Len() != 3 {
		tst.Fatalf("expected deque length capped at 3, got %d", d.Len())
	}
	if d.Front().Time != 4 {
		tst.Fatalf("expected newest layer (time=4) at front, got %v", d.Front().Time)
	}
	if d.At(2).Time != 2 {
		tst.Fatalf("expected oldest retained layer (time=2) at back, got %v", d.At(2).Time)
	}
	if d.At(3) != nil {
		tst.Fatalf("expected At(3) to be out of range (nil)")
	}
}

// Test_deque_prunes_velocity_only checks that layers beyond
// MaxVelLayers lose their non-velocity state.
func Test_deque_prunes_velocity_only(tst *testing.T) {

	chk.PrintTitle("backflip deque prunes non-velocity state")

	d := NewDeque(4, 2)
	shape := grid.Shape3{W: 2, H: 2, D: 2}
	dx := 0.5
	for t := 0.0; t < 4; t++ {
		l := layerAt(t)
		l.G = grid.NewMACArray(shape, dx)
		l.Dadded = grid.NewSparseArray(shape)
		d.Register(l)
	}
	if d.At(0).G == nil || d.At(1).G == nil {
		tst.Fatalf("expected the two newest layers to retain G")
	}
	if d.At(2).G != nil || d.At(3).G != nil {
		tst.Fatalf("expected layers beyond MaxVelLayers=2 to have G pruned")
	}
}

// Test_deque_accumulative_sums_gradient checks accumulative mode: a
// newly registered layer's G is the sum of its own and the previous
// front's.
func Test_deque_accumulative_sums_gradient(tst *testing.T) {

	chk.PrintTitle("backflip deque accumulative gradient sum")

	shape := grid.Shape3{W: 1, H: 1, D: 1}
	dx := 1.0

	d := NewDeque(4, 4)
	d.Accumulative = true

	l1 := layerAt(0)
	l1.G = grid.NewMACArray(shape, dx)
	l1.G.Set(0, 0, 0, 0, 2.0)
	d.Register(l1)

	l2 := layerAt(1)
	l2.G = grid.NewMACArray(shape, dx)
	l2.G.Set(0, 0, 0, 0, 3.0)
	d.Register(l2)

	chk.Scalar(tst, "accumulated G", 1e-15, d.Front().G.Get(0, 0, 0, 0), 5.0)
}

func Test_deque_reset_clears(tst *testing.T) {

	chk.PrintTitle("backflip deque reset")

	d := NewDeque(4, 4)
	d.Register(layerAt(0))
	d.Reset()
	if d.Len() != 0 {
		tst.Fatalf("expected Reset to clear the deque, got length %d", d.Len())
	}
	if d.Front() != nil {
		tst.Fatalf("expected Front() to be nil on an empty deque")
	}
}
