// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

// cellState is the per-element state of a SparseArray: off (background),
// active (has a meaningful value), or active+filled (background value
// inferred by flood fill rather than explicitly set).
type cellState uint8

const (
	stateOff cellState = iota
	stateActive
	stateFilled
)

// SparseArray is a dense-shaped container over a Shape3 in which each
// element is either off or active (optionally filled by flood fill).
type SparseArray struct {
	shape  Shape3
	values []float64
	states []cellState

	// LevelSet marks this array as carrying a level-set half-width: a
	// value is only considered "on band" (see InBand) when |value| <=
	// W*dx. A half-width of zero disables the band test (every active
	// value is considered on-band), which is the default for non
	// level-set sparse arrays.
	LevelSet bool
	W        float64
	Dx       float64
}

// NewSparseArray allocates an all-off array over shape
func NewSparseArray(shape Shape3) *SparseArray {
	n := shape.Count()
	return &SparseArray{
		shape:  shape,
		values: make([]float64, n),
		states: make([]cellState, n),
	}
}

// NewLevelSetArray allocates an all-off level-set array with half-width w
func NewLevelSetArray(shape Shape3, w, dx float64) *SparseArray {
	a := NewSparseArray(shape)
	a.LevelSet = true
	a.W = w
	a.Dx = dx
	return a
}

// Shape returns the array's shape
func (a *SparseArray) Shape() Shape3 { return a.shape }

// Set activates (i,j,k) with the given value
func (a *SparseArray) Set(i, j, k int, value float64) {
	n := a.shape.Index(i, j, k)
	a.values[n] = value
	a.states[n] = stateActive
}

// SetOff deactivates (i,j,k)
func (a *SparseArray) SetOff(i, j, k int) {
	n := a.shape.Index(i, j, k)
	a.values[n] = 0
	a.states[n] = stateOff
}

// Active reports whether (i,j,k) is active (explicitly set or filled)
func (a *SparseArray) Active(i, j, k int) bool {
	if !a.shape.Inside(i, j, k) {
		return false
	}
	return a.states[a.shape.Index(i, j, k)] != stateOff
}

// Get returns the value at (i,j,k); zero if off or out of range.
func (a *SparseArray) Get(i, j, k int) float64 {
	if !a.shape.Inside(i, j, k) {
		return 0
	}
	return a.values[a.shape.Index(i, j, k)]
}

// InBand reports whether the value at an active (i,j,k) lies within the
// level-set half-width (|value| <= W*dx); always true for non level-set
// arrays.
func (a *SparseArray) InBand(i, j, k int) bool {
	if !a.Active(i, j, k) {
		return false
	}
	if !a.LevelSet || a.W <= 0 {
		return true
	}
	v := a.Get(i, j, k)
	if v < 0 {
		v = -v
	}
	return v <= a.W*a.Dx
}

// ParallelActives visits every active cell, calling fn(i,j,k,value).
// Iteration order is unspecified; the sequential form here is safe to
// call from within an outer parallel.Driver dispatch without
// re-entrant pool usage.
func (a *SparseArray) ParallelActives(fn func(i, j, k int, value float64)) {
	for n, st := range a.states {
		if st == stateOff {
			continue
		}
		i, j, k := a.shape.Coord(n)
		fn(i, j, k, a.values[n])
	}
}

// face3Neighbors are the 6 face-adjacent offsets in 3D
var face3Neighbors = [6][3]int{
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}

// Dilate grows the active set by one ring: for every off neighbor of an
// active cell, fn is invoked with the off cell's index and the active
// neighbor's value; fn may call Set to activate it. Dilation reads the
// active set as it stood at the start of the call (new activations
// never themselves dilate further within the same call).
func (a *SparseArray) Dilate(fn func(i, j, k int, neighborValue float64) (value float64, activate bool)) {
	toActivate := make(map[int][3]int)
	toValue := make(map[int]float64)
	for n, st := range a.states {
		if st == stateOff {
			continue
		}
		i, j, k := a.shape.Coord(n)
		v := a.values[n]
		for _, off := range face3Neighbors {
			ni, nj, nk := i+off[0], j+off[1], k+off[2]
			if !a.shape.Inside(ni, nj, nk) {
				continue
			}
			nn := a.shape.Index(ni, nj, nk)
			if a.states[nn] != stateOff {
				continue
			}
			if _, already := toActivate[nn]; already {
				continue
			}
			newVal, activate := fn(ni, nj, nk, v)
			if activate {
				toActivate[nn] = [3]int{ni, nj, nk}
				toValue[nn] = newVal
			}
		}
	}
	for n, idx := range toActivate {
		a.Set(idx[0], idx[1], idx[2], toValue[n])
	}
}

// DilateN applies Dilate repeatedly n times (used by mark_narrowband's
// "dilate by w-1" requirement).
func (a *SparseArray) DilateN(n int, fn func(i, j, k int, neighborValue float64) (value float64, activate bool)) {
	for p := 0; p < n; p++ {
		a.Dilate(fn)
	}
}

// FloodFill propagates a sign convention into the off region.
// Starting from the set of explicitly active cells (the narrow band),
// every connected component of off cells is marked active and filled
// with insideValue or outsideValue according to the sign of the band
// values it borders: a component walled off by negative band cells is
// interior fluid, one bordered by positive band cells is outside air.
// Components bordering both signs (a band thinner than one cell's
// reach) take the majority sign of their border.
func (a *SparseArray) FloodFill(insideValue, outsideValue float64) {
	n := a.shape.Count()
	visited := make([]bool, n)
	for idx, st := range a.states {
		if st != stateOff {
			visited[idx] = true
		}
	}
	queue := make([]int, 0, n)
	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		component := []int{start}
		visited[start] = true
		queue = append(queue[:0], start)
		signVote := 0
		for len(queue) > 0 {
			cur := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			i, j, k := a.shape.Coord(cur)
			for _, off := range face3Neighbors {
				ni, nj, nk := i+off[0], j+off[1], k+off[2]
				if !a.shape.Inside(ni, nj, nk) {
					continue
				}
				nn := a.shape.Index(ni, nj, nk)
				if a.states[nn] != stateOff {
					if a.values[nn] < 0 {
						signVote--
					} else {
						signVote++
					}
					continue
				}
				if visited[nn] {
					continue
				}
				visited[nn] = true
				component = append(component, nn)
				queue = append(queue, nn)
			}
		}
		value := insideValue
		if signVote >= 0 {
			value = outsideValue
		}
		for _, idx := range component {
			a.values[idx] = value
			a.states[idx] = stateFilled
		}
	}
}

// ActivateAs copies the active pattern (not the values) of other into a,
// optionally shifted by offset (e.g. activating a face array from its
// owning cell array). Cells outside a's shape are ignored.
func (a *SparseArray) ActivateAs(other *SparseArray, offset [3]int) {
	other.ParallelActives(func(i, j, k int, _ float64) {
		ti, tj, tk := i+offset[0], j+offset[1], k+offset[2]
		if !a.shape.Inside(ti, tj, tk) {
			return
		}
		n := a.shape.Index(ti, tj, tk)
		if a.states[n] == stateOff {
			a.states[n] = stateActive
		}
	})
}
