// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_default_options_validate(tst *testing.T) {

	chk.PrintTitle("default options validate clean")

	o := Default()
	if err := o.Validate(); err != nil {
		tst.Fatalf("expected Default() to validate cleanly, got %v", err)
	}
}

// Test_validate_rejects_unsupported_combinations checks each of the
// named fatal configuration errors.
func Test_validate_rejects_unsupported_combinations(tst *testing.T) {

	chk.PrintTitle("config validation rejects bad combinations")

	cases := []struct {
		name string
		mod  func(*Options)
	}{
		{"bad RK order", func(o *Options) { o.RKOrder = 3 }},
		{"bad WENO order", func(o *Options) { o.WENO = true; o.WENOOrder = 5 }},
		{"temporal adaptivity + Hachisuka", func(o *Options) { o.BFTemporalAdaptive = true; o.BFHachisuka = true }},
		{"accumulative without temporal adaptivity", func(o *Options) { o.BFAccumulative = true; o.BFTemporalAdaptive = false }},
		{"bad projection method", func(o *Options) { o.ProjectionMethod = "unknown" }},
		{"non-positive resolution", func(o *Options) { o.ResolutionX = 0 }},
	}

	for _, c := range cases {
		o := Default()
		c.mod(&o)
		if err := o.Validate(); err == nil {
			tst.Errorf("%s: expected a configuration error, got nil", c.name)
		}
	}
}
