// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package workload

import "math/rand"

// RerunUntilBug calls run with firstSeed, then repeatedly with seeds drawn
// from an auxiliary generator seeded by firstSeed, stopping at the first
// seed for which run
// returns a non-nil error. It returns that seed and error. Used by
// --rerun-until-bug to search for a reproducing seed once a first failure
// is suspected but its seed was not recorded.
func RerunUntilBug(firstSeed int64, run func(seed int64) error) (int64, error) {
	aux := rand.New(rand.NewSource(firstSeed))

	seed := firstSeed
	for {
		if err := run(seed); err != nil {
			return seed, err
		}

		seed = aux.Int63()
	}
}
