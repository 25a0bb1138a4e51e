// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

// SimulateDescAlloc simulates packing one descSz-byte descriptor into a
// stream of blkSz-byte blocks, bump-allocator style: it only ever looks at
// the last block's remaining room. If that room is enough, it is consumed
// in place and SimulateDescAlloc returns 0 (no new block needed).
// Otherwise a new block is appended to freeStreamsSpace, recording its
// remaining room after this descriptor, and SimulateDescAlloc returns 1.
//
// This belongs to the fragmentation-study pass, never to the core
// Simulator: descriptor blocks are an accounting device for studying
// overhead, not a placement the allocator family is asked to make.
func SimulateDescAlloc(descSz, blkSz int64, freeStreamsSpace *[]int64) int {
	n := len(*freeStreamsSpace)
	if n > 0 && (*freeStreamsSpace)[n-1] >= descSz {
		(*freeStreamsSpace)[n-1] -= descSz
		return 0
	}

	*freeStreamsSpace = append(*freeStreamsSpace, blkSz-descSz)
	return 1
}
