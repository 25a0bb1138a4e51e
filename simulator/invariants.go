// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simulator

import (
	"fmt"

	"github.com/eldipa/xoz/internal/blkspace"
)

// InvariantError reports a failed pre/post check: a programming error in
// the allocator stack or the simulator itself, never expected or
// recovered from. It carries enough context to reproduce the failure from
// a bug report.
type InvariantError struct {
	Op          string
	ObjID       int64
	ActionIndex int
	Msg         string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation at action %d (%s, obj %d): %s", e.ActionIndex, e.Op, e.ObjID, e.Msg)
}

// chkSubspace enforces the four invariants required on every store/remove:
// in-bounds extents, block-fill consistency, no overlap within the
// segment, and no neighbor contamination. fillValue is the value every
// block covered by segm is expected to hold (objID for a live check, 0 for
// a freed check).
func (s *Simulator) chkSubspace(segm blkspace.Segment, objID int64, fillValue int64, op string, actionIdx int) error {
	exts := append([]blkspace.Extent(nil), segm.Extents...)
	sortExtentsByBlkNr(exts)

	for i, e := range exts {
		if e.BlkNr < 0 || e.EndIx() > int64(len(s.space)) {
			return &InvariantError{op, objID, actionIdx, fmt.Sprintf("extent %v out of bounds [0,%d)", e, len(s.space))}
		}

		for b := e.BlkNr; b < e.EndIx(); b++ {
			if s.space[b] != fillValue {
				return &InvariantError{op, objID, actionIdx, fmt.Sprintf("block %d holds %d, want %d", b, s.space[b], fillValue)}
			}
		}

		if i > 0 && exts[i-1].EndIx() > e.BlkNr {
			return &InvariantError{op, objID, actionIdx, fmt.Sprintf("extents %v and %v overlap", exts[i-1], e)}
		}
	}

	for i, e := range exts {
		if e.BlkNr > 0 && !sharesEndpoint(exts, i, e.BlkNr) {
			if s.space[e.BlkNr-1] == objID {
				return &InvariantError{op, objID, actionIdx, fmt.Sprintf("block %d before extent %v carries the same obj id", e.BlkNr-1, e)}
			}
		}

		if e.EndIx() < int64(len(s.space)) && !sharesEndpoint(exts, i, e.EndIx()) {
			if s.space[e.EndIx()] == objID {
				return &InvariantError{op, objID, actionIdx, fmt.Sprintf("block %d after extent %v carries the same obj id", e.EndIx(), e)}
			}
		}
	}

	return nil
}

// sharesEndpoint reports whether ix coincides with the BlkNr or EndIx of
// some extent in exts other than exts[self], meaning a neighbor at ix
// belongs to the same segment and is not contamination.
func sharesEndpoint(exts []blkspace.Extent, self int, ix int64) bool {
	for i, e := range exts {
		if i == self {
			continue
		}
		if e.BlkNr == ix || e.EndIx() == ix {
			return true
		}
	}
	return false
}

func sortExtentsByBlkNr(exts []blkspace.Extent) {
	for i := 1; i < len(exts); i++ {
		for j := i; j > 0 && exts[j-1].BlkNr > exts[j].BlkNr; j-- {
			exts[j-1], exts[j] = exts[j], exts[j-1]
		}
	}
}
