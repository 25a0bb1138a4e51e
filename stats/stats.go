// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stats computes fragmentation statistics and renders plain-text
// fragmentation maps from a simulator's final block array and object
// table. It is consumed externally by the evaluation harness, not by the
// core allocator or simulator.
package stats

import "github.com/eldipa/xoz/ingest"

// ObjInfo is the subset of a live object's state the stats package needs:
// enough to report data size, type, and page without importing the
// simulator package.
type ObjInfo struct {
	DataSz  int64
	ObjType ingest.ObjType
	PageNo  int
}

// Stats is a snapshot of fragmentation and sizing figures for one final
// block array.
type Stats struct {
	TotalBlkCnt     int64
	TotalDataSz     int64
	FreeBlkCnt      int64
	FreeBlkAtEndCnt int64

	ExternalFragPct float64 // % of blocks that are free/unused
	InternalFragPct float64 // % of live data reserved but wasted

	MinTheoreticalBlkCnt int64
}

// Compute derives Stats from a final block array and the object-by-id
// table that produced it.
func Compute(space []int64, objByID map[int64]ObjInfo, blockSize int64) Stats {
	var totalDataSz int64
	for _, o := range objByID {
		totalDataSz += o.DataSz
	}

	totalBlkCnt := int64(len(space))

	var nonFreeBlkCnt int64
	for _, b := range space {
		if b != 0 {
			nonFreeBlkCnt++
		}
	}

	freeBlkCnt := totalBlkCnt - nonFreeBlkCnt

	var freeBlkAtEndCnt int64
	for i := len(space) - 1; i >= 0; i-- {
		if space[i] != 0 {
			break
		}
		freeBlkAtEndCnt++
	}

	internalFragSz := nonFreeBlkCnt*blockSize - totalDataSz

	s := Stats{
		TotalBlkCnt:          totalBlkCnt,
		TotalDataSz:          totalDataSz,
		FreeBlkCnt:           freeBlkCnt,
		FreeBlkAtEndCnt:      freeBlkAtEndCnt,
		MinTheoreticalBlkCnt: nonFreeBlkCnt,
	}

	if totalBlkCnt > 0 {
		s.ExternalFragPct = float64(freeBlkCnt) / float64(totalBlkCnt) * 100
	}

	if totalDataSz > 0 {
		s.InternalFragPct = float64(internalFragSz) / float64(totalDataSz) * 100
	}

	return s
}
