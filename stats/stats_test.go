// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/eldipa/xoz/ingest"
)

func TestComputeBasicFragmentation(t *testing.T) {
	// space: obj1 over 2 blocks (using 600 of 1024 bytes => 424 wasted),
	// then 2 free blocks.
	space := []int64{1, 1, 0, 0}
	objByID := map[int64]ObjInfo{1: {DataSz: 600, ObjType: ingest.Text, PageNo: 0}}

	s := Compute(space, objByID, 512)

	if s.TotalBlkCnt != 4 {
		t.Fatalf("total_blk_cnt = %d, want 4", s.TotalBlkCnt)
	}

	if s.FreeBlkCnt != 2 || s.FreeBlkAtEndCnt != 2 {
		t.Fatalf("free_blk_cnt=%d free_blk_at_end=%d, want 2/2", s.FreeBlkCnt, s.FreeBlkAtEndCnt)
	}

	if s.MinTheoreticalBlkCnt != 2 {
		t.Fatalf("min_theoretical_blk_cnt = %d, want 2", s.MinTheoreticalBlkCnt)
	}

	wantExternal := 50.0
	if s.ExternalFragPct != wantExternal {
		t.Fatalf("external_frag_pct = %v, want %v", s.ExternalFragPct, wantExternal)
	}

	wantInternal := float64(2*512-600) / 600 * 100
	if s.InternalFragPct != wantInternal {
		t.Fatalf("internal_frag_pct = %v, want %v", s.InternalFragPct, wantInternal)
	}
}

func TestSimulateDescAllocPacksIntoLastBlockThenAppends(t *testing.T) {
	var streams []int64

	if n := SimulateDescAlloc(100, 512, &streams); n != 1 {
		t.Fatalf("first descriptor consumed %d new blocks, want 1", n)
	}
	if len(streams) != 1 || streams[0] != 412 {
		t.Fatalf("streams = %v, want [412]", streams)
	}

	if n := SimulateDescAlloc(100, 512, &streams); n != 0 {
		t.Fatalf("second descriptor consumed %d new blocks, want 0 (fits in remaining room)", n)
	}
	if streams[0] != 312 {
		t.Fatalf("streams[0] = %d, want 312", streams[0])
	}

	if n := SimulateDescAlloc(400, 512, &streams); n != 1 {
		t.Fatalf("oversized descriptor consumed %d new blocks, want 1", n)
	}
	if len(streams) != 2 {
		t.Fatalf("streams = %v, want 2 entries", streams)
	}
}

func TestRenderObjIDsWrapsAtWidth(t *testing.T) {
	space := make([]int64, 31)
	space[0] = 1

	var buf bytes.Buffer
	RenderObjIDs(&buf, space)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// header + 1 full row of 30 + 1 row with the remaining cell
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), buf.String())
	}
}
