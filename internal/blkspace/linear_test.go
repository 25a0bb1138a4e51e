// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blkspace

import "testing"

// TestLinearAllocatorProbesBothHolesBeforeExpanding covers a free list with
// two differently-sized holes, [0,4 blocks) and [10,2 blocks), that
// together exactly cover a 6144-byte request at a 1024-byte block size (6
// blocks needed, 6 blocks free). The hint-driven probe should land on both
// holes in turn and never expand the space.
func TestLinearAllocatorProbesBothHolesBeforeExpanding(t *testing.T) {
	cfg := Config{BlockSize: 1024}
	backend := NewKRAllocator(cfg, false, 1)
	backend.freeList = []Extent{{BlkNr: 0, BlkCnt: 4}, {BlkNr: 10, BlkCnt: 2}}
	backend.globalEndix = 12

	lin := NewLinearAllocator(cfg, backend, 2)

	resp, err := lin.Alloc(AllocRequest{DataSz: 6144, AllowExpand: true})
	if err != nil {
		t.Fatal(err)
	}

	if resp.NotEnoughSpace {
		t.Fatal("unexpected not_enough_space")
	}

	if resp.ExpandBlkSpace != 0 {
		t.Fatalf("expand_blk_space = %d, want 0 (both holes together cover the request)", resp.ExpandBlkSpace)
	}

	if len(resp.Segm.Extents) != 2 {
		t.Fatalf("got %d extents, want 2: %v", len(resp.Segm.Extents), resp.Segm.Extents)
	}

	first, second := resp.Segm.Extents[0], resp.Segm.Extents[1]
	if first.BlkNr != 0 || first.BlkCnt != 4 {
		t.Fatalf("first extent = %v, want [0,4)", first)
	}

	if second.BlkNr != 10 || second.BlkCnt != 2 {
		t.Fatalf("second extent = %v, want [10,12)", second)
	}
}

func TestLinearAllocatorMaxExtentCntForcesExpansionOnLastTry(t *testing.T) {
	cfg := Config{BlockSize: 512}
	backend := NewKRAllocator(cfg, false, 1)
	// A single tiny hole, nowhere near enough to satisfy the request on
	// its own; with max_ext_cnt=1, once the first no-expand probe fails the
	// allocator must take the whole request as its one extent and expand,
	// rather than probe down repeatedly.
	backend.freeList = []Extent{{BlkNr: 0, BlkCnt: 1}}
	backend.globalEndix = 1

	lin := NewLinearAllocator(cfg, backend, 1)

	resp, err := lin.Alloc(AllocRequest{DataSz: 4096, AllowExpand: true})
	if err != nil {
		t.Fatal(err)
	}

	if resp.NotEnoughSpace {
		t.Fatal("unexpected not_enough_space")
	}

	if len(resp.Segm.Extents) != 1 {
		t.Fatalf("got %d extents, want 1 (max_ext_cnt=1): %v", len(resp.Segm.Extents), resp.Segm.Extents)
	}

	if resp.ExpandBlkSpace == 0 {
		t.Fatal("expected expansion since max_ext_cnt=1 forbids probing the small hole separately")
	}
}

func TestLinearAllocatorDelegatesDirectlyBelowBlockSize(t *testing.T) {
	cfg := Config{BlockSize: 512}
	backend := NewMonotonicAllocator(cfg)
	lin := NewLinearAllocator(cfg, backend, 4)

	resp, err := lin.Alloc(AllocRequest{DataSz: 10, AllowExpand: true})
	if err != nil {
		t.Fatal(err)
	}

	if len(resp.Segm.Extents) != 1 {
		t.Fatalf("small request split into %d extents, want 1", len(resp.Segm.Extents))
	}
}
