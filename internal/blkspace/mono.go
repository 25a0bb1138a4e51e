// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blkspace

var _ Allocator = (*MonotonicAllocator)(nil)

// MonotonicAllocator is an append-only allocator: it never reuses space.
// Alloc always grows the backing space, Dealloc is a no-op, Contract always
// reports nothing to release. It exists as the cheapest possible baseline
// to compare the other allocators against.
type MonotonicAllocator struct {
	cfg         Config
	globalEndix int64
}

// NewMonotonicAllocator returns a MonotonicAllocator starting at
// global_endix == 0.
func NewMonotonicAllocator(cfg Config) *MonotonicAllocator {
	return &MonotonicAllocator{cfg: cfg}
}

// GlobalEndix returns the current high-water mark.
func (a *MonotonicAllocator) GlobalEndix() int64 { return a.globalEndix }

// Alloc implements Allocator. It fails only when req.AllowExpand is false,
// which makes little sense for a monotonic allocator but is honored
// faithfully.
func (a *MonotonicAllocator) Alloc(req AllocRequest) (Response, error) {
	if req.DataSz <= 0 {
		return Response{}, &ErrINVAL{"MonotonicAllocator.Alloc", req.DataSz}
	}

	if !req.AllowExpand {
		return Response{
			ExpectedGlobalEndix: a.globalEndix,
			NotEnoughSpace:      true,
		}, nil
	}

	blkNr := a.globalEndix
	segm := singleExtentSegmentFor(a.cfg, req.DataSz, blkNr)
	n := segm.Extents[0].BlkCnt
	a.globalEndix += n

	return Response{
		Segm:                segm,
		ExpandBlkSpace:      n,
		ExpectedGlobalEndix: a.globalEndix,
	}, nil
}

// Dealloc implements Allocator. A monotonic allocator never reuses space,
// so this only echoes the global_endix back.
func (a *MonotonicAllocator) Dealloc(req DeallocRequest) (Response, error) {
	return Response{
		Segm:                req.Segm,
		ExpectedGlobalEndix: a.globalEndix,
	}, nil
}

// Contract implements Allocator. Always a no-op: a monotonic allocator
// never has trailing free space to give back.
func (a *MonotonicAllocator) Contract() (Response, error) {
	return Response{ExpectedGlobalEndix: a.globalEndix}, nil
}
