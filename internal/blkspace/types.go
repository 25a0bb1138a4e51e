// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package blkspace implements the storage-space allocator family: the
// value types shared by every allocator (Extent, Segment, requests and
// responses) plus the allocator contract itself.
package blkspace

import "github.com/cznic/mathutil"

// NoBlock is the sentinel Extent.BlkNr of a pending extent, one not yet
// placed in the backing space.
const NoBlock = -1

// Config carries the parameters every allocator is constructed with. It
// replaces the ambient BLK_SZ constant of the source this package is
// derived from: nothing in this package refers to a package-level mutable
// global.
type Config struct {
	// BlockSize is the fixed size, in bytes, of every block. Must be > 0.
	BlockSize int64
}

func (c Config) blkCntFor(dataSz int64) int64 {
	q := dataSz / c.BlockSize
	if dataSz%c.BlockSize != 0 {
		q++
	}
	return q
}

// Extent is a contiguous run of blocks, (BlkNr, BlkCnt) with BlkCnt > 0. An
// extent with BlkNr == NoBlock is pending, not yet placed in the backing
// space.
type Extent struct {
	BlkNr  int64
	BlkCnt int64
}

// EndIx returns the index one past the last block of the extent.
func (e Extent) EndIx() int64 { return e.BlkNr + e.BlkCnt }

// Pending reports whether the extent has not yet been placed.
func (e Extent) Pending() bool { return e.BlkNr == NoBlock }

// Segment is the ordered, non-empty list of extents owned by one object.
// Within a segment the extents, sorted by BlkNr, must be pairwise
// non-overlapping: prev.EndIx() <= next.BlkNr.
type Segment struct {
	Extents []Extent
}

// BlkCnt returns the total number of blocks across every extent of the
// segment.
func (s Segment) BlkCnt() int64 {
	var n int64
	for _, e := range s.Extents {
		n += e.BlkCnt
	}
	return n
}

// Pending reports whether every extent of the segment is pending. Segments
// are either fully placed or fully pending, never a mix.
func (s Segment) Pending() bool {
	for _, e := range s.Extents {
		if !e.Pending() {
			return false
		}
	}
	return true
}

// singleExtentSegmentFor builds the pending (or, if blkNr >= 0, placed)
// single-extent segment needed to hold dataSz bytes.
func singleExtentSegmentFor(cfg Config, dataSz int64, blkNr int64) Segment {
	if dataSz <= 0 {
		panic("blkspace: dataSz must be > 0")
	}

	return Segment{Extents: []Extent{{BlkNr: blkNr, BlkCnt: cfg.blkCntFor(dataSz)}}}
}

// AllocRequest is the input to Allocator.Alloc.
type AllocRequest struct {
	DataSz      int64
	AllowExpand bool
}

// DeallocRequest is the input to Allocator.Dealloc.
type DeallocRequest struct {
	Segm Segment
}

// Trace is one opaque, observability-only tag tuple produced by an
// allocator while servicing a request. Trace values are never interpreted
// by the simulator, only rendered (see simulator/trace.go).
type Trace []interface{}

// Response is returned by every Allocator operation. ExpectedGlobalEndix is
// the allocator's post-operation view of the high-water mark; callers
// assert it against their own bookkeeping.
type Response struct {
	Segm                  Segment
	ExpandBlkSpace        int64
	ContractBlkSpace      int64
	ExpectedGlobalEndix   int64
	NotEnoughSpace        bool
	HintClosestFreeBlkCnt int64
	Traces                []Trace
}

// Combine aggregates resp into r's result, per the response combinator in
// the allocator contract: extent lists are concatenated, ExpandBlkSpace /
// ContractBlkSpace / ExpectedGlobalEndix take the max, NotEnoughSpace is
// OR-ed, traces are concatenated. If keepHint is false the combined
// response's hint is cleared (the source's `ignore_hints` flag, made
// explicit instead of mutated in place).
//
// Combine returns a new Response; it never mutates r or resp.
func (r Response) Combine(resp Response, keepHint bool) Response {
	out := Response{
		Segm:                Segment{Extents: append(append([]Extent{}, r.Segm.Extents...), resp.Segm.Extents...)},
		ExpandBlkSpace:      mathutil.MaxInt64(r.ExpandBlkSpace, resp.ExpandBlkSpace),
		ContractBlkSpace:    mathutil.MaxInt64(r.ContractBlkSpace, resp.ContractBlkSpace),
		ExpectedGlobalEndix: mathutil.MaxInt64(r.ExpectedGlobalEndix, resp.ExpectedGlobalEndix),
		NotEnoughSpace:      r.NotEnoughSpace || resp.NotEnoughSpace,
		Traces:              append(append([]Trace{}, r.Traces...), resp.Traces...),
	}

	if keepHint {
		out.HintClosestFreeBlkCnt = resp.HintClosestFreeBlkCnt
		if r.HintClosestFreeBlkCnt > out.HintClosestFreeBlkCnt {
			out.HintClosestFreeBlkCnt = r.HintClosestFreeBlkCnt
		}
	}

	return out
}

// Trace appends one tag tuple to the response's trace list and returns the
// updated response. A no-op when tags is empty.
func (r Response) Trace(tags ...interface{}) Response {
	if len(tags) == 0 {
		return r
	}

	r.Traces = append(r.Traces, Trace(tags))
	return r
}

// Allocator is the uniform contract every allocator family member
// implements. The error return is reserved for internal invariant
// violations (programming errors); expected failure to place a request is
// reported through Response.NotEnoughSpace, never through error.
type Allocator interface {
	Alloc(req AllocRequest) (Response, error)
	Dealloc(req DeallocRequest) (Response, error)
	Contract() (Response, error)
}
