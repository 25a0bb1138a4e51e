// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blkspace

import "sort"

var _ Allocator = (*KRAllocator)(nil)

// KRAllocator is a first-fit, K&R-style free-list allocator with optional
// coalescing on dealloc and a minimum-remainder split policy: a hole is
// only split in place if the leftover remainder is at least
// MinFrSplitRemain blocks, so Alloc does not litter the free list with
// holes too small to ever be reused.
type KRAllocator struct {
	cfg Config

	globalEndix int64
	freeList    []Extent

	// Coalescing enables merging adjacent free extents on Dealloc.
	Coalescing bool

	// MinFrSplitRemain is the minimum leftover remainder, in blocks,
	// that Alloc will accept creating when splitting a larger hole.
	// Must be >= 1.
	MinFrSplitRemain int64
}

// Implement sort.Interface so the free list can be sorted in place by
// block number, ascending.
type byBlkNr []Extent

func (s byBlkNr) Len() int           { return len(s) }
func (s byBlkNr) Less(i, j int) bool { return s[i].BlkNr < s[j].BlkNr }
func (s byBlkNr) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// NewKRAllocator returns a KRAllocator. minFrSplitRemain must be >= 1.
func NewKRAllocator(cfg Config, coalescing bool, minFrSplitRemain int64) *KRAllocator {
	if minFrSplitRemain < 1 {
		minFrSplitRemain = 1
	}

	return &KRAllocator{cfg: cfg, Coalescing: coalescing, MinFrSplitRemain: minFrSplitRemain}
}

// GlobalEndix returns the current high-water mark.
func (a *KRAllocator) GlobalEndix() int64 { return a.globalEndix }

// FreeListSnapshot returns a copy of the current free list, in the order
// it is internally kept. It is not necessarily sorted: with Coalescing on,
// Dealloc sorts the list before looking for neighbors, but an extent with
// no free neighbor is then appended at the end.
// Intended for tests and for stats reporting.
func (a *KRAllocator) FreeListSnapshot() []Extent {
	out := make([]Extent, len(a.freeList))
	copy(out, a.freeList)
	return out
}

// Alloc implements Allocator.
func (a *KRAllocator) Alloc(req AllocRequest) (Response, error) {
	if req.DataSz <= 0 {
		return Response{}, &ErrINVAL{"KRAllocator.Alloc", req.DataSz}
	}

	segm := singleExtentSegmentFor(a.cfg, req.DataSz, NoBlock)
	rqBlkCnt := segm.Extents[0].BlkCnt

	var closestFreeBlkCnt int64
	for i, fr := range a.freeList {
		if fr.BlkCnt < 0 || fr.BlkNr < 0 {
			return Response{}, &ErrILSEQ{"KRAllocator.Alloc", "negative free list entry"}
		}

		if fr.BlkCnt == rqBlkCnt {
			a.freeList = append(a.freeList[:i:i], a.freeList[i+1:]...)
			segm.Extents[0].BlkNr = fr.BlkNr

			return Response{
				Segm:                segm,
				ExpectedGlobalEndix: a.globalEndix,
			}.Trace("perfect free used:", fr), nil
		}

		if fr.BlkCnt > rqBlkCnt && fr.BlkCnt-rqBlkCnt >= a.MinFrSplitRemain {
			remain := Extent{BlkNr: fr.BlkNr + rqBlkCnt, BlkCnt: fr.BlkCnt - rqBlkCnt}
			a.freeList[i] = remain
			segm.Extents[0].BlkNr = fr.BlkNr

			return Response{
				Segm:                segm,
				ExpectedGlobalEndix: a.globalEndix,
			}.Trace("split free, remain:", remain), nil
		}

		if fr.BlkCnt < rqBlkCnt && fr.BlkCnt > closestFreeBlkCnt {
			closestFreeBlkCnt = fr.BlkCnt
		}
	}

	if req.AllowExpand {
		segm.Extents[0].BlkNr = a.globalEndix
		a.globalEndix += rqBlkCnt

		return Response{
			Segm:                segm,
			ExpandBlkSpace:      rqBlkCnt,
			ExpectedGlobalEndix: a.globalEndix,
		}, nil
	}

	hint := closestFreeBlkCnt
	if hint < 0 {
		hint = 0
	}

	return Response{
		ExpectedGlobalEndix:   a.globalEndix,
		NotEnoughSpace:        true,
		HintClosestFreeBlkCnt: hint,
	}, nil
}

// Dealloc implements Allocator.
func (a *KRAllocator) Dealloc(req DeallocRequest) (Response, error) {
	resp := Response{Segm: req.Segm, ExpectedGlobalEndix: a.globalEndix}

	for _, ext := range req.Segm.Extents {
		startix, endix := ext.BlkNr, ext.EndIx()

		if !a.Coalescing {
			a.freeList = append(a.freeList, Extent{BlkNr: startix, BlkCnt: ext.BlkCnt})
			resp = resp.Trace("free added:", Extent{BlkNr: startix, BlkCnt: ext.BlkCnt})
			continue
		}

		sort.Sort(byBlkNr(a.freeList))

		var found []Extent
		mergedAt := -1
	scan:
		for i := 0; i < len(a.freeList); i++ {
			fr := a.freeList[i]

			switch {
			case fr.EndIx() == startix:
				// fr ....... startix
				found = append(found, fr)
				a.freeList[i] = Extent{BlkNr: fr.BlkNr, BlkCnt: fr.BlkCnt + ext.BlkCnt}
				mergedAt = i

			case endix == fr.BlkNr:
				// startix ....... fr
				found = append(found, fr)
				if mergedAt >= 0 {
					prev := a.freeList[mergedAt]
					a.freeList[mergedAt] = Extent{BlkNr: prev.BlkNr, BlkCnt: prev.BlkCnt + fr.BlkCnt}
					a.freeList = append(a.freeList[:i:i], a.freeList[i+1:]...)
				} else {
					a.freeList[i] = Extent{BlkNr: startix, BlkCnt: ext.BlkCnt + fr.BlkCnt}
					mergedAt = i
				}
				break scan // no further neighbor possible

			case fr.BlkNr > endix:
				break scan // sorted: nothing further can touch us
			}
		}

		if mergedAt < 0 {
			fr := Extent{BlkNr: startix, BlkCnt: ext.BlkCnt}
			a.freeList = append(a.freeList, fr)
			resp = resp.Trace("free added:", fr)
		} else {
			tags := make([]interface{}, 0, len(found)+1)
			tags = append(tags, "free coalesced:")
			for _, f := range found {
				tags = append(tags, f)
			}
			resp = resp.Trace(tags...)
			resp = resp.Trace("coalesced into:", a.freeList[mergedAt])
		}
	}

	return resp, nil
}

// Contract implements Allocator.
func (a *KRAllocator) Contract() (Response, error) {
	sorted := append([]Extent{}, a.freeList...)
	sort.Sort(sort.Reverse(byBlkNr(sorted)))

	globalEndix := a.globalEndix
	var releasedCnt int
	var releasedBlkCnt int64

	for _, fr := range sorted {
		if fr.EndIx() == globalEndix {
			releasedCnt++
			releasedBlkCnt += fr.BlkCnt
			globalEndix = fr.BlkNr
			continue
		}

		if fr.EndIx() > globalEndix {
			return Response{}, &ErrILSEQ{"KRAllocator.Contract", "free extent extends beyond global_endix"}
		}

		break
	}

	if releasedCnt > 0 {
		released := make(map[Extent]bool, releasedCnt)
		for _, fr := range sorted[:releasedCnt] {
			released[fr] = true
		}

		kept := a.freeList[:0:0]
		for _, fr := range a.freeList {
			if !released[fr] {
				kept = append(kept, fr)
			}
		}
		a.freeList = kept
		a.globalEndix = globalEndix
	}

	return Response{
		ContractBlkSpace:    releasedBlkCnt,
		ExpectedGlobalEndix: a.globalEndix,
	}, nil
}
