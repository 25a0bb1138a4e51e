// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blkspace

import "fmt"

var _ Allocator = (*LinearAllocator)(nil)

// LinearAllocator decorates a backend Allocator the same way HalvingAllocator
// does, but instead of halving a failed request it linearly probes sizes
// using the backend's hint_closest_free_blk_cnt, trading a little latency
// for near-optimal hole reuse, capped by MaxExtentCnt so a request never
// fragments into an unbounded number of extents.
type LinearAllocator struct {
	cfg          Config
	backend      Allocator
	MaxExtentCnt int64
}

// NewLinearAllocator returns a LinearAllocator wrapping backend. maxExtentCnt
// must be >= 1.
func NewLinearAllocator(cfg Config, backend Allocator, maxExtentCnt int64) *LinearAllocator {
	if maxExtentCnt < 1 {
		maxExtentCnt = 1
	}

	return &LinearAllocator{cfg: cfg, backend: backend, MaxExtentCnt: maxExtentCnt}
}

// Alloc implements Allocator.
func (a *LinearAllocator) Alloc(req AllocRequest) (Response, error) {
	if req.DataSz <= 0 {
		return Response{}, &ErrINVAL{"LinearAllocator.Alloc", req.DataSz}
	}

	if req.DataSz <= a.cfg.BlockSize {
		return a.backend.Alloc(req)
	}

	chunks := chunkinize(req.DataSz, maxExtentSz(a.cfg))

	mainResp := Response{}
	if len(chunks) > 1 {
		mainResp = mainResp.Trace(fmt.Sprintf("too large, forcibly split into %d chks", len(chunks)))
	}

	var probeSz, extCnt int64
	for i, chk := range chunks {
		if i == 0 {
			probeSz = chk
		}

		resp, newProbeSz, newExtCnt, err := a.allocChunkLinear(chk, probeSz, extCnt, req.AllowExpand)
		if err != nil {
			return Response{}, err
		}

		mainResp = mainResp.Combine(resp, false)
		probeSz, extCnt = newProbeSz, newExtCnt

		if resp.NotEnoughSpace {
			mainResp.NotEnoughSpace = true
			return mainResp, nil
		}
	}

	return mainResp, nil
}

// allocChunkLinear places remain bytes of one chunk, probing sizes starting
// at probeSz (inherited across chunks) and returning the probe size and
// extent count the next chunk should continue from.
func (a *LinearAllocator) allocChunkLinear(remain, probeSz, extCnt int64, reqAllowExpand bool) (Response, int64, int64, error) {
	mainResp := Response{}
	tooSmallThreshold := a.cfg.BlockSize

	for remain > 0 {
		if probeSz > remain {
			probeSz = remain
		}

		lastTry := extCnt >= a.MaxExtentCnt
		if lastTry {
			probeSz = remain
		}

		resp, err := a.backend.Alloc(AllocRequest{DataSz: probeSz, AllowExpand: lastTry && reqAllowExpand})
		if err != nil {
			return mainResp, probeSz, extCnt, err
		}

		if resp.NotEnoughSpace && !lastTry {
			if resp.HintClosestFreeBlkCnt > 0 {
				probeSz = resp.HintClosestFreeBlkCnt * a.cfg.BlockSize
			} else {
				// TODO: no hint means the backend has no free extent
				// smaller than the request; the decrement step here
				// (half a block) is a conservative placeholder pending
				// a better probe-shrink policy.
				probeSz -= a.cfg.BlockSize / 2
			}

			if probeSz < tooSmallThreshold || (remain/probeSz)+extCnt >= a.MaxExtentCnt {
				// Subdividing further would blow the extent-count budget
				// (or the hole is too small to bother with): give up
				// probing and let the next pass take the whole remainder
				// as the final extent, forcing lastTry so it may expand.
				probeSz = remain
				extCnt = a.MaxExtentCnt
			}

			continue
		}

		mainResp = mainResp.Combine(resp, true)

		if resp.NotEnoughSpace {
			mainResp.NotEnoughSpace = true
			return mainResp, probeSz, extCnt, nil
		}

		remain -= probeSz
		extCnt++
	}

	return mainResp, probeSz, extCnt, nil
}

// Dealloc implements Allocator, forwarding to the backend.
func (a *LinearAllocator) Dealloc(req DeallocRequest) (Response, error) {
	return a.backend.Dealloc(req)
}

// Contract implements Allocator, forwarding to the backend.
func (a *LinearAllocator) Contract() (Response, error) {
	return a.backend.Contract()
}
