// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blkspace

import "fmt"

// maxHalvingOrder bounds how many times HalvingAllocator will shrink a
// sub-chunk before giving up and falling back to a last-try, expand-allowed
// request. 31 comes from a machine-word assumption in the source this
// package is derived from; kept as a named constant rather than derived
// from BlockSize since every request this package handles fits comfortably
// under it.
const maxHalvingOrder = 31

// maxExtentSz is the hard cap, in bytes, on a single extent: (BlockSize <<
// 16) - 1. A request larger than this is split by Alloc into multiple
// top-level chunks before halving is ever applied to each of them.
func maxExtentSz(cfg Config) int64 { return (cfg.BlockSize << 16) - 1 }

var _ Allocator = (*HalvingAllocator)(nil)

// HalvingAllocator decorates a backend Allocator, reducing external
// fragmentation from large requests by splitting them into power-of-two
// shrinking chunks that the backend can place into existing holes before
// ever expanding the backing space.
type HalvingAllocator struct {
	cfg     Config
	backend Allocator
}

// NewHalvingAllocator returns a HalvingAllocator wrapping backend.
func NewHalvingAllocator(cfg Config, backend Allocator) *HalvingAllocator {
	return &HalvingAllocator{cfg: cfg, backend: backend}
}

// Alloc implements Allocator.
func (a *HalvingAllocator) Alloc(req AllocRequest) (Response, error) {
	if req.DataSz <= 0 {
		return Response{}, &ErrINVAL{"HalvingAllocator.Alloc", req.DataSz}
	}

	if req.DataSz <= a.cfg.BlockSize {
		resp, err := a.backend.Alloc(req)
		if err != nil {
			return Response{}, err
		}

		return Response{}.Trace("too small, no split").Combine(resp, false), nil
	}

	chunks := chunkinize(req.DataSz, maxExtentSz(a.cfg))

	mainResp := Response{}
	if len(chunks) > 1 {
		mainResp = mainResp.Trace(fmt.Sprintf("too large, forcibly split into %d chks", len(chunks)))
	}

	var halvingOrder int64
	for _, chk := range chunks {
		var err error
		mainResp, halvingOrder, err = a.tryAllocWithoutExpand(mainResp, chk, a.cfg.BlockSize, req.AllowExpand, halvingOrder)
		if err != nil {
			return Response{}, err
		}

		if mainResp.NotEnoughSpace {
			return mainResp, nil
		}
	}

	return mainResp, nil
}

// tryAllocWithoutExpand allocates dataSz bytes by splitting it into chunks
// of half size whenever the backend reports not-enough-space, until
// tooSmallThreshold is reached; at that point it makes one last attempt
// for the whole remainder, with expansion allowed only if reqAllowExpand
// is true. halvingOrder is threaded
// through so later top-level chunks never start at a coarser split than
// earlier ones settled on.
func (a *HalvingAllocator) tryAllocWithoutExpand(mainResp Response, dataSz, tooSmallThreshold int64, reqAllowExpand bool, halvingOrder int64) (Response, int64, error) {
	remain := dataSz

	var chunks []int64
	var lastTry bool
	if (remain >> uint(halvingOrder)) < tooSmallThreshold {
		chunks = []int64{remain}
		lastTry = true
	} else {
		chunks = chunkinize(remain, remain>>uint(halvingOrder))
	}

	for remain > 0 {
		mainResp = mainResp.Trace(fmt.Sprintf("halved %d times: %d chks remain", halvingOrder, len(chunks)))

		restarted := false
		for _, chk := range chunks {
			resp, err := a.backend.Alloc(AllocRequest{DataSz: chk, AllowExpand: lastTry && reqAllowExpand})
			if err != nil {
				return mainResp, halvingOrder, err
			}

			if resp.NotEnoughSpace && !lastTry {
				if (remain>>uint(halvingOrder)) < tooSmallThreshold || halvingOrder == maxHalvingOrder {
					chunks = []int64{remain}
					lastTry = true
				} else {
					halvingOrder++
					chunks = chunkinize(remain, remain>>uint(halvingOrder))
				}

				restarted = true
				break
			}

			mainResp = mainResp.Combine(resp, false)

			if resp.NotEnoughSpace {
				mainResp.NotEnoughSpace = true
				return mainResp, halvingOrder, nil
			}

			remain -= chk
		}

		if !restarted && remain > 0 {
			// Every chunk in this pass succeeded but some remainder is
			// left over only when the chunk list itself didn't cover all
			// of it; chunkinize always covers its input fully, so this
			// can only happen if remain was recomputed concurrently,
			// which tryAllocWithoutExpand never does outside a restart.
			return mainResp, halvingOrder, &ErrILSEQ{"HalvingAllocator.tryAllocWithoutExpand", "chunk accounting left a remainder"}
		}
	}

	return mainResp, halvingOrder, nil
}

// Dealloc implements Allocator; HalvingAllocator has no bookkeeping of its
// own, so it simply forwards to the backend.
func (a *HalvingAllocator) Dealloc(req DeallocRequest) (Response, error) {
	return a.backend.Dealloc(req)
}

// Contract implements Allocator, forwarding to the backend.
func (a *HalvingAllocator) Contract() (Response, error) {
	return a.backend.Contract()
}
