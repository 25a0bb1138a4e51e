// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package simulator drives an allocator against a workload action stream,
// maintaining a ground-truth block array and enforcing the invariants that
// must hold after every alloc/dealloc/contract.
package simulator

import (
	"fmt"
	"io"

	"github.com/eldipa/xoz/ingest"
	"github.com/eldipa/xoz/internal/blkspace"
	"github.com/eldipa/xoz/workload"
)

// Object is a live, placed object: the feed descriptor plus the segment
// the allocator placed it in.
type Object struct {
	ingest.Object
	Segm blkspace.Segment
}

// Simulator owns the ground-truth block array exclusively; the allocator
// owns its own free_list/global_endix bookkeeping.
type Simulator struct {
	cfg       blkspace.Config
	allocator blkspace.Allocator

	space   []int64
	objByID map[int64]*Object

	trace     io.Writer
	actionIdx int

	backing *BackingFile
}

// SetBackingFile attaches a BackingFile that every future expand/contract/
// store mirrors to disk. Pass nil to detach. Must be called before Run.
func (s *Simulator) SetBackingFile(b *BackingFile) { s.backing = b }

// New returns a Simulator with an empty block array, driving allocator.
// If trace is non-nil, every action emits a trace line to it (see
// trace.go).
func New(cfg blkspace.Config, allocator blkspace.Allocator, trace io.Writer) *Simulator {
	return &Simulator{
		cfg:       cfg,
		allocator: allocator,
		objByID:   make(map[int64]*Object),
		trace:     trace,
	}
}

// Space returns the current ground-truth block array. The caller must not
// mutate it.
func (s *Simulator) Space() []int64 { return s.space }

// ObjByID returns the current live-object table. The caller must not
// mutate it.
func (s *Simulator) ObjByID() map[int64]*Object { return s.objByID }

// Run drives every action in order against catalog, the object descriptor
// table produced alongside actions by workload.Synthesize. If
// contractAfterDealloc is true, Contract is invoked after every
// successful dealloc. Run returns the first invariant violation as an
// error, stopping immediately; a returned error always has the
// *InvariantError type unless the allocator itself reports an error
// (blkspace.ErrILSEQ or blkspace.ErrINVAL) or a write to an attached
// BackingFile fails.
func (s *Simulator) Run(actions []workload.Action, catalog map[int64]ingest.Object, contractAfterDealloc bool) error {
	for i, act := range actions {
		s.actionIdx = i

		var err error
		if act.IsDelete {
			err = s.dealloc(act, catalog)
			if err == nil && contractAfterDealloc {
				err = s.Contract()
			}
		} else {
			err = s.alloc(act, catalog)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Simulator) alloc(act workload.Action, catalog map[int64]ingest.Object) error {
	obj, ok := catalog[act.ObjID]
	if !ok {
		return &InvariantError{"alloc", act.ObjID, s.actionIdx, "object not found in catalog"}
	}

	if _, live := s.objByID[act.ObjID]; live {
		return &InvariantError{"alloc", act.ObjID, s.actionIdx, "object is already live"}
	}

	resp, err := s.allocator.Alloc(blkspace.AllocRequest{DataSz: obj.DataSz, AllowExpand: true})
	if err != nil {
		return err
	}

	if resp.NotEnoughSpace {
		return &InvariantError{"alloc", act.ObjID, s.actionIdx, "top-level alloc reported not_enough_space with allow_expand=true"}
	}

	if resp.ExpandBlkSpace > 0 {
		s.space = append(s.space, make([]int64, resp.ExpandBlkSpace)...)

		if s.backing != nil {
			if err := s.backing.Grow(int64(len(s.space))); err != nil {
				return err
			}
		}
	}

	if int64(len(s.space)) != resp.ExpectedGlobalEndix {
		return &InvariantError{"alloc", act.ObjID, s.actionIdx,
			fmt.Sprintf("block array length %d != expected_global_endix %d", len(s.space), resp.ExpectedGlobalEndix)}
	}

	live := &Object{Object: obj, Segm: resp.Segm}
	if err := s.store(live); err != nil {
		return err
	}

	if s.backing != nil {
		if err := s.backing.WriteObject(live.Segm, live.ObjID); err != nil {
			return err
		}
	}

	s.traceAlloc(act, live, resp)
	return nil
}

func (s *Simulator) dealloc(act workload.Action, catalog map[int64]ingest.Object) error {
	live, ok := s.objByID[act.ObjID]
	if !ok {
		return &InvariantError{"dealloc", act.ObjID, s.actionIdx, "object not live"}
	}

	resp, err := s.allocator.Dealloc(blkspace.DeallocRequest{Segm: live.Segm})
	if err != nil {
		return err
	}

	if err := s.remove(live); err != nil {
		return err
	}

	if resp.ContractBlkSpace > 0 {
		if err := s.truncate(resp.ContractBlkSpace, "dealloc", act.ObjID); err != nil {
			return err
		}
	}

	if int64(len(s.space)) != resp.ExpectedGlobalEndix {
		return &InvariantError{"dealloc", act.ObjID, s.actionIdx,
			fmt.Sprintf("block array length %d != expected_global_endix %d", len(s.space), resp.ExpectedGlobalEndix)}
	}

	s.traceDealloc(act, live, resp)
	return nil
}

// Contract asks the allocator to release trailing free blocks and
// truncates the block array to match.
func (s *Simulator) Contract() error {
	resp, err := s.allocator.Contract()
	if err != nil {
		return err
	}

	if resp.ContractBlkSpace > 0 {
		if err := s.truncate(resp.ContractBlkSpace, "contract", 0); err != nil {
			return err
		}
		s.traceContract(resp)
	}

	if int64(len(s.space)) != resp.ExpectedGlobalEndix {
		return &InvariantError{"contract", 0, s.actionIdx,
			fmt.Sprintf("block array length %d != expected_global_endix %d", len(s.space), resp.ExpectedGlobalEndix)}
	}

	return nil
}

func (s *Simulator) truncate(n int64, op string, objID int64) error {
	if n > int64(len(s.space)) {
		return &InvariantError{op, objID, s.actionIdx, fmt.Sprintf("contract_blk_space %d exceeds block array length %d", n, len(s.space))}
	}

	tail := s.space[int64(len(s.space))-n:]
	for i, v := range tail {
		if v != 0 {
			return &InvariantError{op, objID, s.actionIdx, fmt.Sprintf("trailing block %d is not free (holds %d)", len(s.space)-len(tail)+i, v)}
		}
	}

	globalEndixAfter := int64(len(s.space)) - n
	s.space = s.space[:globalEndixAfter]

	if s.backing != nil {
		if err := s.backing.ReleaseTail(globalEndixAfter, n); err != nil {
			return err
		}
	}

	return nil
}

// store stamps every block covered by live.Segm with live.ObjID, after
// checking they are all currently free, and records live in the
// object-by-id table.
func (s *Simulator) store(live *Object) error {
	if err := s.chkSubspace(live.Segm, live.ObjID, 0, "store/pre", s.actionIdx); err != nil {
		return err
	}

	for _, e := range live.Segm.Extents {
		for b := e.BlkNr; b < e.EndIx(); b++ {
			s.space[b] = live.ObjID
		}
	}

	if err := s.chkSubspace(live.Segm, live.ObjID, live.ObjID, "store/post", s.actionIdx); err != nil {
		return err
	}

	s.objByID[live.ObjID] = live
	return nil
}

// remove zeroes every block covered by live.Segm, after checking they all
// currently carry live.ObjID, and drops live from the object-by-id table.
func (s *Simulator) remove(live *Object) error {
	if err := s.chkSubspace(live.Segm, live.ObjID, live.ObjID, "remove/pre", s.actionIdx); err != nil {
		return err
	}

	for _, e := range live.Segm.Extents {
		for b := e.BlkNr; b < e.EndIx(); b++ {
			s.space[b] = 0
		}
	}

	if err := s.chkSubspace(live.Segm, live.ObjID, 0, "remove/post", s.actionIdx); err != nil {
		return err
	}

	delete(s.objByID, live.ObjID)
	live.Segm = blkspace.Segment{}
	return nil
}
