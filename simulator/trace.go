// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simulator

import (
	"fmt"
	"io"
	"strings"

	"github.com/eldipa/xoz/internal/blkspace"
	"github.com/eldipa/xoz/workload"
)

// traceAlloc emits an "A" line for a successful alloc, an "E" line if the
// backing space had to expand, and one indented sub-trace line per
// allocator-internal event (perfect-fit, split, halving decision, ...).
func (s *Simulator) traceAlloc(act workload.Action, obj *Object, resp blkspace.Response) {
	if s.trace == nil {
		return
	}

	fmt.Fprintf(s.trace, "A obj:%d (pg:%d) %s\n", obj.ObjID, obj.PageNo, renderObjLine(obj.DataSz, obj.Segm))

	if resp.ExpandBlkSpace > 0 {
		fmt.Fprintf(s.trace, "E obj:%d +%d blocks\n", obj.ObjID, resp.ExpandBlkSpace)
	}

	writeSubtraces(s.trace, resp.Traces)
}

// traceDealloc emits a "D" line for a dealloc, and an "R" line if the
// dealloc itself triggered a contraction.
func (s *Simulator) traceDealloc(act workload.Action, obj *Object, resp blkspace.Response) {
	if s.trace == nil {
		return
	}

	fmt.Fprintf(s.trace, "D obj:%d (pg:%d) %s\n", obj.ObjID, obj.PageNo, renderObjLine(obj.DataSz, resp.Segm))
	writeSubtraces(s.trace, resp.Traces)

	if resp.ContractBlkSpace > 0 {
		fmt.Fprintf(s.trace, "R -%d blocks\n", resp.ContractBlkSpace)
	}
}

// traceContract emits an "R" line for a standalone Contract call.
func (s *Simulator) traceContract(resp blkspace.Response) {
	if s.trace == nil {
		return
	}

	fmt.Fprintf(s.trace, "R -%d blocks\n", resp.ContractBlkSpace)
}

func renderObjLine(dataSz int64, segm blkspace.Segment) string {
	kb := float64(dataSz) / 1024
	if len(segm.Extents) == 0 {
		return fmt.Sprintf("%.1fkB", kb)
	}
	return fmt.Sprintf("%.1fkB exts:%d {%s}", kb, len(segm.Extents), renderExtents(segm.Extents))
}

func renderExtents(exts []blkspace.Extent) string {
	parts := make([]string, len(exts))
	for i, e := range exts {
		parts[i] = fmt.Sprintf("%d %d [%d]", e.BlkNr, e.EndIx(), e.BlkCnt)
	}
	return strings.Join(parts, ", ")
}

func writeSubtraces(w io.Writer, traces []blkspace.Trace) {
	for _, tr := range traces {
		parts := make([]string, len(tr))
		for i, tag := range tr {
			parts[i] = fmt.Sprintf("%v", tag)
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(parts, " "))
	}
}
