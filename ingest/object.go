// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ingest decodes the object feed consumed by the workload
// synthesizer and the simulator: one record per user-visible object
// (stroke, text, tex image, or raster image), with the per-type data_sz
// derivation the core allocator needs but does not itself compute.
package ingest

import "fmt"

// ObjType is the kind of a user-visible object.
type ObjType int

const (
	Stroke ObjType = iota
	Text
	TexImage
	Image
)

// Letter returns the single-character code the object feed uses for this
// type ('s', 't', 'x', 'i').
func (t ObjType) Letter() byte {
	switch t {
	case Stroke:
		return 's'
	case Text:
		return 't'
	case TexImage:
		return 'x'
	case Image:
		return 'i'
	default:
		return '?'
	}
}

func (t ObjType) String() string {
	switch t {
	case Stroke:
		return "stroke"
	case Text:
		return "text"
	case TexImage:
		return "teximage"
	case Image:
		return "image"
	default:
		return fmt.Sprintf("ObjType(%d)", int(t))
	}
}

// descBaseSzFor returns the small, fixed per-type descriptor size recorded
// alongside each object as Object.DescBaseSz. Neither the core allocator
// nor the stats package reads it; it is carried for callers that account
// for descriptor-block overhead (see stats.SimulateDescAlloc).
func descBaseSzFor(t ObjType) int64 {
	switch t {
	case Stroke:
		return 22
	case TexImage:
		return 18
	case Text:
		return 26
	case Image:
		return 18
	default:
		return 0
	}
}

// Object is a user-visible datum as the workload synthesizer and simulator
// see it before it has been placed: {ObjID, DataSz, ObjType, PageNo}. It
// carries no segment; a pending object is represented by its absence from
// a live-object table, not by a field on Object itself.
type Object struct {
	ObjID      int64
	DataSz     int64
	ObjType    ObjType
	PageNo     int
	DescBaseSz int64
}
