// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"fmt"
	"io"
)

// RenderObjIDs writes a grid with one cell per block, the block's owning
// obj_id in hex (".... " for a free block), 30 cells per row.
func RenderObjIDs(w io.Writer, space []int64) {
	const width = 30
	fmt.Fprintln(w, "Object IDs map:")

	for i, b := range space {
		if b == 0 {
			fmt.Fprint(w, ".... ")
		} else {
			fmt.Fprintf(w, "%04x ", b)
		}

		if (i+1)%width == 0 {
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintln(w)
}

// RenderObjTypes writes a grid with one cell per block, the owning
// object's type letter doubled and uppercased ("SS", "TT", "XX", "II"; ".."
// for a free block), 60 cells per row.
func RenderObjTypes(w io.Writer, space []int64, objByID map[int64]ObjInfo) {
	const width = 60
	fmt.Fprintln(w, "Object types map:")

	for i, b := range space {
		var cell string
		if b != 0 {
			letter := objByID[b].ObjType.Letter() - ('a' - 'A')
			cell = string([]byte{letter, letter})
		} else {
			cell = ".."
		}

		fmt.Fprint(w, cell+" ")

		if (i+1)%width == 0 {
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintln(w)
}

// RenderPages writes a grid with one cell per block, the owning object's
// page number in hex (".... " for a free block), 30 cells per row.
func RenderPages(w io.Writer, space []int64, objByID map[int64]ObjInfo) {
	const width = 30
	fmt.Fprintln(w, "Pages map:")

	for i, b := range space {
		if b != 0 {
			fmt.Fprintf(w, "%04x ", objByID[b].PageNo)
		} else {
			fmt.Fprint(w, ".... ")
		}

		if (i+1)%width == 0 {
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintln(w)
}
