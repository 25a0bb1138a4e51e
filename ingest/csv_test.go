// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ingest

import (
	"strings"
	"testing"
)

func TestDecodeRowPerType(t *testing.T) {
	cases := []struct {
		name string
		rec  Record
		want int64
	}{
		{"stroke", Record{Type: 's', CoordsCnt: 10, WidthsCnt: 5}, 60},
		{"text", Record{Type: 't', CharLength: 120}, 120},
		{"image", Record{Type: 'i', CharLength: 133}, 100},
		{"teximage", Record{Type: 'x', CharLength: 133, InlineText: "ab"}, 102},
	}

	for _, c := range cases {
		obj, ok := DecodeRow(1, c.rec)
		if !ok {
			t.Fatalf("%s: expected ok", c.name)
		}

		if obj.DataSz != c.want {
			t.Fatalf("%s: data_sz = %d, want %d", c.name, obj.DataSz, c.want)
		}
	}
}

func TestDecodeRowDiscardsNonPositiveDataSz(t *testing.T) {
	_, ok := DecodeRow(1, Record{Type: 't', CharLength: 0})
	if ok {
		t.Fatal("expected discard for data_sz == 0")
	}

	_, ok = DecodeRow(1, Record{Type: 's', CoordsCnt: 0, WidthsCnt: 0})
	if ok {
		t.Fatal("expected discard for data_sz == 0")
	}
}

func TestDecodeRowUnknownType(t *testing.T) {
	_, ok := DecodeRow(1, Record{Type: 'z', CharLength: 10})
	if ok {
		t.Fatal("expected discard for unknown type")
	}
}

func TestReadCSVFiltersBySampleAndAssignsSequentialIDs(t *testing.T) {
	data := `sample,type,char_length,widths_cnt,coords_cnt,text,page
a,t,100,0,0,,0
b,t,50,0,0,,0
a,s,0,5,10,,1
a,t,0,0,0,,2
`
	objs, err := ReadCSV(strings.NewReader(data), "a")
	if err != nil {
		t.Fatal(err)
	}

	if len(objs) != 2 {
		t.Fatalf("got %d objects, want 2 (sample b excluded, zero-length text discarded): %v", len(objs), objs)
	}

	if objs[0].ObjID != 1 || objs[1].ObjID != 2 {
		t.Fatalf("ids not sequential: %d, %d", objs[0].ObjID, objs[1].ObjID)
	}

	if objs[0].ObjType != Text || objs[0].DataSz != 100 {
		t.Fatalf("first object = %+v, want text/100", objs[0])
	}

	if objs[1].ObjType != Stroke || objs[1].DataSz != 60 {
		t.Fatalf("second object = %+v, want stroke/60", objs[1])
	}
}

func TestReadCSVMissingColumn(t *testing.T) {
	data := "sample,type,char_length\na,t,1\n"
	_, err := ReadCSV(strings.NewReader(data), "a")
	if err == nil {
		t.Fatal("expected error for missing required column")
	}
}
