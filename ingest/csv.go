// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Record is one raw row of the object feed, before data_sz derivation.
type Record struct {
	Sample     string
	Type       byte // 's' stroke, 't' text, 'x' tex image, 'i' image
	CharLength int64
	WidthsCnt  int64
	CoordsCnt  int64
	InlineText string
	Page       int
}

// DecodeRow derives an Object's data_sz from a raw Record per the feed's
// per-type formulas, and assigns it id. It reports ok=false for an unknown
// type byte or for a derived data_sz <= 0; such rows must be discarded
// before entering the workload.
func DecodeRow(id int64, rec Record) (obj Object, ok bool) {
	var objType ObjType
	var dataSz int64

	switch rec.Type {
	case 's':
		objType = Stroke
		dataSz = (rec.CoordsCnt + rec.WidthsCnt) * 4
	case 'x':
		objType = TexImage
		dataSz = round133(rec.CharLength) + int64(len(rec.InlineText))
	case 't':
		objType = Text
		dataSz = rec.CharLength
	case 'i':
		objType = Image
		dataSz = round133(rec.CharLength)
	default:
		return Object{}, false
	}

	if dataSz <= 0 {
		return Object{}, false
	}

	return Object{
		ObjID:      id,
		DataSz:     dataSz,
		ObjType:    objType,
		PageNo:     rec.Page,
		DescBaseSz: descBaseSzFor(objType),
	}, true
}

func round133(charLength int64) int64 {
	return int64(math.Round(float64(charLength) / 1.33))
}

// columns is the fixed header of the object feed CSV.
var columns = []string{"sample", "type", "char_length", "widths_cnt", "coords_cnt", "text", "page"}

// ReadCSV reads the object feed from r, keeping only rows whose sample
// column equals sample, deriving each Object's data_sz and assigning
// sequential, 1-based ids in row order. Rows with a derived data_sz <= 0,
// or an unrecognized type, are silently dropped, per the feed's input
// validation rule.
func ReadCSV(r io.Reader, sample string) ([]Object, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: reading header: %w", err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var objs []Object
	var nextID int64 = 1

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: reading row: %w", err)
		}

		if row[idx["sample"]] != sample {
			continue
		}

		rec, err := decodeFields(row, idx)
		if err != nil {
			return nil, err
		}

		obj, ok := DecodeRow(nextID, rec)
		if !ok {
			continue
		}

		objs = append(objs, obj)
		nextID++
	}

	return objs, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(columns))
	for i, h := range header {
		idx[h] = i
	}

	for _, c := range columns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("ingest: missing required column %q", c)
		}
	}

	return idx, nil
}

func decodeFields(row []string, idx map[string]int) (Record, error) {
	typeCol := row[idx["type"]]
	if len(typeCol) != 1 {
		return Record{}, fmt.Errorf("ingest: malformed type column %q", typeCol)
	}

	charLength, err := strconv.ParseInt(row[idx["char_length"]], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("ingest: char_length: %w", err)
	}

	widthsCnt, err := strconv.ParseInt(row[idx["widths_cnt"]], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("ingest: widths_cnt: %w", err)
	}

	coordsCnt, err := strconv.ParseInt(row[idx["coords_cnt"]], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("ingest: coords_cnt: %w", err)
	}

	page, err := strconv.Atoi(row[idx["page"]])
	if err != nil {
		return Record{}, fmt.Errorf("ingest: page: %w", err)
	}

	return Record{
		Sample:     row[idx["sample"]],
		Type:       typeCol[0],
		CharLength: charLength,
		WidthsCnt:  widthsCnt,
		CoordsCnt:  coordsCnt,
		InlineText: row[idx["text"]],
		Page:       page,
	}, nil
}
