// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simulator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/eldipa/xoz/ingest"
	"github.com/eldipa/xoz/internal/blkspace"
	"github.com/eldipa/xoz/workload"
)

func TestTraceDeallocLineCarriesFreedExtents(t *testing.T) {
	cfg := blkspace.Config{BlockSize: 512}
	var buf bytes.Buffer
	sim := New(cfg, blkspace.NewKRAllocator(cfg, false, 1), &buf)

	catalog := map[int64]ingest.Object{1: obj(1, 1024)}
	actions := []workload.Action{{ObjID: 1}, {ObjID: 1, IsDelete: true}}

	if err := sim.Run(actions, catalog, false); err != nil {
		t.Fatal(err)
	}

	var dLine string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "D ") {
			dLine = line
			break
		}
	}

	if dLine == "" {
		t.Fatalf("no D line found in trace:\n%s", buf.String())
	}
	if !strings.Contains(dLine, "exts:1") || !strings.Contains(dLine, "0 2 [2]") {
		t.Fatalf("D line does not carry the freed extent: %q", dLine)
	}
}
