// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simulator

import (
	"os"
	"testing"

	"github.com/eldipa/xoz/internal/blkspace"
)

func TestBackingFileGrowTracksBlockCount(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "backing-*.bin")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	cfg := blkspace.Config{BlockSize: 512}
	b, err := NewBackingFile(f, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if err := b.Grow(4); err != nil {
		t.Fatal(err)
	}

	fi, err := f.Stat()
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != 4*512 {
		t.Fatalf("file size = %d, want %d", fi.Size(), 4*512)
	}
}

func TestBackingFileReleaseTailTruncates(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "backing-*.bin")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	cfg := blkspace.Config{BlockSize: 512}
	b, err := NewBackingFile(f, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if err := b.Grow(4); err != nil {
		t.Fatal(err)
	}
	if err := b.ReleaseTail(2, 2); err != nil {
		t.Fatal(err)
	}

	fi, err := f.Stat()
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != 2*512 {
		t.Fatalf("file size after release = %d, want %d", fi.Size(), 2*512)
	}
}
