// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simulator

import (
	"os"

	"github.com/cznic/fileutil"
	"github.com/cznic/mathutil"

	"github.com/eldipa/xoz/internal/blkspace"
)

// BackingFile mirrors the ground-truth block array onto a real os.File, so
// a run can be inspected on disk after the fact. It does not implement
// structural consistency on crash (no BeginUpdate/EndUpdate transaction
// wrapping): it is intended for temporary, working data sets, same as the
// teacher's plain os.File-backed Filer it is adapted from.
type BackingFile struct {
	file *os.File
	cfg  blkspace.Config
	size int64
}

// NewBackingFile returns a BackingFile writing block contents to f, whose
// current size is taken as the starting point.
func NewBackingFile(f *os.File, cfg blkspace.Config) (*BackingFile, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	return &BackingFile{file: f, cfg: cfg, size: fi.Size()}, nil
}

// Grow extends the file so it covers blkCnt blocks, zero-filling the new
// region implicitly (os.File.Truncate extends with zero bytes).
func (b *BackingFile) Grow(blkCnt int64) error {
	want := blkCnt * b.cfg.BlockSize
	b.size = mathutil.MaxInt64(b.size, want)
	return b.file.Truncate(b.size)
}

// ReleaseTail punches a hole over the trailing blkCnt blocks (the ones a
// Contract call just dropped from the ground-truth array) and truncates
// the file to match, so on-disk size tracks the allocator's global_endix.
func (b *BackingFile) ReleaseTail(globalEndixAfter, blkCnt int64) error {
	if blkCnt <= 0 {
		return nil
	}

	off := globalEndixAfter * b.cfg.BlockSize
	size := blkCnt * b.cfg.BlockSize

	if err := fileutil.PunchHole(b.file, off, size); err != nil {
		return err
	}

	b.size = off
	return b.file.Truncate(b.size)
}

// Close closes the underlying file.
func (b *BackingFile) Close() error { return b.file.Close() }

// WriteObject writes objID as 8 little-endian bytes at the start of every
// block of segm, so the on-disk image visibly reflects ownership the same
// way space[] does. The rest of each block is left untouched: the file is
// a debugging mirror, not a content store (content storage is out of scope
// for this allocator).
func (b *BackingFile) WriteObject(segm blkspace.Segment, objID int64) error {
	stamp := []byte{byte(objID), byte(objID >> 8), byte(objID >> 16), byte(objID >> 24),
		byte(objID >> 32), byte(objID >> 40), byte(objID >> 48), byte(objID >> 56)}

	for _, e := range segm.Extents {
		for blk := e.BlkNr; blk < e.EndIx(); blk++ {
			if _, err := b.file.WriteAt(stamp, blk*b.cfg.BlockSize); err != nil {
				return err
			}
		}
	}

	return nil
}
