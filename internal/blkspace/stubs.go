// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blkspace

// buddyAllocator, segAllocator and pageAllocator are name-only placeholders
// carried over from the source this package is derived from. None of them
// is wired into cmd/xozsim; they exist only so a future allocator-family
// member has a spot reserved next to the ones that are actually
// implemented.
type buddyAllocator struct{}
type segAllocator struct{}
type pageAllocator struct{}
