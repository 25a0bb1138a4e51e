// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blkspace

// chunkinize partitions origSz into as many chkSz-sized pieces as fit, plus
// one final, smaller piece holding the remainder (if any). chkSz must be > 0.
func chunkinize(origSz, chkSz int64) []int64 {
	if chkSz <= 0 {
		panic("blkspace: chunkinize chkSz must be > 0")
	}

	n := origSz / chkSz
	chunks := make([]int64, 0, n+1)
	for i := int64(0); i < n; i++ {
		chunks = append(chunks, chkSz)
	}

	if remain := origSz % chkSz; remain > 0 {
		chunks = append(chunks, remain)
	}

	return chunks
}
