// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blkspace

import "fmt"

// ErrINVAL reports an invalid argument passed to an Allocator method.
type ErrINVAL struct {
	Src string
	Arg interface{}
}

func (e *ErrINVAL) Error() string {
	return fmt.Sprintf("%s: invalid argument: %#v", e.Src, e.Arg)
}

// ErrILSEQ reports an illegal sequence: a bookkeeping structure (the free
// list, global_endix) found in a state that should be impossible to reach
// without a prior programming error. These are never expected in normal
// operation and are not recovered from.
type ErrILSEQ struct {
	Src string
	Msg string
}

func (e *ErrILSEQ) Error() string {
	return fmt.Sprintf("%s: illegal sequence: %s", e.Src, e.Msg)
}
