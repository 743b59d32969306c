// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nse

// Tracef swaps the transaction trace logger and returns a restore func.
func Tracef(f func(args ...interface{})) (restore func()) {
	save := tracef
	tracef = f
	return func() { tracef = save }
}
