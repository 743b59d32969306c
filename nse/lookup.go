// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nse

import "fmt"

const (
	resultHit   = 1 << 30
	resultIndex = MaxAddress
)

// Result of a lookup. A miss is not an error.
type Result struct {
	Hit   bool
	Index uint32
	AD    [4]uint32
}

func (r Result) String() string {
	if !r.Hit {
		return "miss"
	}
	return fmt.Sprintf("hit index 0x%05x ad %08x", r.Index, r.AD)
}

// Lookup matches key against database db through global mask gmr.
func (d *Device) Lookup(db uint8, key []byte, keyBits int, gmr uint8) (r Result, err error) {
	w, err := WidthOf(keyBits)
	if err != nil {
		return
	}
	if err = checkDatabase(db); err != nil {
		return
	}
	if err = checkGMR(gmr); err != nil {
		return
	}
	if len(key) != w.Bytes() {
		err = invalid("%d byte key for %d bits, want %d", len(key), keyBits, w.Bytes())
		return
	}
	c, err := d.config(db)
	if err != nil {
		return
	}
	cmd := Command{
		Instruction: InstrLookup,
		GMR:         gmr,
		Database:    db,
	}
	var w0 [1]uint32
	if err = d.do(cmd, Words(key), w0[:]); err != nil {
		return
	}
	if r.Hit = w0[0]&resultHit != 0; !r.Hit {
		return
	}
	r.decode(w0[0], &c, d.result)
	return
}

// decode maps result words after the first to index and associated data;
// the mapping depends on the return mode and the associated data class.
// Words the mapping does not use are never read.
func (r *Result) decode(w0 uint32, c *Database, next func() uint32) {
	n := c.AD.Words()
	// Return mode only moves the index for 32 and 64 bit associated data.
	// Without associated data there is nothing to put ahead of it, and 128
	// bit data fills the words after the first so the index stays in w0.
	if c.Flags&ReturnMode == 0 || c.AD == ADNone || c.AD == AD128 {
		r.Index = w0 & resultIndex
		for i := 0; i < n; i++ {
			r.AD[i] = next()
		}
		return
	}
	// Associated data first then the index in its own word.
	for i := 0; i < n; i++ {
		r.AD[i] = next()
	}
	r.Index = next() & resultIndex
}
