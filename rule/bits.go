// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rule

import "github.com/platinasystems/tcam/internal/field"

// wire accumulates data and mask buffers of one entry.
type wire struct {
	data, mask []byte
	err        error
}

func newWire(n int) *wire {
	w := &wire{data: make([]byte, n), mask: make([]byte, n)}
	for i := range w.mask {
		w.mask[i] = 0xff
	}
	return w
}

// put packs an n bit field at lo after checking both halves fit.
func (w *wire) put(name string, lo int, n uint, d, m uint64) {
	if w.err != nil {
		return
	}
	if !field.Fits(d, n) || !field.Fits(m, n) {
		w.err = invalid("%s: 0x%x/0x%x wider than %d bits", name, d, m, n)
		return
	}
	hi := lo + int(n) - 1
	field.Set(w.data, hi, lo, d)
	field.Set(w.mask, hi, lo, m)
}

func (w *wire) get(lo int, n uint) (d, m uint64) {
	hi := lo + int(n) - 1
	return field.Get(w.data, hi, lo), field.Get(w.mask, hi, lo)
}
