// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/platinasystems/tcam/nse"
)

func TestWordsRightAligned(t *testing.T) {
	w := nse.Words([]byte{0x0f, 0x11, 0x22, 0x33, 0x44})
	assert.Equal(t, []uint32{0x0000000f, 0x11223344}, w)
	assert.Equal(t, []byte{0x0f, 0x11, 0x22, 0x33, 0x44}, nse.Bytes(w, 5))
}

func TestLanes(t *testing.T) {
	// 36 bits: 0xa_bcde_f012
	b := []byte{0x0a, 0xbc, 0xde, 0xf0, 0x12}
	w := nse.Lanes(b, 36)
	assert.Equal(t, []uint32{0xabcde >> 2, 0x2f012 & 0x3ffff}, w)
	assert.Equal(t, b, nse.Unlanes(w, 36, 5))
}

func TestPackingRoundTrip(t *testing.T) {
	for w := nse.Width36; w <= nse.Width576; w++ {
		b := fill(w.Bytes(), byte(w))
		b[0] &= byte(0xff >> uint(8*w.Bytes()-w.Bits()))

		words := nse.Words(b)
		assert.Len(t, words, w.Words(), "width %v", w)
		assert.Equal(t, b, nse.Bytes(words, w.Bytes()), "width %v", w)

		lanes := nse.Lanes(b, w.Bits())
		assert.Len(t, lanes, w.Bits()/18, "width %v", w)
		for _, x := range lanes {
			assert.Zero(t, x>>18)
		}
		assert.Equal(t, b, nse.Unlanes(lanes, w.Bits(), w.Bytes()), "width %v", w)
	}
}
