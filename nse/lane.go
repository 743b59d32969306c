// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nse

import "github.com/platinasystems/tcam/internal/field"

const laneBits = 18

// Words packs a big-endian value right aligned into 32 bit words, most
// significant word first, so n bytes take ceil(n/4) words.
func Words(b []byte) []uint32 {
	w := make([]uint32, (len(b)+3)/4)
	pad := 4*len(w) - len(b)
	for i, x := range b {
		j := pad + i
		w[j/4] |= uint32(x) << (8 * uint(3-j%4))
	}
	return w
}

// Bytes is the inverse of Words for a value of n bytes.
func Bytes(w []uint32, n int) []byte {
	b := make([]byte, n)
	pad := 4*len(w) - n
	for i := range b {
		j := pad + i
		if j >= 0 && j/4 < len(w) {
			b[i] = byte(w[j/4] >> (8 * uint(3-j%4)))
		}
	}
	return b
}

// Lanes splits the low nBits of a big-endian value into 18 bit lanes, most
// significant lane first, each right aligned in its own word.
func Lanes(b []byte, nBits int) []uint32 {
	n := (nBits + laneBits - 1) / laneBits
	w := make([]uint32, n)
	for i := range w {
		lo := nBits - laneBits*(i+1)
		hi := lo + laneBits - 1
		if lo < 0 {
			lo = 0
		}
		w[i] = uint32(field.Get(b, hi, lo))
	}
	return w
}

// Unlanes is the inverse of Lanes into a value of n bytes.
func Unlanes(w []uint32, nBits, n int) []byte {
	b := make([]byte, n)
	for i := range w {
		lo := nBits - laneBits*(i+1)
		hi := lo + laneBits - 1
		if lo < 0 {
			lo = 0
		}
		field.Set(b, hi, lo, uint64(w[i])&field.Ones(uint(hi-lo+1)))
	}
	return b
}

func payload(b []byte, nBits int, r Region, lane18 bool) []uint32 {
	if lane18 && r.laned() {
		return Lanes(b, nBits)
	}
	return Words(b)
}
