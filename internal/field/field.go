// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package field packs and unpacks bit fields of big-endian wire buffers.
//
// Bit 0 is the least significant bit of the last byte so a buffer of n bytes
// holds bits 0 through 8n-1 with the most significant bit first.
package field

import "fmt"

func index(b []byte, i int) (int, uint) {
	return len(b) - 1 - i/8, uint(i % 8)
}

func Get1(b []byte, lo int) bool {
	i, s := index(b, lo)
	return b[i]&(1<<s) != 0
}

func Set1(b []byte, lo int, v bool) {
	i, s := index(b, lo)
	if v {
		b[i] |= 1 << s
	} else {
		b[i] &^= 1 << s
	}
}

// Get or Set bits lo <= i <= hi, so hi - lo + 1 bits total.
func GetSet(v *uint64, b []byte, hi, lo int, isSet bool) int {
	nBits := 1 + uint(hi-lo)
	if nBits > 64 {
		panic(fmt.Errorf("more than 64 bits"))
	}
	if hi >= 8*len(b) || lo < 0 {
		panic(fmt.Errorf("bits [%d:%d] outside %d byte buffer", hi, lo, len(b)))
	}
	r := uint64(0)
	if isSet {
		r = *v
	}
	nDone := uint(0)
	for i := lo; nDone < nBits; {
		i0, i1 := index(b, i)
		m := 8 - i1
		if m > nBits-nDone {
			m = nBits - nDone
		}
		mask := uint64(1)<<m - 1
		if isSet {
			b[i0] &^= byte(mask << i1)
			b[i0] |= byte(((r >> nDone) & mask) << i1)
		} else {
			r |= ((uint64(b[i0]) >> i1) & mask) << nDone
		}
		nDone += m
		i += int(m)
	}
	if !isSet {
		*v = r
	}
	return hi + 1
}

func Get(b []byte, hi, lo int) (v uint64) { GetSet(&v, b, hi, lo, false); return }
func Set(b []byte, hi, lo int, v uint64)  { GetSet(&v, b, hi, lo, true) }

// GetBytes copies len(v)*8 bits starting at lo into v, most significant byte first.
func GetBytes(v []byte, b []byte, lo int) {
	for i := range v {
		v[i] = byte(Get(b, lo+8*(len(v)-i)-1, lo+8*(len(v)-1-i)))
	}
}

// SetBytes is the inverse of GetBytes.
func SetBytes(b []byte, lo int, v []byte) {
	for i := range v {
		Set(b, lo+8*(len(v)-i)-1, lo+8*(len(v)-1-i), uint64(v[i]))
	}
}

// Fill sets every bit in [hi:lo] to v.
func Fill(b []byte, hi, lo int, v bool) {
	for i := lo; i <= hi; i++ {
		Set1(b, i, v)
	}
}

// Fits reports whether x is representable in n bits.
func Fits(x uint64, n uint) bool { return n >= 64 || x>>n == 0 }

// Ones returns a value with the low n bits set.
func Ones(n uint) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return 1<<n - 1
}
