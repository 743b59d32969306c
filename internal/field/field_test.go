// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slowGet(b []byte, hi, lo int) (r uint64) {
	for i := hi; i >= lo; i-- {
		r <<= 1
		if Get1(b, i) {
			r |= 1
		}
	}
	return
}

func TestGetMatchesBitwise(t *testing.T) {
	b := make([]byte, 18)
	rand.Read(b)
	for i := 0; i < 10000; i++ {
		lo := rand.Intn(8 * len(b))
		n := 1 + rand.Intn(64)
		hi := lo + n - 1
		if hi >= 8*len(b) {
			continue
		}
		if got, want := Get(b, hi, lo), slowGet(b, hi, lo); got != want {
			t.Fatalf("[%d:%d] got 0x%x want 0x%x", hi, lo, got, want)
		}
	}
}

func TestSetLeavesNeighbours(t *testing.T) {
	b := []byte{0xff, 0xff, 0xff}
	Set(b, 13, 6, 0)
	assert.Equal(t, []byte{0xff, 0xc0, 0x3f}, b)
	Set(b, 13, 6, 0xa5)
	assert.Equal(t, uint64(0xa5), Get(b, 13, 6))
	assert.Equal(t, uint64(0x3f), Get(b, 5, 0))
	assert.Equal(t, uint64(0x3), Get(b, 23, 22))
}

func TestBytes(t *testing.T) {
	b := make([]byte, 20)
	v := []byte{0x20, 0x01, 0x0d, 0xb8}
	SetBytes(b, 3, v)
	got := make([]byte, 4)
	GetBytes(got, b, 3)
	require.Equal(t, v, got)
	assert.Equal(t, uint64(0x20010db8), Get(b, 34, 3))
}

func TestFitsOnes(t *testing.T) {
	assert.True(t, Fits(15, 4))
	assert.False(t, Fits(16, 4))
	assert.True(t, Fits(^uint64(0), 64))
	assert.Equal(t, uint64(0x3ffff), Ones(18))
	assert.Equal(t, ^uint64(0), Ones(64))
}
