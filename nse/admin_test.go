// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nse_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinasystems/tcam/nse"
)

func TestGMR(t *testing.T) {
	for _, lane := range []uint32{0, nse.ConfigLane18} {
		d, _ := newDevice(t)
		require.NoError(t, d.WriteCSR(nse.CSRConfig, lane))
		v := nse.GMRValue{0x80, 1, 2, 3, 4, 5, 6, 7, 0xfe}
		require.NoError(t, d.WriteGMR(63, v))
		got, err := d.ReadGMR(63)
		require.NoError(t, err)
		assert.Equal(t, v, got, "lane 0x%x", lane)
	}
	d, chip := newDevice(t)
	assert.ErrorIs(t, d.WriteGMR(64, nse.GMRValue{}), nse.ErrInvalidArgument)
	_, err := d.ReadGMR(200)
	assert.ErrorIs(t, err, nse.ErrInvalidArgument)
	assert.Empty(t, chip.Commands)
}

func TestResetAndFlush(t *testing.T) {
	d, chip := newDevice(t)
	configure(t, d, 0, nse.Database{Width: nse.Width72})
	configure(t, d, 8, nse.Database{Width: nse.Width144})
	require.NoError(t, d.WriteEntry(0, 1, fill(9, 1), fill(9, 0), 0, true))
	require.NoError(t, d.WriteEntry(8, 2, fill(18, 1), fill(18, 0), 0, true))

	require.NoError(t, d.Flush())
	for _, x := range []struct {
		db   uint8
		addr uint32
	}{{0, 1}, {8, 2}} {
		data, _, valid, ok := chip.Entry(x.db, x.addr)
		require.True(t, ok)
		assert.False(t, valid)
		assert.NotEmpty(t, data)
	}

	chip.ResetCounters()
	require.NoError(t, d.Reset(nse.ResetCore))
	require.Len(t, chip.Commands, 1)
	assert.Equal(t, nse.SubReset, chip.Commands[0].Sub)
	assert.Equal(t, uint32(nse.ResetCore), chip.Commands[0].Address)
	_, _, _, ok := chip.Entry(0, 1)
	assert.False(t, ok)
	// configuration survives a core reset
	assert.Equal(t, nse.Width144, chip.Database(8).Width)

	assert.ErrorIs(t, d.Reset(0x100), nse.ErrInvalidArgument)
}

func TestResetSettlesAfterTimeout(t *testing.T) {
	d, chip := newDevice(t)
	chip.Hang = true
	assert.ErrorIs(t, d.Reset(nse.ResetAll), nse.ErrTimeout)
}

func TestScratch(t *testing.T) {
	d, chip := newDevice(t)
	for i := 0; i < nse.NScratch; i++ {
		require.NoError(t, d.SetScratch(i, uint32(i*i)))
	}
	for i := 0; i < nse.NScratch; i++ {
		x, err := d.Scratch(i)
		require.NoError(t, err)
		assert.Equal(t, uint32(i*i), x)
	}
	assert.ErrorIs(t, d.SetScratch(16, 0), nse.ErrInvalidArgument)
	_, err := d.Scratch(-1)
	assert.ErrorIs(t, err, nse.ErrInvalidArgument)
	assert.Empty(t, chip.Reads)
	assert.Empty(t, chip.Writes)
}

func TestActivity(t *testing.T) {
	d, _ := newDevice(t)
	configure(t, d, 3, nse.Database{Width: nse.Width72, Flags: nse.ActivityEnable})
	key := fill(9, 0x10)
	require.NoError(t, d.WriteEntry(3, 6, key, make([]byte, 9), 0, true))

	hit, err := d.Activity(3, 6)
	require.NoError(t, err)
	assert.False(t, hit)

	_, err = d.Lookup(3, key, 72, 0)
	require.NoError(t, err)
	hit, err = d.Activity(3, 6)
	require.NoError(t, err)
	assert.True(t, hit)
	hit, err = d.Activity(3, 6)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSRAMCopy(t *testing.T) {
	d, _ := newDevice(t)
	configure(t, d, 4, nse.Database{Width: nse.Width72, AD: nse.AD64})
	require.NoError(t, d.WriteAD(4, 1, []uint32{5, 6}))
	require.NoError(t, d.SRAMCopy(4, 1, 9))
	ad, err := d.ReadAD(4, 9)
	require.NoError(t, err)
	assert.Equal(t, []uint32{5, 6}, ad)
	assert.ErrorIs(t, d.SRAMCopy(4, 1<<19, 9), nse.ErrInvalidArgument)
}

func TestInfo(t *testing.T) {
	d, _ := newDevice(t)
	configure(t, d, 12, nse.Database{Width: nse.Width576, Segments: 0xf0})
	s, err := d.Info()
	require.NoError(t, err)
	lines := strings.Split(s, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "nse2: 0bf5:0001 rev 0x200", lines[0])
	assert.Contains(t, lines[1], "db 12: width 576")
}
