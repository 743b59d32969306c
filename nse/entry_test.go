// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinasystems/tcam/nse"
)

func TestWriteKeepValidThenClear(t *testing.T) {
	d, chip := newDevice(t)
	configure(t, d, 3, nse.Database{Width: nse.Width144, Segments: 1})
	data, mask := fill(18, 1), fill(18, 0x80)

	require.NoError(t, d.WriteEntry(3, 10, data, mask, 0, false))
	_, _, valid, ok := chip.Entry(3, 10)
	require.True(t, ok)
	assert.False(t, valid)

	require.NoError(t, d.SetValid(3, 10))
	_, _, valid, _ = chip.Entry(3, 10)
	assert.True(t, valid)

	require.NoError(t, d.ClearValid(3, 10))
	gotData, gotMask, valid, _ := chip.Entry(3, 10)
	assert.False(t, valid)
	assert.Equal(t, data, gotData)
	assert.Equal(t, mask, gotMask)

	e, err := d.ReadEntryFull(3, 10)
	require.NoError(t, err)
	assert.Equal(t, nse.Entry{Data: data, Mask: mask}, e)
}

func TestWriteEntrySequence(t *testing.T) {
	d, chip := newDevice(t)
	configure(t, d, 2, nse.Database{Width: nse.Width72})
	chip.ResetCounters()
	require.NoError(t, d.WriteEntry(2, 5, fill(9, 0), fill(9, 1), 7, true))

	// config read, mask write, data write
	require.Len(t, chip.Commands, 3)
	m, x := chip.Commands[1], chip.Commands[2]
	assert.Equal(t, nse.RegionCoreMask, m.Region)
	assert.Equal(t, nse.SubWriteKeepValid, m.Sub)
	assert.Equal(t, nse.RegionCoreData, x.Region)
	assert.Equal(t, nse.SubWrite, x.Sub)
	assert.Equal(t, uint8(7), x.GMR)
	assert.Equal(t, uint8(2), x.Rows)
	_, _, valid, _ := chip.Entry(2, 5)
	assert.True(t, valid)
}

func TestEntryRoundTripAllWidths(t *testing.T) {
	for _, lane := range []nse.Flags{0, nse.Lane18} {
		for w := nse.Width36; w <= nse.Width576; w++ {
			d, _ := newDevice(t)
			configure(t, d, 6, nse.Database{Width: w, Flags: lane})
			data, mask := fill(w.Bytes(), 3), fill(w.Bytes(), 0x41)
			data[0] &= byte(0xff >> uint(8*w.Bytes()-w.Bits()))
			mask[0] &= byte(0xff >> uint(8*w.Bytes()-w.Bits()))
			err := d.WriteEntry(6, 21, data, mask, 0, true)
			if lane != 0 && w == nse.Width576 {
				// 32 lanes overflow the command RAM
				require.ErrorIs(t, err, nse.ErrInvalidArgument)
				continue
			}
			require.NoError(t, err, "width %v lane %v", w, lane)
			e, err := d.ReadEntryFull(6, 21)
			require.NoError(t, err)
			assert.Equal(t, nse.Entry{Data: data, Mask: mask, Valid: true}, e, "width %v lane %v", w, lane)
		}
	}
}

func TestSharedRow36(t *testing.T) {
	d, _ := newDevice(t)
	configure(t, d, 0, nse.Database{Width: nse.Width36})
	hi := []byte{0x0a, 0xbc, 0xde, 0xf0, 0x12}
	lo := []byte{0x03, 0x45, 0x67, 0x89, 0xab}
	require.NoError(t, d.WriteEntry(0, 8, hi, make([]byte, 5), 0, true))
	require.NoError(t, d.WriteEntry(0, 9, lo, make([]byte, 5), 0, false))

	r, err := d.ReadEntry(0, 4)
	require.NoError(t, err)
	assert.Equal(t, [nse.RowBytes]byte{0xab, 0xcd, 0xef, 0x01, 0x23, 0x45, 0x67, 0x89, 0xab}, r.Data)
	assert.Equal(t, [2]bool{true, false}, r.Valid)

	e, err := d.ReadEntryFull(0, 9)
	require.NoError(t, err)
	assert.Equal(t, lo, e.Data)
	assert.False(t, e.Valid)
}

func TestEntryArgumentsCheckedFirst(t *testing.T) {
	d, chip := newDevice(t)
	assert.ErrorIs(t, d.WriteEntry(16, 0, nil, nil, 0, true), nse.ErrInvalidArgument)
	assert.ErrorIs(t, d.WriteEntry(0, 1<<19, nil, nil, 0, true), nse.ErrInvalidArgument)
	assert.ErrorIs(t, d.WriteEntry(0, 0, nil, nil, 32, true), nse.ErrInvalidArgument)
	assert.ErrorIs(t, d.SetValid(0, 1<<19), nse.ErrInvalidArgument)
	assert.ErrorIs(t, d.ClearValid(17, 0), nse.ErrInvalidArgument)
	_, err := d.ReadEntry(0, 0x80000)
	assert.ErrorIs(t, err, nse.ErrInvalidArgument)
	assert.Empty(t, chip.Commands)

	configure(t, d, 0, nse.Database{Width: nse.Width72})
	assert.ErrorIs(t, d.WriteEntry(0, 0, make([]byte, 8), make([]byte, 9), 0, true), nse.ErrInvalidArgument)
	_, err = d.ReadEntryFull(0, 0)
	assert.NoError(t, err)

	configure(t, d, 0, nse.Database{Width: nse.Width36})
	chip.ResetCounters()
	wide := []byte{0x10, 0, 0, 0, 0}
	assert.ErrorIs(t, d.WriteEntry(0, 0, wide, make([]byte, 5), 0, true), nse.ErrInvalidArgument)
	assert.ErrorIs(t, d.WriteEntry(0, 0, make([]byte, 5), wide, 0, true), nse.ErrInvalidArgument)
	assert.ErrorIs(t, d.DualWrite(0, 0, wide, make([]byte, 5), nil, 0), nse.ErrInvalidArgument)
	require.NoError(t, d.WriteEntry(0, 0, []byte{0x0f, 0xff, 0xff, 0xff, 0xff}, make([]byte, 5), 0, true))
	// rejected values cost only the config read
	assert.Len(t, chip.Commands, 3+3)

	configure(t, d, 0, nse.Database{Width: nse.Width576})
	_, err = d.ReadEntryFull(0, 1<<17)
	assert.ErrorIs(t, err, nse.ErrInvalidArgument)
}

func TestDualWrite(t *testing.T) {
	d, chip := newDevice(t)
	db := nse.Database{Width: nse.Width144, AD: nse.AD64}
	configure(t, d, 5, db)
	assert.True(t, nse.DualWriteFits(&db))
	data, mask := fill(18, 9), fill(18, 0)
	chip.ResetCounters()
	require.NoError(t, d.DualWrite(5, 77, data, mask, []uint32{0xdead, 0xbeef}, 0))
	require.Len(t, chip.Commands, 2)
	assert.Equal(t, nse.SubDualWrite, chip.Commands[1].Sub)

	e, err := d.ReadEntryFull(5, 77)
	require.NoError(t, err)
	assert.Equal(t, nse.Entry{Data: data, Mask: mask, Valid: true}, e)
	ad, err := d.ReadAD(5, 77)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0xdead, 0xbeef}, ad)

	assert.ErrorIs(t, d.DualWrite(5, 77, data, mask, []uint32{1}, 0), nse.ErrInvalidArgument)
	assert.False(t, nse.DualWriteFits(&nse.Database{Width: nse.Width576, AD: nse.AD32}))
}

func TestAssociatedData(t *testing.T) {
	d, _ := newDevice(t)
	configure(t, d, 1, nse.Database{Width: nse.Width72, AD: nse.AD128})
	require.NoError(t, d.WriteAD(1, 3, []uint32{1, 2, 3, 4}))
	ad, err := d.ReadAD(1, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3, 4}, ad)
	assert.ErrorIs(t, d.WriteAD(1, 3, []uint32{1}), nse.ErrInvalidArgument)

	configure(t, d, 2, nse.Database{Width: nse.Width72})
	assert.ErrorIs(t, d.WriteAD(2, 3, nil), nse.ErrInvalidArgument)
	_, err = d.ReadAD(2, 3)
	assert.ErrorIs(t, err, nse.ErrInvalidArgument)
}
