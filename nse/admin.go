// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nse

import (
	"fmt"
	"time"
)

type ResetFlags uint32

const (
	ResetCore ResetFlags = 1 << iota
	ResetSRAM
	ResetCSR

	ResetAll = ResetCore | ResetSRAM | ResetCSR
)

// Reset resets the parts of the chip named by flags and then waits the
// settle time the hardware requires; the wait is not polled.
func (d *Device) Reset(flags ResetFlags) error {
	if flags&^ResetAll != 0 {
		return invalid("reset flags 0x%x", uint32(flags))
	}
	err := d.do(indirect(0, SubReset, RegionCSR, uint32(flags)), nil, nil)
	time.Sleep(d.settleDelay())
	return err
}

// Flush invalidates every entry of every database.
func (d *Device) Flush() error {
	return d.do(indirect(0, SubFlush, RegionCoreData, 0), nil, nil)
}

// Activity reports whether the entry at addr was hit since the bit was last
// read; databases must have ActivityEnable set for the chip to record it.
func (d *Device) Activity(db uint8, addr uint32) (bool, error) {
	if err := checkEntry(db, addr); err != nil {
		return false, err
	}
	var rx [1]uint32
	err := d.do(indirect(db, SubRead, RegionAgeActivity, addr), nil, rx[:])
	return rx[0]&1 != 0, err
}

// SRAMCopy copies the associated data of entry src to entry dst.
func (d *Device) SRAMCopy(db uint8, src, dst uint32) error {
	if err := checkEntry(db, src); err != nil {
		return err
	}
	if err := checkEntry(db, dst); err != nil {
		return err
	}
	return d.do(indirect(db, SubSRAMCopy, RegionSRAM, dst), []uint32{src}, nil)
}

func checkScratch(i int) error {
	if i < 0 || i >= NScratch {
		return invalid("scratch %d outside [0,%d)", i, NScratch)
	}
	return nil
}

// Scratch words live in host memory only; callers use them to carry metadata
// between invocations on the same handle.
func (d *Device) Scratch(i int) (uint32, error) {
	if err := checkScratch(i); err != nil {
		return 0, err
	}
	return d.scratch[i], nil
}

func (d *Device) SetScratch(i int, v uint32) error {
	if err := checkScratch(i); err != nil {
		return err
	}
	d.scratch[i] = v
	return nil
}

// Info summarizes the device for display.
func (d *Device) Info() (s string, err error) {
	id, err := d.Identify()
	if err != nil {
		return
	}
	s = fmt.Sprintf("%v: %v", d, id)
	for db := uint8(0); db < NDatabase; db++ {
		var c Database
		if c, err = d.Database(db); err != nil {
			return
		}
		if c.Segments == 0 {
			continue
		}
		s += fmt.Sprintf("\n  db %2d: %v", db, &c)
	}
	return
}
