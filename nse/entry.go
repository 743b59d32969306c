// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nse

import "github.com/platinasystems/tcam/internal/field"

// The read path is 72 bits wide whatever the database width.
const (
	RowBits  = 72
	RowBytes = RowBits / 8
	rowWords = 3

	// Valid bits in the first data word of a row read; 36 bit entries
	// sharing a row use one each, the upper entry takes rowValid.
	rowValid   = 1 << 31
	rowValidLo = 1 << 30
)

// Row is one 72 bit read of core data and mask.
type Row struct {
	Data, Mask [RowBytes]byte
	Valid      [2]bool
}

// Entry is a whole entry reassembled from rows.
type Entry struct {
	Data, Mask []byte
	Valid      bool
}

func checkEntry(db uint8, addr uint32) error {
	if err := checkDatabase(db); err != nil {
		return err
	}
	if addr > MaxAddress {
		return invalid("address 0x%x > 0x%x", addr, MaxAddress)
	}
	return nil
}

func checkGMR(gmr uint8) error {
	if gmr > MaxGMR {
		return invalid("gmr select %d > %d", gmr, MaxGMR)
	}
	return nil
}

func (c *Database) checkValue(what string, b []byte) error {
	if len(b) != c.Width.Bytes() {
		return invalid("%s: %d bytes for %s bit entry, want %d",
			what, len(b), c.Width, c.Width.Bytes())
	}
	// 36 bit entries leave the top nibble of the first byte unused.
	if pad := uint(8*len(b) - c.Width.Bits()); pad > 0 && b[0]>>(8-pad) != 0 {
		return invalid("%s: 0x%x wider than %s bits", what, b, c.Width)
	}
	return nil
}

func (c *Database) lane18() bool { return c.Flags&Lane18 != 0 }

// WriteEntry writes mask then data of the entry at addr. With validate the
// entry becomes valid; otherwise its valid bit is left as it was.
func (d *Device) WriteEntry(db uint8, addr uint32, data, mask []byte, gmr uint8, validate bool) error {
	if err := checkEntry(db, addr); err != nil {
		return err
	}
	if err := checkGMR(gmr); err != nil {
		return err
	}
	c, err := d.config(db)
	if err != nil {
		return err
	}
	if err = c.checkValue("data", data); err != nil {
		return err
	}
	if err = c.checkValue("mask", mask); err != nil {
		return err
	}
	n := c.Width.Bits()
	cmd := indirect(db, SubWriteKeepValid, RegionCoreMask, addr)
	cmd.GMR = gmr
	if err = d.do(cmd, payload(mask, n, RegionCoreMask, c.lane18()), nil); err != nil {
		return err
	}
	cmd.Region = RegionCoreData
	if validate {
		cmd.Sub = SubWrite
	}
	return d.do(cmd, payload(data, n, RegionCoreData, c.lane18()), nil)
}

// DualWrite writes data, mask and associated data in one transaction and
// makes the entry valid.
func (d *Device) DualWrite(db uint8, addr uint32, data, mask []byte, ad []uint32, gmr uint8) error {
	if err := checkEntry(db, addr); err != nil {
		return err
	}
	if err := checkGMR(gmr); err != nil {
		return err
	}
	c, err := d.config(db)
	if err != nil {
		return err
	}
	if err = c.checkValue("data", data); err != nil {
		return err
	}
	if err = c.checkValue("mask", mask); err != nil {
		return err
	}
	if len(ad) != c.AD.Words() {
		return invalid("%d associated data words, database %d holds %d", len(ad), db, c.AD.Words())
	}
	n := c.Width.Bits()
	tx := payload(data, n, RegionCoreData, c.lane18())
	tx = append(tx, payload(mask, n, RegionCoreMask, c.lane18())...)
	tx = append(tx, ad...)
	cmd := indirect(db, SubDualWrite, RegionCoreData, addr)
	cmd.GMR = gmr
	return d.do(cmd, tx, nil)
}

// DualWriteFits reports whether a database configuration can take DualWrite
// within one command frame.
func DualWriteFits(c *Database) bool {
	n := 2*len(payload(make([]byte, c.Width.Bytes()), c.Width.Bits(), RegionCoreData, c.lane18())) +
		c.AD.Words()
	return n <= MaxPayloadWords
}

// ReadEntry reads one 72 bit row of data and mask.
func (d *Device) ReadEntry(db uint8, row uint32) (r Row, err error) {
	if err = checkEntry(db, row); err != nil {
		return
	}
	var rx [rowWords]uint32
	if err = d.do(indirect(db, SubRead, RegionCoreData, row), nil, rx[:]); err != nil {
		return
	}
	r.Valid[0] = rx[0]&rowValid != 0
	r.Valid[1] = rx[0]&rowValidLo != 0
	rx[0] &= 0xff
	copy(r.Data[:], Bytes(rx[:], RowBytes))
	if err = d.do(indirect(db, SubRead, RegionCoreMask, row), nil, rx[:]); err != nil {
		return
	}
	rx[0] &= 0xff
	copy(r.Mask[:], Bytes(rx[:], RowBytes))
	return
}

// ReadEntryFull reassembles the entry at addr from as many rows as the
// database width needs.
func (d *Device) ReadEntryFull(db uint8, addr uint32) (e Entry, err error) {
	if err = checkEntry(db, addr); err != nil {
		return
	}
	c, err := d.config(db)
	if err != nil {
		return
	}
	e.Data = make([]byte, c.Width.Bytes())
	e.Mask = make([]byte, c.Width.Bytes())
	if c.Width == Width36 {
		var r Row
		if r, err = d.ReadEntry(db, addr/2); err != nil {
			return
		}
		half := int(addr % 2)
		lo := 36 * (1 - half)
		field.Set(e.Data, 35, 0, field.Get(r.Data[:], lo+35, lo))
		field.Set(e.Mask, 35, 0, field.Get(r.Mask[:], lo+35, lo))
		e.Valid = r.Valid[half]
		return
	}
	n := uint32(c.Width.Rows())
	base := addr * n
	if base+n-1 > MaxAddress {
		err = invalid("%s bit entry 0x%x beyond row 0x%x", c.Width, addr, MaxAddress)
		return
	}
	for i := uint32(0); i < n; i++ {
		var r Row
		if r, err = d.ReadEntry(db, base+i); err != nil {
			return
		}
		copy(e.Data[i*RowBytes:], r.Data[:])
		copy(e.Mask[i*RowBytes:], r.Mask[:])
		if i == 0 {
			e.Valid = r.Valid[0]
		}
	}
	return
}

func (d *Device) SetValid(db uint8, addr uint32) error {
	if err := checkEntry(db, addr); err != nil {
		return err
	}
	return d.do(indirect(db, SubSetValid, RegionCoreData, addr), nil, nil)
}

func (d *Device) ClearValid(db uint8, addr uint32) error {
	if err := checkEntry(db, addr); err != nil {
		return err
	}
	return d.do(indirect(db, SubClearValid, RegionCoreData, addr), nil, nil)
}

// WriteAD writes the associated data paired with the entry at addr.
func (d *Device) WriteAD(db uint8, addr uint32, ad []uint32) error {
	if err := checkEntry(db, addr); err != nil {
		return err
	}
	c, err := d.config(db)
	if err != nil {
		return err
	}
	if c.AD == ADNone || len(ad) != c.AD.Words() {
		return invalid("%d associated data words, database %d holds %d", len(ad), db, c.AD.Words())
	}
	return d.do(indirect(db, SubWrite, RegionSRAM, addr), ad, nil)
}

func (d *Device) ReadAD(db uint8, addr uint32) (ad []uint32, err error) {
	if err = checkEntry(db, addr); err != nil {
		return
	}
	c, err := d.config(db)
	if err != nil {
		return
	}
	if c.AD == ADNone {
		err = invalid("database %d has no associated data", db)
		return
	}
	ad = make([]uint32, c.AD.Words())
	err = d.do(indirect(db, SubRead, RegionSRAM, addr), nil, ad)
	return
}
