// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nse

import (
	"fmt"
	"math/bits"
)

const NDatabase = MaxDatabase + 1

// Width is the entry width class of a database.
type Width uint8

const (
	Width36 Width = iota
	Width72
	Width144
	Width288
	Width576
	nWidth
)

func (w Width) Valid() bool { return w < nWidth }
func (w Width) Bits() int   { return 36 << w }

// Bytes holding an entry, 36 bit entries round up to 5.
func (w Width) Bytes() int { return (w.Bits() + 7) / 8 }
func (w Width) Words() int { return (w.Bytes() + 3) / 4 }

// Fixed 72 bit read rows making up one entry; 36 bit entries share a row.
func (w Width) Rows() int {
	if w == Width36 {
		return 1
	}
	return w.Bits() / RowBits
}

func (w Width) String() string {
	if !w.Valid() {
		return fmt.Sprintf("width(%d)", uint8(w))
	}
	return fmt.Sprintf("%d", w.Bits())
}

// WidthOf returns the width class of n bits.
func WidthOf(n int) (Width, error) {
	for w := Width36; w < nWidth; w++ {
		if w.Bits() == n {
			return w, nil
		}
	}
	return 0, invalid("%d bits not one of 36, 72, 144, 288, 576", n)
}

// ADSize is the associated data class of a database.
type ADSize uint8

const (
	ADNone ADSize = iota
	AD32
	AD64
	AD128
	nADSize
)

func (a ADSize) Valid() bool { return a < nADSize }

func (a ADSize) Words() int {
	if a == ADNone {
		return 0
	}
	return 1 << (a - 1)
}

func (a ADSize) Bits() int { return 32 * a.Words() }

func (a ADSize) String() string {
	switch {
	case a == ADNone:
		return "none"
	case a.Valid():
		return fmt.Sprintf("%d", a.Bits())
	}
	return fmt.Sprintf("ad(%d)", uint8(a))
}

type Flags uint8

const (
	PowerSave Flags = 1 << iota
	ActivityEnable
	// Lookups return associated data ahead of the index.
	ReturnMode
	// Core and mask payloads travel in 18 bit lanes.
	Lane18
)

var flagNames = []string{"power-save", "activity", "return-mode", "lane18"}

func (f Flags) String() (s string) {
	for i, n := range flagNames {
		if f&(1<<uint(i)) != 0 {
			if s != "" {
				s += ","
			}
			s += n
		}
	}
	if s == "" {
		s = "none"
	}
	return
}

// Database is the configuration held in the three per database registers.
type Database struct {
	Width    Width
	AD       ADSize
	Flags    Flags
	AgeCount uint32
	// Physical segments assigned to the database, at most MaxSegments.
	Segments uint32
}

func (db *Database) String() string {
	return fmt.Sprintf("width %s ad %s flags %s age %d segments 0x%08x",
		db.Width, db.AD, db.Flags, db.AgeCount, db.Segments)
}

const MaxSegments = 8

// DatabaseMask selects the fields SetDatabase changes.
type DatabaseMask uint8

const (
	SetWidth DatabaseMask = 1 << iota
	SetAD
	SetFlags
	SetAgeCount
	SetSegments

	SetAll = SetWidth | SetAD | SetFlags | SetAgeCount | SetSegments
)

// Configuration register CSRs.
const (
	CSRConfig   uint32 = 0x0000
	CSRIdent    uint32 = 0x0001
	CSRRevision uint32 = 0x0002
	CSRDatabase uint32 = 0x0100
	CSRMax      uint32 = 0x01f3

	// NSE config bit selecting 18 bit lanes for GMR payloads.
	ConfigLane18 uint32 = 1 << 4
)

// Registers within a database block.
const (
	dbConfig = iota
	dbSegments
	dbAge
)

func DatabaseCSR(db uint8, reg uint32) uint32 {
	return CSRDatabase | uint32(db)<<4 + reg
}

// Database config register: [2:0] width [5:4] ad [15:8] flags
func packConfig(x uint32, db *Database, m DatabaseMask) uint32 {
	if m&SetWidth != 0 {
		x = x&^0x7 | uint32(db.Width)
	}
	if m&SetAD != 0 {
		x = x&^0x30 | uint32(db.AD)<<4
	}
	if m&SetFlags != 0 {
		x = x&^0xff00 | uint32(db.Flags)<<8
	}
	return x
}

func unpackConfig(x uint32, db *Database) {
	db.Width = Width(x & 0x7)
	db.AD = ADSize(x>>4) & 0x3
	db.Flags = Flags(x >> 8)
}

func checkDatabase(db uint8) error {
	if db > MaxDatabase {
		return invalid("database %d > %d", db, MaxDatabase)
	}
	return nil
}

// config reads width, ad and flags of a database. Never cached; the register
// is the only truth and may be reconfigured between calls.
func (d *Device) config(db uint8) (c Database, err error) {
	x, err := d.ReadCSR(DatabaseCSR(db, dbConfig))
	if err != nil {
		return
	}
	unpackConfig(x, &c)
	if !c.Width.Valid() {
		err = fmt.Errorf("database %d: config 0x%08x: %w", db, x, ErrHardwareFault)
	}
	return
}

// Database reads the configuration of database id.
func (d *Device) Database(id uint8) (db Database, err error) {
	if err = checkDatabase(id); err != nil {
		return
	}
	if db, err = d.config(id); err != nil {
		return
	}
	if db.Segments, err = d.ReadCSR(DatabaseCSR(id, dbSegments)); err != nil {
		return
	}
	db.AgeCount, err = d.ReadCSR(DatabaseCSR(id, dbAge))
	return
}

// SetDatabase changes the fields of database id selected by mask, leaving the
// rest of the shared configuration as the hardware holds it.
func (d *Device) SetDatabase(id uint8, mask DatabaseMask, db *Database) error {
	if err := checkDatabase(id); err != nil {
		return err
	}
	if mask&^SetAll != 0 {
		return invalid("database mask 0x%x", uint8(mask))
	}
	if mask&SetWidth != 0 && !db.Width.Valid() {
		return invalid("database %d: width %s", id, db.Width)
	}
	if mask&SetAD != 0 && !db.AD.Valid() {
		return invalid("database %d: ad %s", id, db.AD)
	}
	if mask&SetSegments != 0 {
		if n := bits.OnesCount32(db.Segments); n > MaxSegments {
			return invalid("database %d: %d segments > %d", id, n, MaxSegments)
		}
	}
	if mask&(SetWidth|SetAD|SetFlags) != 0 {
		a := DatabaseCSR(id, dbConfig)
		x, err := d.ReadCSR(a)
		if err != nil {
			return err
		}
		if err = d.WriteCSR(a, packConfig(x, db, mask)); err != nil {
			return err
		}
	}
	if mask&SetSegments != 0 {
		if err := d.WriteCSR(DatabaseCSR(id, dbSegments), db.Segments); err != nil {
			return err
		}
	}
	if mask&SetAgeCount != 0 {
		if err := d.WriteCSR(DatabaseCSR(id, dbAge), db.AgeCount); err != nil {
			return err
		}
	}
	return nil
}
