// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sim models the search engine behind its register window well
// enough to run the nse driver without a card.
package sim

import (
	"sort"

	"github.com/platinasystems/tcam/nse"
	"github.com/platinasystems/tcam/internal/field"
)

const (
	Vendor   = 0x0bf5
	Part     = 0x0001
	Revision = 0x0200

	Size = 0x10
)

const (
	statusDone  = 1 << 31
	statusFault = 1 << 30
	resultHit   = 1 << 30
)

type key struct {
	db   uint8
	addr uint32
}

type entry struct {
	data, mask []byte
	valid      bool
}

// Chip implements hw.Bus.
type Chip struct {
	// Cascade slot reported in the status register.
	ID uint8
	// Status reads that find a transaction still busy.
	Latency int
	// Never complete; every poll finds the chip busy.
	Hang bool
	// Complete the next transaction with the error bit.
	FaultNext bool
	// Drop this many transactions without ever completing them.
	TimeoutNext int

	// Register access counts by offset.
	Reads, Writes map[uintptr]int
	// Transactions started.
	Commands []nse.Command

	csr      [nse.CSRMax + 1]uint32
	gmr      [nse.NGMR]nse.GMRValue
	entries  map[key]*entry
	sram     map[key][]uint32
	activity map[key]bool

	ram     []uint32
	status  uint32
	pending int
	out     []uint32
}

func New() *Chip {
	c := &Chip{}
	c.ResetCounters()
	c.reset(nse.ResetAll)
	return c
}

func (c *Chip) ResetCounters() {
	c.Reads = make(map[uintptr]int)
	c.Writes = make(map[uintptr]int)
	c.Commands = nil
}

func (c *Chip) reset(f nse.ResetFlags) {
	if f&nse.ResetCore != 0 || c.entries == nil {
		c.entries = make(map[key]*entry)
		c.activity = make(map[key]bool)
		for i := range c.gmr {
			for j := range c.gmr[i] {
				c.gmr[i][j] = 0xff
			}
		}
	}
	if f&nse.ResetSRAM != 0 || c.sram == nil {
		c.sram = make(map[key][]uint32)
	}
	if f&nse.ResetCSR != 0 {
		c.csr = [nse.CSRMax + 1]uint32{}
		c.csr[nse.CSRIdent] = Vendor<<16 | Part
		c.csr[nse.CSRRevision] = Revision
	}
}

func (c *Chip) idBits() uint32 { return uint32(c.ID&nse.MaxDeviceID) << 8 }

func (c *Chip) LoadUint32(o uintptr) uint32 {
	c.Reads[o]++
	switch o {
	case nse.ConfigStatus:
		if c.Hang || c.status&statusDone == 0 {
			return c.idBits()
		}
		if c.pending > 0 {
			c.pending--
			return c.idBits()
		}
		return c.status | c.idBits()
	case nse.ReadInterfaceData:
		if len(c.out) == 0 {
			return 0
		}
		x := c.out[0]
		c.out = c.out[1:]
		return x
	}
	return 0
}

func (c *Chip) StoreUint32(o uintptr, v uint32) {
	c.Writes[o]++
	switch o {
	case nse.CommandRAMHigh, nse.CommandRAMLow:
		c.ram = append(c.ram, v)
	case nse.ConfigStatus:
		if v&1 != 0 {
			c.start()
		}
	}
}

func (c *Chip) start() {
	ram := c.ram
	c.ram = nil
	c.out = nil
	c.status = statusDone
	c.pending = c.Latency
	if c.TimeoutNext > 0 {
		c.TimeoutNext--
		c.status = 0
		return
	}
	if len(ram) < 2 {
		c.status |= statusFault
		return
	}
	cmd := nse.ParseCommand(ram[0], ram[1])
	c.Commands = append(c.Commands, cmd)
	tx := ram[2:]
	if len(tx) != 2*int(cmd.Rows) || c.FaultNext {
		c.FaultNext = false
		c.status |= statusFault
		return
	}
	var ok bool
	if cmd.Instruction == nse.InstrLookup {
		ok = c.lookup(&cmd, tx)
	} else {
		ok = c.indirect(&cmd, tx)
	}
	if !ok {
		c.status |= statusFault
		c.out = nil
	}
}

// Database configuration as the chip holds it.
func (c *Chip) Database(db uint8) (x nse.Database) {
	v := c.csr[nse.DatabaseCSR(db, 0)]
	x.Width = nse.Width(v & 7)
	x.AD = nse.ADSize(v>>4) & 3
	x.Flags = nse.Flags(v >> 8)
	x.Segments = c.csr[nse.DatabaseCSR(db, 1)]
	x.AgeCount = c.csr[nse.DatabaseCSR(db, 2)]
	return
}

// CSR returns a configuration register without a transaction.
func (c *Chip) CSR(a uint32) uint32 { return c.csr[a] }

// Entry returns the stored entry, nil when never written.
func (c *Chip) Entry(db uint8, addr uint32) (data, mask []byte, valid bool, ok bool) {
	e := c.entries[key{db, addr}]
	if e == nil {
		return
	}
	return e.data, e.mask, e.valid, true
}

func (c *Chip) value(w []uint32, r nse.Region, db *nse.Database) ([]byte, []uint32) {
	n := db.Width.Words()
	lane := db.Flags&nse.Lane18 != 0 && r != nse.RegionSRAM
	if lane {
		n = (db.Width.Bits() + 17) / 18
	}
	if len(w) < n {
		return nil, w
	}
	if lane {
		return nse.Unlanes(w[:n], db.Width.Bits(), db.Width.Bytes()), w[n:]
	}
	return nse.Bytes(w[:n], db.Width.Bytes()), w[n:]
}

func (c *Chip) entry(k key, width nse.Width) *entry {
	e := c.entries[k]
	if e == nil {
		e = &entry{
			data: make([]byte, width.Bytes()),
			mask: make([]byte, width.Bytes()),
		}
		c.entries[k] = e
	}
	return e
}

func (c *Chip) indirect(cmd *nse.Command, tx []uint32) bool {
	db := c.Database(cmd.Database)
	k := key{cmd.Database, cmd.Address}
	switch cmd.Sub {
	case nse.SubReset:
		c.reset(nse.ResetFlags(cmd.Address))
		return true
	case nse.SubFlush:
		for _, e := range c.entries {
			e.valid = false
		}
		return true
	}
	switch cmd.Region {
	case nse.RegionCSR:
		if cmd.Address > nse.CSRMax {
			return false
		}
		switch cmd.Sub {
		case nse.SubRead:
			c.out = []uint32{c.csr[cmd.Address]}
		case nse.SubWrite:
			if len(tx) == 0 || cmd.Address == nse.CSRIdent || cmd.Address == nse.CSRRevision {
				return false
			}
			c.csr[cmd.Address] = tx[0]
		default:
			return false
		}
	case nse.RegionGMR:
		if cmd.Address >= nse.NGMR {
			return false
		}
		switch cmd.Sub {
		case nse.SubRead:
			c.out = nse.Words(c.gmr[cmd.Address][:])
		case nse.SubWrite:
			if len(tx) < 4 {
				return false
			}
			var b []byte
			if c.csr[nse.CSRConfig]&nse.ConfigLane18 != 0 {
				b = nse.Unlanes(tx[:4], nse.GMRBits, nse.GMRBytes)
			} else {
				b = nse.Bytes(tx[:3], nse.GMRBytes)
			}
			copy(c.gmr[cmd.Address][:], b)
		default:
			return false
		}
	case nse.RegionCoreData, nse.RegionCoreMask:
		return c.core(cmd, &db, k, tx)
	case nse.RegionSRAM:
		n := db.AD.Words()
		switch cmd.Sub {
		case nse.SubRead:
			ad := c.sram[k]
			c.out = make([]uint32, n)
			copy(c.out, ad)
		case nse.SubWrite:
			if n == 0 || len(tx) < n {
				return false
			}
			c.sram[k] = append([]uint32(nil), tx[:n]...)
		case nse.SubSRAMCopy:
			if len(tx) == 0 {
				return false
			}
			src := key{cmd.Database, tx[0]}
			c.sram[k] = append([]uint32(nil), c.sram[src]...)
		default:
			return false
		}
	case nse.RegionAgeActivity:
		if cmd.Sub != nse.SubRead {
			return false
		}
		x := uint32(0)
		if c.activity[k] {
			x = 1
		}
		delete(c.activity, k)
		c.out = []uint32{x}
	default:
		return false
	}
	return true
}

func (c *Chip) core(cmd *nse.Command, db *nse.Database, k key, tx []uint32) bool {
	if !db.Width.Valid() {
		return false
	}
	switch cmd.Sub {
	case nse.SubRead:
		return c.readRow(cmd, db)
	case nse.SubSetValid, nse.SubClearValid:
		c.entry(k, db.Width).valid = cmd.Sub == nse.SubSetValid
	case nse.SubWrite, nse.SubWriteKeepValid:
		b, _ := c.value(tx, cmd.Region, db)
		if b == nil {
			return false
		}
		e := c.entry(k, db.Width)
		if cmd.Region == nse.RegionCoreMask {
			e.mask = b
		} else {
			e.data = b
		}
		if cmd.Sub == nse.SubWrite {
			e.valid = true
		}
	case nse.SubDualWrite:
		data, rest := c.value(tx, nse.RegionCoreData, db)
		mask, rest := c.value(rest, nse.RegionCoreMask, db)
		n := db.AD.Words()
		if data == nil || mask == nil || len(rest) < n {
			return false
		}
		e := c.entry(k, db.Width)
		e.data, e.mask, e.valid = data, mask, true
		if n > 0 {
			c.sram[k] = append([]uint32(nil), rest[:n]...)
		}
	default:
		return false
	}
	return true
}

func (c *Chip) readRow(cmd *nse.Command, db *nse.Database) bool {
	var row [nse.RowBytes]byte
	var valid uint32
	pick := func(e *entry) []byte {
		if cmd.Region == nse.RegionCoreMask {
			return e.mask
		}
		return e.data
	}
	if db.Width == nse.Width36 {
		for half := uint32(0); half < 2; half++ {
			e := c.entries[key{cmd.Database, 2*cmd.Address + half}]
			if e == nil {
				continue
			}
			lo := 36 * int(1-half)
			field.Set(row[:], lo+35, lo, field.Get(pick(e), 35, 0))
			if e.valid {
				valid |= 1 << (31 - half)
			}
		}
	} else {
		n := uint32(db.Width.Rows())
		e := c.entries[key{cmd.Database, cmd.Address / n}]
		if e != nil {
			i := cmd.Address % n
			copy(row[:], pick(e)[i*nse.RowBytes:])
			if e.valid {
				valid = 1 << 31
			}
		}
	}
	c.out = nse.Words(row[:])
	if cmd.Region == nse.RegionCoreData {
		c.out[0] |= valid
	}
	return true
}

func (c *Chip) gmrMask(i uint8, n int) []byte {
	b := make([]byte, n)
	g := c.gmr[i]
	for j := range b {
		b[len(b)-1-j] = g[len(g)-1-j%len(g)]
	}
	return b
}

func (c *Chip) lookup(cmd *nse.Command, tx []uint32) bool {
	db := c.Database(cmd.Database)
	if !db.Width.Valid() {
		return false
	}
	n := db.Width.Words()
	if len(tx) < n {
		return false
	}
	k := nse.Bytes(tx[:n], db.Width.Bytes())
	g := c.gmrMask(cmd.GMR, len(k))
	var addrs []uint32
	for x, e := range c.entries {
		if x.db == cmd.Database && e.valid {
			addrs = append(addrs, x.addr)
		}
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	for _, a := range addrs {
		e := c.entries[key{cmd.Database, a}]
		if !matches(e, k, g) {
			continue
		}
		if db.Flags&nse.ActivityEnable != 0 {
			c.activity[key{cmd.Database, a}] = true
		}
		c.hit(&db, key{cmd.Database, a})
		return true
	}
	c.out = []uint32{0}
	return true
}

// A key bit is compared when the entry mask bit is 0 and the global mask
// bit is 1.
func matches(e *entry, k, g []byte) bool {
	for i := range k {
		care := ^e.mask[i] & g[i]
		if (e.data[i]^k[i])&care != 0 {
			return false
		}
	}
	return true
}

func (c *Chip) hit(db *nse.Database, k key) {
	n := db.AD.Words()
	ad := make([]uint32, n)
	copy(ad, c.sram[k])
	if db.Flags&nse.ReturnMode == 0 || n == 0 || n == 4 {
		c.out = append([]uint32{resultHit | k.addr}, ad...)
		return
	}
	c.out = append([]uint32{resultHit}, ad...)
	c.out = append(c.out, k.addr)
}
