// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nse

import "fmt"

// Register offsets from the MMIO base.
const (
	ConfigStatus      uintptr = 0x00
	CommandRAMHigh    uintptr = 0x04
	CommandRAMLow     uintptr = 0x08
	ReadInterfaceData uintptr = 0x0c
)

type Instruction uint8

const (
	InstrIndirect Instruction = iota
	InstrLookup
)

var instructionNames = []string{
	InstrIndirect: "indirect",
	InstrLookup:   "lookup",
}

func (i Instruction) String() string { return enumString(instructionNames, int(i)) }

type Region uint8

const (
	RegionCoreData Region = iota
	RegionCoreMask
	RegionSRAM
	RegionCSR
	RegionGMR
	RegionAging
	RegionAgeActivity
)

var regionNames = []string{
	RegionCoreData:    "core-data",
	RegionCoreMask:    "core-mask",
	RegionSRAM:        "sram",
	RegionCSR:         "csr",
	RegionGMR:         "gmr",
	RegionAging:       "aging",
	RegionAgeActivity: "age-activity",
}

func (r Region) String() string { return enumString(regionNames, int(r)) }

// Regions carried in 18 bit lanes when the lane mode is enabled.
func (r Region) laned() bool {
	return r == RegionCoreData || r == RegionCoreMask || r == RegionGMR
}

type SubInstruction uint8

const (
	SubRead           SubInstruction = 0x0
	SubWrite          SubInstruction = 0x1
	SubWriteKeepValid SubInstruction = 0x2
	SubDualWrite      SubInstruction = 0x3
	SubLearn          SubInstruction = 0x4
	SubSetValid       SubInstruction = 0x5
	SubClearValid     SubInstruction = 0x6
	SubSRAMCopy       SubInstruction = 0x7
	SubReset          SubInstruction = 0xc
	SubFlush          SubInstruction = 0xd
)

var subInstructionNames = []string{
	SubRead:           "read",
	SubWrite:          "write",
	SubWriteKeepValid: "write-keep-valid",
	SubDualWrite:      "dual-write",
	SubLearn:          "learn",
	SubSetValid:       "set-valid",
	SubClearValid:     "clear-valid",
	SubSRAMCopy:       "sram-copy",
	SubReset:          "reset",
	SubFlush:          "flush",
}

func (s SubInstruction) String() string { return enumString(subInstructionNames, int(s)) }

func enumString(names []string, i int) string {
	if i < len(names) && names[i] != "" {
		return names[i]
	}
	return fmt.Sprintf("%d", i)
}

// Field limits of the two command header words.
const (
	MaxContext  = 1<<7 - 1
	MaxGMR      = 1<<5 - 1
	MaxDatabase = 1<<4 - 1
	MaxRows     = 1<<4 - 1
	MaxDeviceID = 1<<4 - 1
	MaxAddress  = 1<<19 - 1

	// Payload words that fit the command RAM behind the header row.
	MaxPayloadWords = 2 * MaxRows

	// Context carried by every transaction until the chip grows more.
	DefaultContext = MaxContext
)

// Command is the header of a mailbox transaction.
type Command struct {
	Context     uint8
	Instruction Instruction
	GMR         uint8
	Database    uint8
	// Count of 64 bit command RAM rows following the header row.
	Rows uint8

	Sub      SubInstruction
	Region   Region
	DeviceID uint8
	Address  uint32
}

// Words packs the command into its control and sub-instruction words.
//
//	w0: [21:15] context [14:13] instruction [12:8] gmr [7:4] database [3:0] rows
//	w1: [31:28] sub-instruction [27:23] region [22:19] device [18:0] address
func (c *Command) Words() (w0, w1 uint32) {
	w0 = uint32(c.Context&MaxContext)<<15 |
		uint32(c.Instruction&3)<<13 |
		uint32(c.GMR&MaxGMR)<<8 |
		uint32(c.Database&MaxDatabase)<<4 |
		uint32(c.Rows&MaxRows)
	w1 = uint32(c.Sub&0xf)<<28 |
		uint32(c.Region&0x1f)<<23 |
		uint32(c.DeviceID&MaxDeviceID)<<19 |
		c.Address&MaxAddress
	return
}

// ParseCommand is the inverse of Words.
func ParseCommand(w0, w1 uint32) (c Command) {
	c.Context = uint8(w0>>15) & MaxContext
	c.Instruction = Instruction(w0>>13) & 3
	c.GMR = uint8(w0>>8) & MaxGMR
	c.Database = uint8(w0>>4) & MaxDatabase
	c.Rows = uint8(w0) & MaxRows
	c.Sub = SubInstruction(w1 >> 28)
	c.Region = Region(w1>>23) & 0x1f
	c.DeviceID = uint8(w1>>19) & MaxDeviceID
	c.Address = w1 & MaxAddress
	return
}

func (c *Command) validate() error {
	switch {
	case c.Context > MaxContext:
		return invalid("context %d > %d", c.Context, MaxContext)
	case c.GMR > MaxGMR:
		return invalid("gmr select %d > %d", c.GMR, MaxGMR)
	case c.Database > MaxDatabase:
		return invalid("database %d > %d", c.Database, MaxDatabase)
	case c.Rows > MaxRows:
		return invalid("%d payload rows > %d", c.Rows, MaxRows)
	case c.Address > MaxAddress:
		return invalid("address 0x%x > 0x%x", c.Address, MaxAddress)
	}
	return nil
}

func (c *Command) String() string {
	s := c.Instruction.String()
	if c.Instruction == InstrIndirect {
		s += fmt.Sprintf(" %s %s", c.Sub, c.Region)
	}
	s += fmt.Sprintf(" db:%d addr:0x%05x", c.Database, c.Address)
	if c.GMR != 0 {
		s += fmt.Sprintf(" gmr:%d", c.GMR)
	}
	if c.Rows > 0 {
		s += fmt.Sprintf(" rows:%d", c.Rows)
	}
	return s
}

type status uint32

const (
	statusStart status = 1 << 0
	statusFault status = 1 << 30
	statusDone  status = 1 << 31

	// Cascade slot sampled by the chip at power on.
	statusDeviceIDShift        = 8
	statusDeviceIDMask  status = MaxDeviceID << statusDeviceIDShift
)

func (x status) deviceID() uint8 { return uint8((x & statusDeviceIDMask) >> statusDeviceIDShift) }

func (x status) toError() error {
	if x&statusFault == 0 {
		return nil
	}
	return fmt.Errorf("status 0x%08x: %w", uint32(x), ErrHardwareFault)
}
