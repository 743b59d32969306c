// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rule translates protocol filter rules to and from the fixed width
// entries the search engine stores.
//
// Every field is a data/mask pair with the engine's sense of mask: a 1 bit is
// don't care, a 0 bit must match.
package rule

import (
	"fmt"

	"github.com/platinasystems/tcam/nse"
	"github.com/platinasystems/tcam/internal/field"
)

// Rule is one filter rule of a protocol the package has a codec for.
type Rule interface {
	// Meta carried out of band in associated data.
	Out() Meta
	String() string
}

// Codec maps rules of one protocol to entries of one database width.
type Codec interface {
	Name() string
	Width() nse.Width
	AD() nse.ADSize
	Encode(r Rule) (*Entry, error)
	// Decode needs the Overlay that Encode returned with the entry.
	Decode(e *Entry) (Rule, error)
}

// Codecs by name.
var Codecs = map[string]Codec{
	BFSCodec{}.Name():        BFSCodec{},
	InfinibandCodec{}.Name(): InfinibandCodec{},
}

// Overlay records how fields sharing storage were encoded. The wire format
// cannot tell them apart so it must travel beside the entry.
type Overlay uint8

const (
	// Addresses are IPv4 in the low 32 bits of their 128 bit slots.
	OverlayIPv4 Overlay = 1 << iota
	// Slot holds VLAN-1 in place of the top MPLS label.
	OverlayVLAN1
	// Slot holds VLAN-2 in place of the bottom MPLS label.
	OverlayVLAN2
)

var overlayNames = []string{"ipv4", "vlan1", "vlan2"}

func (o Overlay) String() (s string) {
	for i, n := range overlayNames {
		if o&(1<<uint(i)) != 0 {
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

// Entry is an encoded rule.
type Entry struct {
	Data, Mask []byte
	AD         []uint32
	Overlay    Overlay
}

func (e *Entry) String() string {
	return fmt.Sprintf("data %x mask %x ad %08x overlay %v", e.Data, e.Mask, e.AD, e.Overlay)
}

type Field8 struct{ Data, Mask uint8 }
type Field16 struct{ Data, Mask uint16 }
type Field32 struct{ Data, Mask uint32 }

// FieldIP holds IPv6 addresses or IPv4 addresses in the last four bytes.
type FieldIP struct{ Data, Mask [16]byte }

func (f Field8) String() string  { return fmt.Sprintf("0x%x/0x%x", f.Data, f.Mask) }
func (f Field16) String() string { return fmt.Sprintf("0x%x/0x%x", f.Data, f.Mask) }
func (f Field32) String() string { return fmt.Sprintf("0x%x/0x%x", f.Data, f.Mask) }
func (f FieldIP) String() string { return fmt.Sprintf("%x/%x", f.Data, f.Mask) }

// Any8 and friends return an n bit don't care field.
func Any8(n uint) Field8    { return Field8{Mask: uint8(field.Ones(n))} }
func Any16() Field16        { return Field16{Mask: 0xffff} }
func Any32(n uint) Field32  { return Field32{Mask: uint32(field.Ones(n))} }
func Exact8(v uint8) Field8 { return Field8{Data: v} }

// IPv4 returns an address field matching addr under mask with the upper 96
// bits don't care.
func IPv4(addr, mask [4]byte) (f FieldIP) {
	f = AnyIP()
	copy(f.Data[12:], addr[:])
	copy(f.Mask[12:], mask[:])
	return
}

func AnyIP() (f FieldIP) {
	for i := range f.Mask {
		f.Mask[i] = 0xff
	}
	return
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), nse.ErrInvalidArgument)
}

func checkEntry(c Codec, e *Entry) error {
	n := c.Width().Bytes()
	if len(e.Data) != n || len(e.Mask) != n {
		return invalid("%s: %d/%d byte entry, want %d", c.Name(), len(e.Data), len(e.Mask), n)
	}
	if len(e.AD) != c.AD().Words() {
		return invalid("%s: %d associated data words, want %d", c.Name(), len(e.AD), c.AD().Words())
	}
	return nil
}
