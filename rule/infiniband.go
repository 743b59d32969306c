// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rule

import (
	"fmt"

	"github.com/platinasystems/tcam/nse"
)

// Infiniband matches local and base transport header fields.
type Infiniband struct {
	ServiceLevel Field8 // 4 bits
	LNH          Field8 // 2 bits
	DLID, SLID   Field16
	Opcode       Field8
	DestQP       Field32 // 24 bits
	SrcQP        Field32 // 24 bits
	LinkID       Field8  // 1 bit
	Meta
}

func AnyInfiniband() *Infiniband {
	return &Infiniband{
		ServiceLevel: Any8(4),
		LNH:          Any8(2),
		DLID:         Any16(),
		SLID:         Any16(),
		Opcode:       Any8(8),
		DestQP:       Any32(24),
		SrcQP:        Any32(24),
		LinkID:       Any8(1),
	}
}

func (r *Infiniband) Out() Meta { return r.Meta }

func (r *Infiniband) String() string {
	return fmt.Sprintf("sl %v lnh %v dlid %v slid %v opcode %v dqp %v sqp %v link %v %v",
		r.ServiceLevel, r.LNH, r.DLID, r.SLID, r.Opcode, r.DestQP, r.SrcQP, r.LinkID, r.Meta)
}

// Bit positions in the 18 byte entry; byte k bit b is bit (17-k)*8+b.
const (
	ibServiceLevel = 140 // byte 0 [7:4]
	ibLNH          = 138 // byte 0 [3:2]
	ibDLID         = 120 // bytes 1-2
	ibSLID         = 104 // bytes 3-4
	ibOpcode       = 94  // byte 5 [5:0], byte 6 [7:6]
	ibDestQP       = 70  // byte 6 [5:0] through byte 9 [7:6]
	ibSrcQP        = 46  // byte 9 [5:0] through byte 12 [7:6]
	ibLinkID       = 0   // byte 17 bit 0

	InfinibandBytes = 18
)

// InfinibandCodec packs Infiniband rules into 144 bit entries with one word
// of associated data.
type InfinibandCodec struct{}

func (InfinibandCodec) Name() string     { return "infiniband" }
func (InfinibandCodec) Width() nse.Width { return nse.Width144 }
func (InfinibandCodec) AD() nse.ADSize   { return nse.AD32 }

func (c InfinibandCodec) Encode(x Rule) (*Entry, error) {
	r, ok := x.(*Infiniband)
	if !ok {
		return nil, invalid("%s: %T rule", c.Name(), x)
	}
	w := newWire(c.Width().Bytes())
	w.put("sl", ibServiceLevel, 4, uint64(r.ServiceLevel.Data), uint64(r.ServiceLevel.Mask))
	w.put("lnh", ibLNH, 2, uint64(r.LNH.Data), uint64(r.LNH.Mask))
	w.put("dlid", ibDLID, 16, uint64(r.DLID.Data), uint64(r.DLID.Mask))
	w.put("slid", ibSLID, 16, uint64(r.SLID.Data), uint64(r.SLID.Mask))
	w.put("opcode", ibOpcode, 8, uint64(r.Opcode.Data), uint64(r.Opcode.Mask))
	w.put("dqp", ibDestQP, 24, uint64(r.DestQP.Data), uint64(r.DestQP.Mask))
	w.put("sqp", ibSrcQP, 24, uint64(r.SrcQP.Data), uint64(r.SrcQP.Mask))
	w.put("link", ibLinkID, 1, uint64(r.LinkID.Data), uint64(r.LinkID.Mask))
	if w.err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name(), w.err)
	}
	ad, err := r.Meta.Word()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name(), err)
	}
	return &Entry{Data: w.data, Mask: w.mask, AD: []uint32{ad}}, nil
}

func (c InfinibandCodec) Decode(e *Entry) (Rule, error) {
	if err := checkEntry(c, e); err != nil {
		return nil, err
	}
	w := &wire{data: e.Data, mask: e.Mask}
	f8 := func(lo int, n uint) Field8 {
		d, m := w.get(lo, n)
		return Field8{uint8(d), uint8(m)}
	}
	f16 := func(lo int) Field16 {
		d, m := w.get(lo, 16)
		return Field16{uint16(d), uint16(m)}
	}
	f24 := func(lo int) Field32 {
		d, m := w.get(lo, 24)
		return Field32{uint32(d), uint32(m)}
	}
	return &Infiniband{
		ServiceLevel: f8(ibServiceLevel, 4),
		LNH:          f8(ibLNH, 2),
		DLID:         f16(ibDLID),
		SLID:         f16(ibSLID),
		Opcode:       f8(ibOpcode, 8),
		DestQP:       f24(ibDestQP),
		SrcQP:        f24(ibSrcQP),
		LinkID:       f8(ibLinkID, 1),
		Meta:         MetaOf(e.AD[0]),
	}, nil
}
