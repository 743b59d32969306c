// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rule

import (
	"fmt"

	"github.com/platinasystems/tcam/nse"
	"github.com/platinasystems/tcam/internal/field"
)

// BFS is a packet classification rule. VLAN-n shares storage with MPLS-n;
// only one of the pair may be specified.
type BFS struct {
	Ruleset    Field8 // 1 bit
	Interface  Field8 // 2 bits
	PPP        Field8 // 1 bit
	L2Proto    Field16
	MPLS       [2]Field32
	VLAN       [2]Field16
	LabelCount Field8 // 3 bits
	IPv6       bool
	SrcIP      FieldIP
	DstIP      FieldIP
	Protocol   Field8
	SrcPort    Field16
	DstPort    Field16
	TCPFlags   Field8 // 6 bits
	Meta
}

// AnyBFS returns a rule matching everything.
func AnyBFS() *BFS {
	return &BFS{
		Ruleset:    Any8(1),
		Interface:  Any8(2),
		PPP:        Any8(1),
		L2Proto:    Any16(),
		MPLS:       [2]Field32{Any32(32), Any32(32)},
		VLAN:       [2]Field16{Any16(), Any16()},
		LabelCount: Any8(3),
		SrcIP:      AnyIP(),
		DstIP:      AnyIP(),
		Protocol:   Any8(8),
		SrcPort:    Any16(),
		DstPort:    Any16(),
		TCPFlags:   Any8(6),
	}
}

func (r *BFS) Out() Meta { return r.Meta }

func (r *BFS) String() string {
	s := fmt.Sprintf("ruleset %v iface %v ppp %v l2 %v", r.Ruleset, r.Interface, r.PPP, r.L2Proto)
	for i := range r.MPLS {
		s += fmt.Sprintf(" mpls%d %v vlan%d %v", i+1, r.MPLS[i], i+1, r.VLAN[i])
	}
	af := "ip4"
	if r.IPv6 {
		af = "ip6"
	}
	return s + fmt.Sprintf(" labels %v %s src %v dst %v proto %v sport %v dport %v flags %v %v",
		r.LabelCount, af, r.SrcIP, r.DstIP, r.Protocol, r.SrcPort, r.DstPort, r.TCPFlags, r.Meta)
}

// Bit positions of the 389 bit layout, most significant field first.
const (
	bfsRuleset    = 388
	bfsInterface  = 386
	bfsPPP        = 385
	bfsL2Proto    = 369
	bfsMPLSTop    = 337
	bfsMPLSBottom = 305
	bfsLabelCount = 302
	bfsSrcIP      = 174
	bfsDstIP      = 46
	bfsProtocol   = 38
	bfsSrcPort    = 22
	bfsDstPort    = 6
	bfsTCPFlags   = 0

	BFSBits = 389
)

var bfsMPLS = [2]int{bfsMPLSTop, bfsMPLSBottom}

// BFSCodec packs BFS rules into 576 bit entries with one word of
// associated data.
type BFSCodec struct{}

func (BFSCodec) Name() string     { return "bfs" }
func (BFSCodec) Width() nse.Width { return nse.Width576 }
func (BFSCodec) AD() nse.ADSize   { return nse.AD32 }

func (c BFSCodec) Encode(x Rule) (*Entry, error) {
	r, ok := x.(*BFS)
	if !ok {
		return nil, invalid("%s: %T rule", c.Name(), x)
	}
	e := &Entry{}
	w := newWire(c.Width().Bytes())

	// Which database holds the entry selects the ruleset.
	w.put("ruleset", bfsRuleset, 1, uint64(r.Ruleset.Data), 1)
	w.put("interface", bfsInterface, 2, uint64(r.Interface.Data), uint64(r.Interface.Mask))
	w.put("ppp", bfsPPP, 1, uint64(r.PPP.Data), uint64(r.PPP.Mask))
	w.put("l2proto", bfsL2Proto, 16, uint64(r.L2Proto.Data), uint64(r.L2Proto.Mask))
	for i, lo := range bfsMPLS {
		mplsAny := r.MPLS[i].Mask == 0xffffffff
		vlanAny := r.VLAN[i].Mask == 0xffff
		switch {
		case !mplsAny && !vlanAny:
			return nil, invalid("%s: mpls%d %v and vlan%d %v share storage",
				c.Name(), i+1, r.MPLS[i], i+1, r.VLAN[i])
		case vlanAny && r.VLAN[i].Data != 0:
			return nil, invalid("%s: vlan%d %v data under don't care mask",
				c.Name(), i+1, r.VLAN[i])
		case !vlanAny && r.MPLS[i].Data != 0:
			return nil, invalid("%s: mpls%d %v data under don't care mask",
				c.Name(), i+1, r.MPLS[i])
		case !vlanAny:
			w.put("vlan", lo, 16, uint64(r.VLAN[i].Data), uint64(r.VLAN[i].Mask))
			w.put("vlan", lo+16, 16, 0, 0xffff)
			e.Overlay |= OverlayVLAN1 << uint(i)
		default:
			w.put("mpls", lo, 32, uint64(r.MPLS[i].Data), uint64(r.MPLS[i].Mask))
		}
	}
	w.put("labels", bfsLabelCount, 3, uint64(r.LabelCount.Data), uint64(r.LabelCount.Mask))
	if !r.IPv6 {
		e.Overlay |= OverlayIPv4
	}
	if err := w.putIP("src", bfsSrcIP, &r.SrcIP, r.IPv6); err != nil {
		return nil, err
	}
	if err := w.putIP("dst", bfsDstIP, &r.DstIP, r.IPv6); err != nil {
		return nil, err
	}
	w.put("protocol", bfsProtocol, 8, uint64(r.Protocol.Data), uint64(r.Protocol.Mask))
	w.put("sport", bfsSrcPort, 16, uint64(r.SrcPort.Data), uint64(r.SrcPort.Mask))
	w.put("dport", bfsDstPort, 16, uint64(r.DstPort.Data), uint64(r.DstPort.Mask))
	w.put("tcpflags", bfsTCPFlags, 6, uint64(r.TCPFlags.Data), uint64(r.TCPFlags.Mask))
	if w.err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name(), w.err)
	}
	ad, err := r.Meta.Word()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name(), err)
	}
	e.Data, e.Mask, e.AD = w.data, w.mask, []uint32{ad}
	return e, nil
}

// putIP packs a 128 bit address slot. IPv4 uses the low 32 bits; the upper
// 96 must be given as data 0 under an all ones mask.
func (w *wire) putIP(name string, lo int, ip *FieldIP, v6 bool) error {
	if v6 {
		field.SetBytes(w.data, lo, ip.Data[:])
		field.SetBytes(w.mask, lo, ip.Mask[:])
		return nil
	}
	for i := 0; i < 12; i++ {
		if ip.Data[i] != 0 || ip.Mask[i] != 0xff {
			return invalid("%s: ipv4 address %v wider than 32 bits", name, ip)
		}
	}
	field.SetBytes(w.data, lo, ip.Data[12:])
	field.SetBytes(w.mask, lo, ip.Mask[12:])
	field.Fill(w.data, lo+127, lo+32, false)
	field.Fill(w.mask, lo+127, lo+32, true)
	return nil
}

func (w *wire) getIP(lo int, ip *FieldIP, v6 bool) {
	if v6 {
		field.GetBytes(ip.Data[:], w.data, lo)
		field.GetBytes(ip.Mask[:], w.mask, lo)
		return
	}
	field.GetBytes(ip.Data[12:], w.data, lo)
	field.GetBytes(ip.Mask[12:], w.mask, lo)
	for i := range ip.Mask[:12] {
		ip.Mask[i] = 0xff
	}
}

func (c BFSCodec) Decode(e *Entry) (Rule, error) {
	if err := checkEntry(c, e); err != nil {
		return nil, err
	}
	w := &wire{data: e.Data, mask: e.Mask}
	r := &BFS{
		IPv6: e.Overlay&OverlayIPv4 == 0,
		Meta: MetaOf(e.AD[0]),
	}
	f8 := func(lo int, n uint) Field8 {
		d, m := w.get(lo, n)
		return Field8{uint8(d), uint8(m)}
	}
	f16 := func(lo int) Field16 {
		d, m := w.get(lo, 16)
		return Field16{uint16(d), uint16(m)}
	}
	r.Ruleset = Field8{Data: f8(bfsRuleset, 1).Data, Mask: 1}
	r.Interface = f8(bfsInterface, 2)
	r.PPP = f8(bfsPPP, 1)
	r.L2Proto = f16(bfsL2Proto)
	for i, lo := range bfsMPLS {
		if e.Overlay&(OverlayVLAN1<<uint(i)) != 0 {
			r.VLAN[i] = f16(lo)
			r.MPLS[i] = Any32(32)
		} else {
			d, m := w.get(lo, 32)
			r.MPLS[i] = Field32{uint32(d), uint32(m)}
			r.VLAN[i] = Any16()
		}
	}
	r.LabelCount = f8(bfsLabelCount, 3)
	w.getIP(bfsSrcIP, &r.SrcIP, r.IPv6)
	w.getIP(bfsDstIP, &r.DstIP, r.IPv6)
	r.Protocol = f8(bfsProtocol, 8)
	r.SrcPort = f16(bfsSrcPort)
	r.DstPort = f16(bfsDstPort)
	r.TCPFlags = f8(bfsTCPFlags, 6)
	return r, nil
}
