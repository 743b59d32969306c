// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinasystems/tcam/internal/field"
	"github.com/platinasystems/tcam/nse"
)

func TestBFSScenario(t *testing.T) {
	r := AnyBFS()
	r.Ruleset = Field8{Data: 1}
	r.Interface = Field8{Data: 2, Mask: 3}
	r.L2Proto = Field16{Data: 0x0800}
	e, err := BFSCodec{}.Encode(r)
	require.NoError(t, err)
	require.Len(t, e.Data, 72)
	require.Len(t, e.Mask, 72)

	w := &wire{data: e.Data, mask: e.Mask}
	d, m := w.get(bfsRuleset, 1)
	assert.Equal(t, uint64(1), d)
	assert.Equal(t, uint64(1), m, "ruleset always don't care")
	d, m = w.get(bfsInterface, 2)
	assert.Equal(t, uint64(2), d)
	assert.Equal(t, uint64(3), m)
	d, m = w.get(bfsL2Proto, 16)
	assert.Equal(t, uint64(0x0800), d)
	assert.Equal(t, uint64(0), m)
	assert.Equal(t, OverlayIPv4, e.Overlay)

	// Bits above the 389 bit layout are don't care.
	for i := BFSBits; i < 8*len(e.Mask); i++ {
		require.True(t, field.Get1(e.Mask, i), "bit %d", i)
		require.False(t, field.Get1(e.Data, i), "bit %d", i)
	}
}

func TestBFSRoundTrip(t *testing.T) {
	ip6 := FieldIP{}
	for i := range ip6.Data {
		ip6.Data[i] = byte(0x20 + i)
	}
	for i := 8; i < 16; i++ {
		ip6.Mask[i] = 0xff
	}
	for _, x := range []struct {
		name string
		rule func(r *BFS)
		ov   Overlay
	}{
		{"any v6", func(r *BFS) { r.IPv6 = true }, 0},
		{"any v4", func(r *BFS) {}, OverlayIPv4},
		{"v4", func(r *BFS) {
			r.SrcIP = IPv4([4]byte{10, 0, 0, 1}, [4]byte{})
			r.DstIP = IPv4([4]byte{192, 168, 0, 0}, [4]byte{0, 0, 0xff, 0xff})
			r.Protocol = Exact8(6)
			r.SrcPort = Field16{Data: 80}
			r.DstPort = Field16{Data: 0x400, Mask: 0x3ff}
			r.TCPFlags = Field8{Data: 0x12, Mask: 0x20}
		}, OverlayIPv4},
		{"v6 mpls", func(r *BFS) {
			r.IPv6 = true
			r.SrcIP = ip6
			r.MPLS[0] = Field32{Data: 0x12345678}
			r.MPLS[1] = Field32{Data: 0x9abc0000, Mask: 0xffff}
			r.LabelCount = Field8{Data: 2}
			r.PPP = Exact8(1)
		}, 0},
		{"vlan", func(r *BFS) {
			r.VLAN[0] = Field16{Data: 100}
			r.VLAN[1] = Field16{Data: 200, Mask: 0xf}
			r.L2Proto = Field16{Data: 0x8100}
		}, OverlayIPv4 | OverlayVLAN1 | OverlayVLAN2},
		{"vlan and mpls", func(r *BFS) {
			r.IPv6 = true
			r.VLAN[1] = Field16{Data: 7}
			r.MPLS[0] = Field32{Data: 1}
		}, OverlayVLAN2},
		{"meta", func(r *BFS) {
			r.Meta = Meta{Tag: 0xbeef, Action: 1, Class: 2}
			r.Interface = Exact8(3)
		}, OverlayIPv4},
	} {
		r := AnyBFS()
		r.Ruleset = Field8{Data: 1, Mask: 1}
		x.rule(r)
		e, err := BFSCodec{}.Encode(r)
		require.NoError(t, err, x.name)
		assert.Equal(t, x.ov, e.Overlay, x.name)
		got, err := BFSCodec{}.Decode(e)
		require.NoError(t, err, x.name)
		assert.Equal(t, r, got, x.name)
	}
}

func TestBFSVLANPacking(t *testing.T) {
	r := AnyBFS()
	r.VLAN[1] = Field16{Data: 0xabc, Mask: 0xf000}
	e, err := BFSCodec{}.Encode(r)
	require.NoError(t, err)
	w := &wire{data: e.Data, mask: e.Mask}
	d, m := w.get(bfsMPLSBottom, 32)
	assert.Equal(t, uint64(0x00000abc), d)
	assert.Equal(t, uint64(0xfffff000), m)
	d, m = w.get(bfsMPLSTop, 32)
	assert.Equal(t, uint64(0), d)
	assert.Equal(t, uint64(0xffffffff), m)
}

func TestBFSIPv4Slot(t *testing.T) {
	r := AnyBFS()
	r.DstIP = IPv4([4]byte{1, 2, 3, 4}, [4]byte{})
	e, err := BFSCodec{}.Encode(r)
	require.NoError(t, err)
	w := &wire{data: e.Data, mask: e.Mask}
	d, m := w.get(bfsDstIP, 32)
	assert.Equal(t, uint64(0x01020304), d)
	assert.Equal(t, uint64(0), m)
	d, m = w.get(bfsDstIP+32, 64)
	assert.Equal(t, uint64(0), d)
	assert.Equal(t, ^uint64(0), m)
	d, m = w.get(bfsDstIP+96, 32)
	assert.Equal(t, uint64(0), d)
	assert.Equal(t, uint64(0xffffffff), m)
}

func TestBFSInvalid(t *testing.T) {
	for _, x := range []struct {
		name string
		rule func(r *BFS)
	}{
		{"interface", func(r *BFS) { r.Interface = Exact8(4) }},
		{"interface mask", func(r *BFS) { r.Interface = Field8{Mask: 7} }},
		{"ppp", func(r *BFS) { r.PPP = Exact8(2) }},
		{"labels", func(r *BFS) { r.LabelCount = Exact8(8) }},
		{"tcp flags", func(r *BFS) { r.TCPFlags = Exact8(0x40) }},
		{"overlay", func(r *BFS) {
			r.MPLS[0] = Field32{Data: 1}
			r.VLAN[0] = Field16{Data: 1}
		}},
		{"wide v4", func(r *BFS) { r.SrcIP.Data[0] = 1 }},
		{"v4 upper mask", func(r *BFS) {
			r.SrcIP = IPv4([4]byte{10, 1, 2, 3}, [4]byte{})
			for i := 0; i < 12; i++ {
				r.SrcIP.Mask[i] = 0
			}
		}},
		{"v4 upper mask byte", func(r *BFS) { r.DstIP.Mask[11] = 0x7f }},
		{"vlan data under any", func(r *BFS) { r.VLAN[0] = Field16{Data: 7, Mask: 0xffff} }},
		{"mpls data under any", func(r *BFS) {
			r.MPLS[1] = Field32{Data: 1, Mask: 0xffffffff}
			r.VLAN[1] = Field16{Data: 2}
		}},
		{"action", func(r *BFS) { r.Action = 2 }},
		{"class", func(r *BFS) { r.Class = 4 }},
	} {
		r := AnyBFS()
		x.rule(r)
		_, err := BFSCodec{}.Encode(r)
		assert.ErrorIs(t, err, nse.ErrInvalidArgument, x.name)
	}
	_, err := BFSCodec{}.Encode(AnyInfiniband())
	assert.ErrorIs(t, err, nse.ErrInvalidArgument)
}

func TestBFSDecodeChecksEntry(t *testing.T) {
	c := BFSCodec{}
	for _, e := range []*Entry{
		{Data: make([]byte, 71), Mask: make([]byte, 72), AD: []uint32{0}},
		{Data: make([]byte, 72), Mask: make([]byte, 9), AD: []uint32{0}},
		{Data: make([]byte, 72), Mask: make([]byte, 72)},
	} {
		_, err := c.Decode(e)
		assert.ErrorIs(t, err, nse.ErrInvalidArgument)
	}
	assert.Equal(t, nse.Width576, c.Width())
	assert.Equal(t, nse.AD32, c.AD())
	assert.GreaterOrEqual(t, 8*c.Width().Bytes(), BFSBits)
}
