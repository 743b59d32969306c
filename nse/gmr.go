// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nse

const (
	// Global mask registers; 144 bit masks use an even/odd pair.
	NGMR     = 64
	GMRBits  = 72
	GMRBytes = GMRBits / 8
)

// GMRValue is a 72 bit global mask, most significant byte first.
type GMRValue [GMRBytes]byte

func checkGMRIndex(i uint8) error {
	if i >= NGMR {
		return invalid("gmr %d >= %d", i, NGMR)
	}
	return nil
}

func (d *Device) WriteGMR(i uint8, v GMRValue) error {
	if err := checkGMRIndex(i); err != nil {
		return err
	}
	x, err := d.ReadCSR(CSRConfig)
	if err != nil {
		return err
	}
	tx := payload(v[:], GMRBits, RegionGMR, x&ConfigLane18 != 0)
	return d.do(indirect(0, SubWrite, RegionGMR, uint32(i)), tx, nil)
}

func (d *Device) ReadGMR(i uint8) (v GMRValue, err error) {
	if err = checkGMRIndex(i); err != nil {
		return
	}
	var rx [rowWords]uint32
	if err = d.do(indirect(0, SubRead, RegionGMR, uint32(i)), nil, rx[:]); err != nil {
		return
	}
	copy(v[:], Bytes(rx[:], GMRBytes))
	return
}
