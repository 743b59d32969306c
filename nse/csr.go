// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nse

func checkCSR(a uint32) error {
	if a > CSRMax {
		return invalid("csr 0x%x > 0x%x", a, CSRMax)
	}
	return nil
}

func (d *Device) ReadCSR(a uint32) (uint32, error) {
	if err := checkCSR(a); err != nil {
		return 0, err
	}
	var rx [1]uint32
	err := d.do(indirect(0, SubRead, RegionCSR, a), nil, rx[:])
	return rx[0], err
}

func (d *Device) WriteCSR(a, v uint32) error {
	if err := checkCSR(a); err != nil {
		return err
	}
	return d.do(indirect(0, SubWrite, RegionCSR, a), []uint32{v}, nil)
}
