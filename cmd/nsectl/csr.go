// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import "fmt"

type csrCommand struct{ *shell }

func (csrCommand) String() string  { return "csr" }
func (csrCommand) Usage() string   { return "csr ADDRESS [VALUE]" }
func (csrCommand) Apropos() string { return "read or write a configuration register" }

func (c csrCommand) Main(args ...string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage(c)
	}
	a, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	if len(args) == 2 {
		v, err := parseUint("value", args[1], 32)
		if err != nil {
			return err
		}
		return c.dev.WriteCSR(a, uint32(v))
	}
	v, err := c.dev.ReadCSR(a)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.w, "0x%03x: 0x%08x\n", a, v)
	return nil
}
