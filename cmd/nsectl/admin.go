// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/platinasystems/flags"

	"github.com/platinasystems/tcam/nse"
)

type gmrCommand struct{ *shell }

func (gmrCommand) String() string  { return "gmr" }
func (gmrCommand) Usage() string   { return "gmr INDEX [MASK]" }
func (gmrCommand) Apropos() string { return "read or write a global mask register" }

func (c gmrCommand) Main(args ...string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage(c)
	}
	i, err := parseUint("gmr", args[0], 8)
	if err != nil {
		return err
	}
	if len(args) == 2 {
		b, err := parseHex("mask", args[1])
		if err != nil {
			return err
		}
		if len(b) > nse.GMRBytes {
			return fmt.Errorf("mask %s wider than %d bits: %w", args[1], nse.GMRBits, nse.ErrInvalidArgument)
		}
		var v nse.GMRValue
		copy(v[nse.GMRBytes-len(b):], b)
		return c.dev.WriteGMR(uint8(i), v)
	}
	v, err := c.dev.ReadGMR(uint8(i))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.w, "gmr %d: %x\n", i, v[:])
	return nil
}

type resetCommand struct{ *shell }

func (resetCommand) String() string  { return "reset" }
func (resetCommand) Usage() string   { return "reset [-core] [-sram] [-csr]" }
func (resetCommand) Apropos() string { return "reset all or part of the chip" }

func (c resetCommand) Main(args ...string) error {
	flag, args := flags.New(args, "-core", "-sram", "-csr")
	if len(args) != 0 {
		return usage(c)
	}
	var f nse.ResetFlags
	for name, x := range map[string]nse.ResetFlags{
		"-core": nse.ResetCore,
		"-sram": nse.ResetSRAM,
		"-csr":  nse.ResetCSR,
	} {
		if flag.ByName[name] {
			f |= x
		}
	}
	if f == 0 {
		f = nse.ResetAll
	}
	return c.dev.Reset(f)
}

type flushCommand struct{ *shell }

func (flushCommand) String() string  { return "flush" }
func (flushCommand) Usage() string   { return "flush" }
func (flushCommand) Apropos() string { return "invalidate every entry" }

func (c flushCommand) Main(args ...string) error {
	if len(args) != 0 {
		return usage(c)
	}
	return c.dev.Flush()
}

type infoCommand struct{ *shell }

func (infoCommand) String() string  { return "info" }
func (infoCommand) Usage() string   { return "info" }
func (infoCommand) Apropos() string { return "identify the chip and its databases" }

func (c infoCommand) Main(args ...string) error {
	if len(args) != 0 {
		return usage(c)
	}
	s, err := c.dev.Info()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.w, s)
	return nil
}

type scratchCommand struct{ *shell }

func (scratchCommand) String() string  { return "scratch" }
func (scratchCommand) Usage() string   { return "scratch INDEX [VALUE]" }
func (scratchCommand) Apropos() string { return "read or write a host scratch word" }

func (c scratchCommand) Main(args ...string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage(c)
	}
	i, err := parseUint("scratch", args[0], 8)
	if err != nil {
		return err
	}
	if len(args) == 2 {
		v, err := parseUint("value", args[1], 32)
		if err != nil {
			return err
		}
		return c.dev.SetScratch(int(i), uint32(v))
	}
	v, err := c.dev.Scratch(int(i))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.w, "scratch %d: 0x%08x\n", i, v)
	return nil
}
