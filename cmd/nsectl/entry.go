// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/platinasystems/flags"
	"github.com/platinasystems/parms"

	"github.com/platinasystems/tcam/nse"
)

type entryCommand struct{ *shell }

func (entryCommand) String() string { return "entry" }

func (entryCommand) Usage() string {
	return `entry read DB ADDRESS
entry write [-gmr N] [-keep-valid] DB ADDRESS DATA MASK
entry dual [-gmr N] DB ADDRESS DATA MASK AD...
entry valid|invalid DB ADDRESS
entry ad DB ADDRESS [AD...]
entry activity DB ADDRESS
entry copy DB SOURCE DESTINATION`
}

func (entryCommand) Apropos() string { return "read or write core entries and associated data" }

func parseHex(what, s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", what, s, nse.ErrInvalidArgument)
	}
	return b, nil
}

func parseWords(args []string) ([]uint32, error) {
	w := make([]uint32, len(args))
	for i, s := range args {
		v, err := parseUint("ad", s, 32)
		if err != nil {
			return nil, err
		}
		w[i] = uint32(v)
	}
	return w, nil
}

func (c entryCommand) Main(args ...string) error {
	flag, args := flags.New(args, "-keep-valid")
	parm, args := parms.New(args, "-gmr")
	if len(args) < 3 {
		return usage(c)
	}
	op := args[0]
	db, err := parseDB(args[1])
	if err != nil {
		return err
	}
	addr, err := parseAddr(args[2])
	if err != nil {
		return err
	}
	gmr, err := parmUint(parm, "-gmr", 0, 8)
	if err != nil {
		return err
	}
	args = args[3:]
	switch op {
	case "read":
		e, err := c.dev.ReadEntryFull(db, addr)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.w, "db %d entry 0x%05x valid %v\n data %x\n mask %x\n",
			db, addr, e.Valid, e.Data, e.Mask)
	case "write", "dual":
		if len(args) < 2 || (op == "write" && len(args) != 2) {
			return usage(c)
		}
		data, err := parseHex("data", args[0])
		if err != nil {
			return err
		}
		mask, err := parseHex("mask", args[1])
		if err != nil {
			return err
		}
		if data, _, err = c.widen(db, data); err != nil {
			return err
		}
		if mask, _, err = c.widen(db, mask); err != nil {
			return err
		}
		if op == "write" {
			return c.dev.WriteEntry(db, addr, data, mask, uint8(gmr), !flag.ByName["-keep-valid"])
		}
		ad, err := parseWords(args[2:])
		if err != nil {
			return err
		}
		return c.dev.DualWrite(db, addr, data, mask, ad, uint8(gmr))
	case "valid":
		return c.dev.SetValid(db, addr)
	case "invalid":
		return c.dev.ClearValid(db, addr)
	case "ad":
		if len(args) > 0 {
			ad, err := parseWords(args)
			if err != nil {
				return err
			}
			return c.dev.WriteAD(db, addr, ad)
		}
		ad, err := c.dev.ReadAD(db, addr)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.w, "db %d ad 0x%05x: %08x\n", db, addr, ad)
	case "activity":
		hit, err := c.dev.Activity(db, addr)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.w, "db %d entry 0x%05x activity %v\n", db, addr, hit)
	case "copy":
		if len(args) != 1 {
			return usage(c)
		}
		dst, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		return c.dev.SRAMCopy(db, addr, dst)
	default:
		return usage(c)
	}
	return nil
}
