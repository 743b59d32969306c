// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/platinasystems/parms"
)

type lookupCommand struct{ *shell }

func (lookupCommand) String() string  { return "lookup" }
func (lookupCommand) Usage() string   { return "lookup [-gmr N] DB KEY" }
func (lookupCommand) Apropos() string { return "search a database" }

// The key is as wide as the database entries.
func (c lookupCommand) Main(args ...string) error {
	parm, args := parms.New(args, "-gmr")
	if len(args) != 2 {
		return usage(c)
	}
	db, err := parseDB(args[0])
	if err != nil {
		return err
	}
	gmr, err := parmUint(parm, "-gmr", 0, 8)
	if err != nil {
		return err
	}
	key, err := parseHex("key", args[1])
	if err != nil {
		return err
	}
	key, width, err := c.widen(db, key)
	if err != nil {
		return err
	}
	r, err := c.dev.Lookup(db, key, width.Bits(), uint8(gmr))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.w, r)
	return nil
}
