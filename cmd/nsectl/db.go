// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/platinasystems/parms"

	"github.com/platinasystems/tcam/nse"
)

type dbCommand struct{ *shell }

func (dbCommand) String() string { return "db" }

func (dbCommand) Usage() string {
	return "db ID [-width BITS] [-ad BITS] [-segments BITMAP] [-age COUNT] [-flags FLAG[,FLAG]...|none]"
}

func (dbCommand) Apropos() string { return "show or configure a database" }

var flagNames = map[string]nse.Flags{
	"power-save":  nse.PowerSave,
	"activity":    nse.ActivityEnable,
	"return-mode": nse.ReturnMode,
	"lane18":      nse.Lane18,
	"none":        0,
}

func parseFlags(s string) (f nse.Flags, err error) {
	for _, name := range strings.Split(s, ",") {
		x, found := flagNames[name]
		if !found {
			return 0, fmt.Errorf("flag %q: %w", name, nse.ErrInvalidArgument)
		}
		f |= x
	}
	return
}

func parseAD(s string) (nse.ADSize, error) {
	for a := nse.ADNone; a.Valid(); a++ {
		if strconv.Itoa(a.Bits()) == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("ad %q: %w", s, nse.ErrInvalidArgument)
}

func (c dbCommand) Main(args ...string) error {
	parm, args := parms.New(args, "-width", "-ad", "-segments", "-age", "-flags")
	if len(args) != 1 {
		return usage(c)
	}
	id, err := parseDB(args[0])
	if err != nil {
		return err
	}
	var (
		db   nse.Database
		mask nse.DatabaseMask
	)
	if s := parm.ByName["-width"]; s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("width %q: %w", s, nse.ErrInvalidArgument)
		}
		if db.Width, err = nse.WidthOf(n); err != nil {
			return err
		}
		mask |= nse.SetWidth
	}
	if s := parm.ByName["-ad"]; s != "" {
		if db.AD, err = parseAD(s); err != nil {
			return err
		}
		mask |= nse.SetAD
	}
	if s := parm.ByName["-flags"]; s != "" {
		if db.Flags, err = parseFlags(s); err != nil {
			return err
		}
		mask |= nse.SetFlags
	}
	if s := parm.ByName["-segments"]; s != "" {
		v, err := parseUint("segments", s, 32)
		if err != nil {
			return err
		}
		db.Segments = uint32(v)
		mask |= nse.SetSegments
	}
	if s := parm.ByName["-age"]; s != "" {
		v, err := parseUint("age", s, 32)
		if err != nil {
			return err
		}
		db.AgeCount = uint32(v)
		mask |= nse.SetAgeCount
	}
	if mask != 0 {
		return c.dev.SetDatabase(id, mask, &db)
	}
	if db, err = c.dev.Database(id); err != nil {
		return err
	}
	fmt.Fprintf(c.w, "db %d: %v\n", id, &db)
	return nil
}
