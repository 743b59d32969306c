// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"

	"github.com/platinasystems/flags"
	"github.com/platinasystems/parms"

	"github.com/platinasystems/tcam/filter"
	"github.com/platinasystems/tcam/nse"
	"github.com/platinasystems/tcam/rule"
)

const DefaultFilter = "capture0"

type filterCommand struct{ *shell }

func (filterCommand) String() string { return "filter" }

func (filterCommand) Usage() string {
	return "filter [-name NAME] [-codec bfs|infiniband] [-banks DB,DB] [-tag TAG] [-verify] accept|status|unload"
}

func (filterCommand) Apropos() string { return "load, show or remove a filter" }

func parseBanks(s string) (b [2]uint8, err error) {
	f := strings.Split(s, ",")
	if len(f) != 2 {
		return b, fmt.Errorf("banks %q: %w", s, nse.ErrInvalidArgument)
	}
	for i := range b {
		if b[i], err = parseDB(f[i]); err != nil {
			return
		}
	}
	if b[0] == b[1] {
		err = fmt.Errorf("banks %q: %w", s, nse.ErrInvalidArgument)
	}
	return
}

// accept returns a rule matching every packet.
func accept(c rule.Codec, m rule.Meta) rule.Rule {
	switch c.(type) {
	case rule.InfinibandCodec:
		r := rule.AnyInfiniband()
		r.Meta = m
		return r
	}
	r := rule.AnyBFS()
	r.Meta = m
	return r
}

func (c filterCommand) Main(args ...string) error {
	flag, args := flags.New(args, "-verify")
	parm, args := parms.New(args, "-name", "-codec", "-banks", "-tag")
	if len(args) != 1 {
		return usage(c)
	}
	name := parm.ByName["-name"]
	if name == "" {
		name = DefaultFilter
	}
	codec := parm.ByName["-codec"]
	if codec == "" {
		codec = rule.BFSCodec{}.Name()
	}
	rc, found := rule.Codecs[codec]
	if !found {
		return fmt.Errorf("codec %q: %w", codec, nse.ErrInvalidArgument)
	}
	banks := [2]uint8{0, 1}
	if s := parm.ByName["-banks"]; s != "" {
		var err error
		if banks, err = parseBanks(s); err != nil {
			return err
		}
	}
	l := &filter.Loader{
		Name:   name,
		Engine: c.dev,
		Codec:  rc,
		Banks:  banks,
		Store:  c.store,
		Verify: flag.ByName["-verify"],
	}
	switch args[0] {
	case "accept":
		tag, err := parmUint(parm, "-tag", 0, 16)
		if err != nil {
			return err
		}
		r := accept(rc, rule.Meta{Tag: uint16(tag), Action: 1})
		rec, err := l.Load(rule.Slice(r))
		if err != nil {
			return err
		}
		fmt.Fprintln(c.w, rec)
	case "status":
		rec, err := l.Active()
		if err != nil {
			return err
		}
		fmt.Fprintln(c.w, rec)
	case "unload":
		return l.Unload()
	default:
		return usage(c)
	}
	return nil
}
