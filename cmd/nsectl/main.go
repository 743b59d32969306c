// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Nsectl drives a search engine co-processor from the command line.
//
//	nsectl [-sim] [-v] [-dev DEVICE] [-bar N] [-redis ADDRESS] [COMMAND [ARGS]...]
//
// Without a COMMAND, nsectl reads commands from standard input, one per
// line, with line editing when that is a terminal.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/platinasystems/flags"
	"github.com/platinasystems/liner"
	"github.com/platinasystems/log"
	"github.com/platinasystems/parms"

	"github.com/platinasystems/tcam/filter"
	"github.com/platinasystems/tcam/nse"
	"github.com/platinasystems/tcam/nse/sim"
)

const (
	Usage  = "nsectl [-sim] [-v] [-dev DEVICE] [-bar N] [-redis ADDRESS] [COMMAND [ARGS]...]"
	Prompt = "nse> "
)

type Command interface {
	String() string
	Usage() string
	Apropos() string
	Main(args ...string) error
}

type shell struct {
	dev   *nse.Device
	store filter.Store
	w     io.Writer

	commands map[string]Command
}

func main() {
	tty := isatty.IsTerminal(os.Stdin.Fd())
	if err := run(os.Stdin, os.Stdout, tty, os.Args[1:]...); err != nil {
		fmt.Fprintln(os.Stderr, "nsectl:", err)
		os.Exit(int(nse.Errno(err)))
	}
}

func run(r io.Reader, w io.Writer, tty bool, args ...string) error {
	flag, args := flags.New(args, "-sim", "-v", "-h", "-help")
	parm, args := parms.New(args, "-dev", "-bar", "-redis")
	if flag.ByName["-h"] || flag.ByName["-help"] {
		fmt.Fprintln(w, "usage:", Usage)
		return nil
	}
	cfg := nse.Config{Trace: flag.ByName["-v"]}

	var dev *nse.Device
	switch {
	case flag.ByName["-sim"]:
		dev = nse.New(sim.New(), sim.Size, cfg)
	case parm.ByName["-dev"] == "":
		return fmt.Errorf("missing -dev or -sim: %w", nse.ErrInvalidArgument)
	default:
		bar := uint64(0)
		if s := parm.ByName["-bar"]; s != "" {
			var err error
			if bar, err = strconv.ParseUint(s, 0, 8); err != nil {
				return fmt.Errorf("-bar %s: %w", s, nse.ErrInvalidArgument)
			}
		}
		var err error
		if dev, err = nse.Attach(parm.ByName["-dev"], uint(bar), cfg); err != nil {
			return err
		}
	}
	defer dev.Close()

	sh := newShell(dev, w)
	if a := parm.ByName["-redis"]; a != "" {
		sh.store = filter.NewRedisStore(a)
	}
	if len(args) > 0 {
		return sh.Main(args...)
	}
	if tty {
		return sh.interact()
	}
	return sh.script(r)
}

func newShell(dev *nse.Device, w io.Writer) *shell {
	sh := &shell{
		dev:      dev,
		store:    &filter.MemStore{},
		w:        w,
		commands: make(map[string]Command),
	}
	for _, c := range []Command{
		csrCommand{sh},
		dbCommand{sh},
		entryCommand{sh},
		lookupCommand{sh},
		gmrCommand{sh},
		resetCommand{sh},
		flushCommand{sh},
		infoCommand{sh},
		scratchCommand{sh},
		filterCommand{sh},
		helpCommand{sh},
	} {
		sh.commands[c.String()] = c
	}
	return sh
}

func (sh *shell) Main(args ...string) error {
	c, found := sh.commands[args[0]]
	if !found {
		return fmt.Errorf("%s: command not found: %w", args[0], nse.ErrInvalidArgument)
	}
	return c.Main(args[1:]...)
}

// line runs one input line; comments and blank lines are ignored.
func (sh *shell) line(s string) error {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	args := strings.Fields(s)
	if len(args) == 0 {
		return nil
	}
	return sh.Main(args...)
}

// script stops at the first failing line.
func (sh *shell) script(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		if err := sh.line(scanner.Text()); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return scanner.Err()
}

func (sh *shell) interact() error {
	l := liner.NewLiner()
	defer l.Close()
	l.SetCtrlCAborts(true)
	for {
		s, err := l.Prompt(Prompt)
		if err == io.EOF || err == liner.ErrPromptAborted {
			return nil
		}
		if err != nil {
			return err
		}
		l.AppendHistory(s)
		if err = sh.line(s); err != nil {
			log.Print("err", err)
		}
	}
}

type helpCommand struct{ *shell }

func (helpCommand) String() string  { return "help" }
func (helpCommand) Usage() string   { return "help [COMMAND]" }
func (helpCommand) Apropos() string { return "list commands" }

func (c helpCommand) Main(args ...string) error {
	if len(args) > 0 {
		x, found := c.commands[args[0]]
		if !found {
			return fmt.Errorf("%s: command not found: %w", args[0], nse.ErrInvalidArgument)
		}
		fmt.Fprintln(c.w, "usage:", x.Usage())
		return nil
	}
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(c.w, "%-8s %s\n", name, c.commands[name].Apropos())
	}
	return nil
}

// Argument parsing shared by the commands.

// widen left pads b with zeros to the entry width of db.
func (sh *shell) widen(db uint8, b []byte) ([]byte, nse.Width, error) {
	c, err := sh.dev.Database(db)
	if err != nil {
		return nil, 0, err
	}
	if n := c.Width.Bytes(); len(b) < n {
		b = append(make([]byte, n-len(b)), b...)
	}
	return b, c.Width, nil
}

func usage(c Command) error {
	return fmt.Errorf("usage: %s: %w", c.Usage(), nse.ErrInvalidArgument)
}

func parseUint(what, s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", what, s, nse.ErrInvalidArgument)
	}
	return v, nil
}

func parseDB(s string) (uint8, error) {
	v, err := parseUint("database", s, 8)
	return uint8(v), err
}

func parseAddr(s string) (uint32, error) {
	v, err := parseUint("address", s, 32)
	return uint32(v), err
}

// parmUint returns def for an absent parameter.
func parmUint(p *parms.Parms, name string, def uint64, bits int) (uint64, error) {
	s := p.ByName[name]
	if s == "" {
		return def, nil
	}
	return parseUint(name, s, bits)
}
