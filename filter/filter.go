// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package filter loads rule sets into a pair of search engine databases,
// writing the inactive one while the other keeps filtering and then
// switching the capture path over.
package filter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/platinasystems/log"
	uuid "github.com/satori/go.uuid"

	"github.com/platinasystems/tcam/nse"
	"github.com/platinasystems/tcam/rule"
)

// Engine is the part of *nse.Device a Loader drives.
type Engine interface {
	Database(id uint8) (nse.Database, error)
	WriteEntry(db uint8, addr uint32, data, mask []byte, gmr uint8, validate bool) error
	DualWrite(db uint8, addr uint32, data, mask []byte, ad []uint32, gmr uint8) error
	WriteAD(db uint8, addr uint32, ad []uint32) error
	ReadEntryFull(db uint8, addr uint32) (nse.Entry, error)
	ReadAD(db uint8, addr uint32) ([]uint32, error)
	ClearValid(db uint8, addr uint32) error
}

// Switch points the capture path at a database. It is card specific.
type Switch interface {
	Select(db uint8) error
}

// SwitchFunc adapts a function to a Switch.
type SwitchFunc func(db uint8) error

func (f SwitchFunc) Select(db uint8) error { return f(db) }

var ErrVerify = errors.New("read back mismatch")

const DefaultRetries = 3

type Loader struct {
	Name   string
	Engine Engine
	Codec  rule.Codec
	// Databases of bank 0 and 1, configured for the codec's width and
	// associated data size.
	Banks [2]uint8
	// Switch may be nil when the caller selects the database from the
	// returned record.
	Switch Switch
	Store  Store
	// GMR selected for entry writes.
	GMR uint8
	// Read each entry back after writing.
	Verify bool
	// Attempts per transaction that times out; zero means DefaultRetries.
	Retries int
	// Backoff between attempts.
	Backoff backoff.Backoff

	mu sync.Mutex
	// Entries per bank that may still be valid after a load that failed
	// and could not clean up after itself.
	dirty [2]int
}

func (l *Loader) retries() int {
	if l.Retries > 0 {
		return l.Retries
	}
	return DefaultRetries
}

// try repeats f while it times out.
func (l *Loader) try(f func() error) (err error) {
	b := l.Backoff
	b.Reset()
	for i := 0; ; i++ {
		err = f()
		if !errors.Is(err, nse.ErrTimeout) || i+1 >= l.retries() {
			return
		}
		time.Sleep(b.Duration())
	}
}

func (l *Loader) record() (*Record, error) {
	r, err := l.Store.Get(l.Name)
	if errors.Is(err, ErrNoRecord) {
		return &Record{Name: l.Name, Codec: l.Codec.Name(), Bank: -1}, nil
	}
	return r, err
}

// Active returns the record of the last completed load.
func (l *Loader) Active() (*Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Store.Get(l.Name)
}

func (l *Loader) checkBank(db uint8) (c nse.Database, err error) {
	err = l.try(func() (err error) {
		c, err = l.Engine.Database(db)
		return
	})
	if err != nil {
		return
	}
	if c.Width != l.Codec.Width() || c.AD != l.Codec.AD() {
		err = fmt.Errorf("%s: db %d is %v %v, %s needs %v %v: %w",
			l.Name, db, c.Width, c.AD, l.Codec.Name(), l.Codec.Width(), l.Codec.AD(),
			nse.ErrInvalidArgument)
	}
	return
}

// Load writes every rule of src to the inactive bank, clears what remains
// of that bank's previous contents, and switches to it. On error the
// active bank is left in place and the inactive one is invalidated.
func (l *Loader) Load(src rule.Source) (*Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, err := l.record()
	if err != nil {
		return nil, err
	}
	bank := 0
	if rec.Bank == 0 {
		bank = 1
	}
	db := l.Banks[bank]
	c, err := l.checkBank(db)
	if err != nil {
		return nil, err
	}
	dual := nse.DualWriteFits(&c)

	limit := max(rec.Rules[bank], l.dirty[bank])
	n := 0
	for ; ; n++ {
		r, err := src.Next()
		if err == io.EOF {
			break
		}
		if err == nil {
			err = l.write(db, uint32(n), r, dual)
		}
		if err != nil {
			log.Printf("err", "%s: rule %d: %v", l.Name, n, err)
			// A failed write may still have landed.
			l.abort(rec, bank, max(limit, n+1))
			return nil, fmt.Errorf("%s: rule %d: %w", l.Name, n, err)
		}
	}
	if a, err := l.clear(db, n, limit); err != nil {
		log.Printf("err", "%s: clear %d: %v", l.Name, a, err)
		l.abort(rec, bank, max(limit, n))
		return nil, fmt.Errorf("%s: clear %d: %w", l.Name, a, err)
	}
	l.dirty[bank] = 0
	if l.Switch != nil {
		if err = l.Switch.Select(db); err != nil {
			// The card may or may not have switched; leave the rules in
			// place and clear them with the next load of this bank.
			l.dirty[bank] = max(limit, n)
			return nil, fmt.Errorf("%s: select db %d: %w", l.Name, db, err)
		}
	}

	rec.Codec = l.Codec.Name()
	rec.Generation = uuid.NewV4()
	rec.Bank = bank
	rec.Database = db
	rec.Rules[bank] = n
	rec.Loaded = time.Now()
	if err = l.Store.Put(rec); err != nil {
		return nil, err
	}
	log.Printf("info", "%s: %d %s rules active in db %d generation %v",
		l.Name, n, rec.Codec, db, rec.Generation)
	return rec, nil
}

// clear invalidates entries [from, to) of db, returning the address that
// failed.
func (l *Loader) clear(db uint8, from, to int) (int, error) {
	for a := from; a < to; a++ {
		if err := l.try(func() error { return l.Engine.ClearValid(db, uint32(a)) }); err != nil {
			return a, err
		}
	}
	return to, nil
}

// abort invalidates what a failed load may have left in the inactive bank.
// Entries it cannot clear are remembered so the next load or unload of the
// bank covers them.
func (l *Loader) abort(rec *Record, bank, written int) {
	db := l.Banks[bank]
	a, err := l.clear(db, 0, written)
	if err == nil {
		l.dirty[bank] = 0
		return
	}
	log.Printf("err", "%s: db %d entries %d..%d left valid: %v",
		l.Name, db, a, written-1, err)
	l.dirty[bank] = written
	if rec.Bank < 0 || rec.Rules[bank] >= written {
		return
	}
	rec.Rules[bank] = written
	if err = l.Store.Put(rec); err != nil {
		log.Printf("err", "%s: %v", l.Name, err)
	}
}

func (l *Loader) write(db uint8, addr uint32, r rule.Rule, dual bool) error {
	e, err := l.Codec.Encode(r)
	if err != nil {
		return err
	}
	if dual {
		err = l.try(func() error {
			return l.Engine.DualWrite(db, addr, e.Data, e.Mask, e.AD, l.GMR)
		})
	} else {
		err = l.try(func() error { return l.Engine.WriteAD(db, addr, e.AD) })
		if err == nil {
			err = l.try(func() error {
				return l.Engine.WriteEntry(db, addr, e.Data, e.Mask, l.GMR, true)
			})
		}
	}
	if err != nil || !l.Verify {
		return err
	}
	return l.verify(db, addr, e)
}

func (l *Loader) verify(db uint8, addr uint32, e *rule.Entry) error {
	var x nse.Entry
	err := l.try(func() (err error) {
		x, err = l.Engine.ReadEntryFull(db, addr)
		return
	})
	if err != nil {
		return err
	}
	if !x.Valid || !bytes.Equal(x.Data, e.Data) || !bytes.Equal(x.Mask, e.Mask) {
		return fmt.Errorf("db %d entry %d: %w", db, addr, ErrVerify)
	}
	var ad []uint32
	err = l.try(func() (err error) {
		ad, err = l.Engine.ReadAD(db, addr)
		return
	})
	if err != nil {
		return err
	}
	for i := range e.AD {
		if i >= len(ad) || ad[i] != e.AD[i] {
			return fmt.Errorf("db %d ad %d: %w", db, addr, ErrVerify)
		}
	}
	return nil
}

// Unload invalidates the rules of both banks and forgets the record. The
// capture path still points at the last active database which now
// matches nothing.
func (l *Loader) Unload() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, err := l.Store.Get(l.Name)
	if err != nil {
		return err
	}
	for bank, n := range rec.Rules {
		db := l.Banks[bank]
		if a, err := l.clear(db, 0, max(n, l.dirty[bank])); err != nil {
			log.Printf("err", "%s: unload db %d entry %d: %v", l.Name, db, a, err)
			return fmt.Errorf("%s: unload db %d entry %d: %w", l.Name, db, a, err)
		}
		l.dirty[bank] = 0
	}
	return l.Store.Delete(l.Name)
}
