// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nse

import (
	"fmt"
	"time"

	"github.com/platinasystems/log"
)

// send writes the header row and payload rows to command RAM, high word then
// low word, and starts the transaction. There is no frame length; the chip
// signals completion with the done bit.
func (d *Device) send(c *Command, tx []uint32) error {
	if len(tx) > MaxPayloadWords {
		return invalid("%v: %d payload words > %d", c, len(tx), MaxPayloadWords)
	}
	c.Rows = uint8((len(tx) + 1) / 2)
	c.Context = d.context()
	c.DeviceID = d.id
	if err := c.validate(); err != nil {
		return err
	}
	w0, w1 := c.Words()
	d.bus.StoreUint32(CommandRAMHigh, w0)
	d.bus.StoreUint32(CommandRAMLow, w1)
	for i := 0; i < len(tx); i += 2 {
		lo := uint32(0)
		if i+1 < len(tx) {
			lo = tx[i+1]
		}
		d.bus.StoreUint32(CommandRAMHigh, tx[i])
		d.bus.StoreUint32(CommandRAMLow, lo)
	}
	d.bus.StoreUint32(ConfigStatus, uint32(statusStart))
	return nil
}

// ReadMailboxResult polls the status register until the chip sets done and
// returns the status word. A poll that finds done returns after exactly that
// many register reads.
func (d *Device) ReadMailboxResult() (uint32, error) {
	n, interval := d.pollLimit(), d.pollInterval()
	for i := 0; i < n; i++ {
		if i > 0 {
			time.Sleep(interval)
		}
		x := status(d.bus.LoadUint32(ConfigStatus))
		if x&(statusDone|statusFault) != 0 {
			return uint32(x), x.toError()
		}
	}
	return 0, fmt.Errorf("%d polls: %w", n, ErrTimeout)
}

var tracef = log.Printf

// do issues one transaction and collects len(rx) result words.
func (d *Device) do(c Command, tx, rx []uint32) error {
	if err := d.send(&c, tx); err != nil {
		return err
	}
	if _, err := d.ReadMailboxResult(); err != nil {
		if d.Trace {
			tracef("debug", "nse%d: %v tx %08x: %v", d.id, &c, tx, err)
		}
		return fmt.Errorf("%v: %w", &c, err)
	}
	for i := range rx {
		rx[i] = d.result()
	}
	if d.Trace {
		tracef("debug", "nse%d: %v tx %08x rx %08x", d.id, &c, tx, rx)
	}
	return nil
}

func (d *Device) result() uint32 { return d.bus.LoadUint32(ReadInterfaceData) }

func indirect(db uint8, sub SubInstruction, r Region, addr uint32) Command {
	return Command{
		Instruction: InstrIndirect,
		Database:    db,
		Sub:         sub,
		Region:      r,
		Address:     addr,
	}
}
