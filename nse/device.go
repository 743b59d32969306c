// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nse drives the TCAM network search engine of a capture card
// through its command mailbox.
//
// A Device is not safe for concurrent use; the registers offer no host
// visible arbitration so every transaction runs start to done before the
// next is issued.
package nse

import (
	"fmt"
	"io"
	"time"

	"github.com/platinasystems/log"
	"github.com/platinasystems/tcam/hw"
)

const (
	DefaultPollLimit    = 256
	DefaultPollInterval = 2 * time.Microsecond
	DefaultSettleDelay  = 200 * time.Microsecond
	NScratch            = 16
)

// Config tunes the mailbox discipline; zero values take the defaults.
type Config struct {
	PollLimit    int
	PollInterval time.Duration
	// Unpolled wait after reset.
	SettleDelay time.Duration
	// Routing tag; 0 means DefaultContext.
	Context uint8
	// Log every transaction at debug priority.
	Trace bool
}

type Device struct {
	Config

	bus    hw.Bus
	size   int
	closer io.Closer

	id      uint8
	scratch [NScratch]uint32
}

// New wraps a register window and samples the device id the chip latched
// from its cascade slot.
func New(bus hw.Bus, size int, c Config) *Device {
	d := &Device{
		Config: c,
		bus:    bus,
		size:   size,
	}
	d.id = status(bus.LoadUint32(ConfigStatus)).deviceID()
	return d
}

// Attach resolves the register block of device (see hw.Resolve), then
// identifies the chip.
func Attach(device string, bar uint, c Config) (*Device, error) {
	w, err := hw.Resolve(device, bar)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", device, err, ErrDeviceNotFound)
	}
	d := New(w, w.Size(), c)
	d.closer = w
	if _, err = d.Identify(); err != nil {
		w.Close()
		return nil, err
	}
	return d, nil
}

// Close releases the register window of an attached device.
func (d *Device) Close() (err error) {
	if d.closer != nil {
		err = d.closer.Close()
		d.closer = nil
	}
	return
}

func (d *Device) ID() uint8      { return d.id }
func (d *Device) Size() int      { return d.size }
func (d *Device) String() string { return fmt.Sprintf("nse%d", d.id) }

func (d *Device) pollLimit() int {
	if d.PollLimit > 0 {
		return d.PollLimit
	}
	return DefaultPollLimit
}

func (d *Device) pollInterval() time.Duration {
	if d.PollInterval > 0 {
		return d.PollInterval
	}
	return DefaultPollInterval
}

func (d *Device) settleDelay() time.Duration {
	if d.SettleDelay > 0 {
		return d.SettleDelay
	}
	return DefaultSettleDelay
}

func (d *Device) context() uint8 {
	if d.Context != 0 {
		return d.Context
	}
	return DefaultContext
}

// Ident is the chip identification.
type Ident struct {
	Vendor   uint16
	Part     uint16
	Revision uint32
}

func (i Ident) String() string {
	return fmt.Sprintf("%04x:%04x rev 0x%x", i.Vendor, i.Part, i.Revision)
}

// Revisions this driver was validated against.
var KnownRevisions = []uint32{0x0100, 0x0101, 0x0200}

// Identify reads the identification registers and logs a warning when the
// revision is not one the driver knows. Unknown revisions are not an error.
func (d *Device) Identify() (id Ident, err error) {
	x, err := d.ReadCSR(CSRIdent)
	if err != nil {
		return
	}
	id.Vendor, id.Part = uint16(x>>16), uint16(x)
	if id.Revision, err = d.ReadCSR(CSRRevision); err != nil {
		return
	}
	for _, r := range KnownRevisions {
		if r == id.Revision {
			return
		}
	}
	log.Printf("warn", "%v: %v: unknown firmware revision", d, id)
	return
}
