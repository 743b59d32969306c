// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nse_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/platinasystems/tcam/nse"
	"github.com/platinasystems/tcam/nse/sim"
)

func newDevice(t *testing.T) (*nse.Device, *sim.Chip) {
	t.Helper()
	chip := sim.New()
	chip.ID = 2
	d := nse.New(chip, sim.Size, nse.Config{
		PollInterval: time.Nanosecond,
		SettleDelay:  time.Nanosecond,
	})
	require.Equal(t, uint8(2), d.ID())
	chip.ResetCounters()
	return d, chip
}

func configure(t *testing.T, d *nse.Device, id uint8, db nse.Database) {
	t.Helper()
	require.NoError(t, d.SetDatabase(id, nse.SetAll, &db))
}

func fill(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(7*i)
	}
	return b
}
