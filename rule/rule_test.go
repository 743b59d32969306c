// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rule

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecs(t *testing.T) {
	for name, c := range Codecs {
		assert.Equal(t, name, c.Name())
		assert.Equal(t, 1, c.AD().Words())
	}
	assert.Len(t, Codecs, 2)
}

func TestMeta(t *testing.T) {
	for _, m := range []Meta{
		{},
		{Tag: 1},
		{Tag: 0xffff, Action: 1, Class: 3},
		{Tag: 0x1234, Class: 2},
	} {
		w, err := m.Word()
		require.NoError(t, err)
		assert.Zero(t, w&(1<<3), "bit 3 reserved")
		assert.Equal(t, m, MetaOf(w))
	}
	w, _ := Meta{Tag: 5, Class: 1, Action: 1}.Word()
	assert.Equal(t, uint32(0x53), w)
}

func TestOverlayString(t *testing.T) {
	assert.Equal(t, "none", Overlay(0).String())
	assert.Equal(t, "ipv4,vlan2", (OverlayIPv4 | OverlayVLAN2).String())
}

func TestSlice(t *testing.T) {
	a, b := AnyBFS(), AnyInfiniband()
	s := Slice(a, b)
	for _, want := range []Rule{a, b} {
		r, err := s.Next()
		require.NoError(t, err)
		assert.Same(t, want, r)
	}
	for i := 0; i < 2; i++ {
		_, err := s.Next()
		assert.Equal(t, io.EOF, err)
	}
}

func TestSourceFunc(t *testing.T) {
	bad := errors.New("line 3: syntax")
	n := 0
	s := SourceFunc(func() (Rule, error) {
		n++
		if n > 1 {
			return nil, bad
		}
		return AnyBFS(), nil
	})
	_, err := s.Next()
	require.NoError(t, err)
	_, err = s.Next()
	assert.ErrorIs(t, err, bad)
}
