// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rule

import "fmt"

// Meta rides in the associated data word paired with an entry, not in the
// entry itself: [19:4] tag [2:1] class [0] action
type Meta struct {
	Tag    uint16
	Action uint8
	Class  uint8
}

const (
	MaxAction = 1
	MaxClass  = 3
)

func (m Meta) String() string {
	return fmt.Sprintf("tag %d action %d class %d", m.Tag, m.Action, m.Class)
}

func (m Meta) Word() (uint32, error) {
	if m.Action > MaxAction {
		return 0, invalid("action %d > %d", m.Action, MaxAction)
	}
	if m.Class > MaxClass {
		return 0, invalid("class %d > %d", m.Class, MaxClass)
	}
	return uint32(m.Tag)<<4 | uint32(m.Class)<<1 | uint32(m.Action), nil
}

func MetaOf(w uint32) Meta {
	return Meta{
		Tag:    uint16(w >> 4),
		Class:  uint8(w>>1) & MaxClass,
		Action: uint8(w) & MaxAction,
	}
}
