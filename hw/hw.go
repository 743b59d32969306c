// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hw provides memory mapped register read/write.
package hw

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Bus is a 32 bit register window addressed by byte offset.
type Bus interface {
	LoadUint32(offset uintptr) uint32
	StoreUint32(offset uintptr, data uint32)
}

// Window is a memory mapped register block.
type Window struct {
	// Sysfs resource file this window was mapped from.
	Path string
	// Physical base address of the BAR, zero when unknown.
	Base uint64

	mem []byte
}

// Size of window in bytes.
func (w *Window) Size() int { return len(w.mem) }

func (w *Window) addr(o uintptr) *uint32 {
	if o&3 != 0 || int(o)+4 > len(w.mem) {
		panic(fmt.Errorf("%s: offset 0x%x out of range [0,0x%x)", w.Path, o, len(w.mem)))
	}
	return (*uint32)(unsafe.Pointer(&w.mem[o]))
}

// Atomic 32 bit access is the smallest unit the register block decodes.
func (w *Window) LoadUint32(o uintptr) uint32    { return atomic.LoadUint32(w.addr(o)) }
func (w *Window) StoreUint32(o uintptr, v uint32) { atomic.StoreUint32(w.addr(o), v) }

func (w *Window) Close() (err error) {
	if w.mem != nil {
		err = unix.Munmap(w.mem)
		if err != nil {
			err = fmt.Errorf("munmap %s: %w", w.Path, err)
		}
		w.mem = nil
	}
	return
}

func (w *Window) String() string {
	return fmt.Sprintf("%s base 0x%x size 0x%x", w.Path, w.Base, len(w.mem))
}
