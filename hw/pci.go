// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hw

// Linux PCI resource mapping

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

var SysBusPciPath = "/sys/bus/pci/devices"

type Resource struct {
	Index uint
	Base  uint64
	Size  uint64
}

// Resources parses the sysfs "resource" table of a PCI device directory.
func Resources(dir string) (rs []Resource, err error) {
	b, err := os.ReadFile(filepath.Join(dir, "resource"))
	if err != nil {
		return
	}
	r := bytes.NewReader(b)
	for i := uint(0); r.Len() > 0; i++ {
		var (
			v [3]uint64
			n int
		)
		if n, err = fmt.Fscanf(r, "0x%x 0x%x 0x%x\n", &v[0], &v[1], &v[2]); n != 3 || err != nil {
			if n != 3 {
				err = fmt.Errorf("%s: short read", dir)
			}
			return
		}
		size := v[0]
		if v[0] != 0 {
			size = 1 + v[1] - v[0]
		}
		rs = append(rs, Resource{Index: i, Base: v[0], Size: size})
	}
	return
}

// Resolve maps the register block of a device.
//
// The device may be given as a PCI address (0000:03:00.0), a sysfs device
// directory, or the path of a mappable resource file.
func Resolve(device string, bar uint) (w *Window, err error) {
	dir := device
	if !strings.ContainsRune(device, os.PathSeparator) {
		dir = filepath.Join(SysBusPciPath, device)
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return
	}
	w = &Window{Path: dir}
	size := fi.Size()
	if fi.IsDir() {
		var rs []Resource
		if rs, err = Resources(dir); err != nil {
			return nil, err
		}
		if bar >= uint(len(rs)) || rs[bar].Size == 0 {
			return nil, fmt.Errorf("%s: bar %d: %w", dir, bar, os.ErrNotExist)
		}
		w.Path = filepath.Join(dir, fmt.Sprintf("resource%d", bar))
		w.Base = rs[bar].Base
		size = int64(rs[bar].Size)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%s: empty resource", w.Path)
	}
	f, err := os.OpenFile(w.Path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	w.mem, err = unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", w.Path, err)
	}
	return
}
