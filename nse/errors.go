// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nse

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

var (
	// Bad address, database id, width or oversized field; reported
	// before any register is touched.
	ErrInvalidArgument = errors.New("invalid argument")
	// Done bit never observed within the poll budget.
	ErrTimeout = errors.New("mailbox timeout")
	// Chip signalled the error bit.
	ErrHardwareFault = errors.New("hardware fault")
	// Register window could not be resolved at attach.
	ErrDeviceNotFound = errors.New("device not found")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidArgument)
}

// Errno translates an error returned by this package to the errno the
// filter lifecycle reports; 0 is success.
func Errno(err error) unix.Errno {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidArgument):
		return unix.EINVAL
	case errors.Is(err, ErrTimeout):
		return unix.ETIMEDOUT
	case errors.Is(err, ErrHardwareFault):
		return unix.EFAULT
	case errors.Is(err, ErrDeviceNotFound):
		return unix.ENODEV
	}
	return unix.EIO
}
