package common

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// IsDeviceLostError reports whether err looks like the backing medium went
// away underneath us (physical removal of the drive). Detection is
// opportunistic: callers classify failures from regular file and stat
// operations rather than polling the device.
func IsDeviceLostError(err error) bool {
	if err == nil {
		return false
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case unix.EIO, unix.ENODEV, unix.ENXIO, unix.ENOTCONN, unix.ESTALE:
			return true
		}
	}

	return false
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
