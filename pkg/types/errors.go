package types

import (
	"fmt"
)

// Device errors

type ErrDeviceNotFound struct {
	DeviceName string
}

func (e *ErrDeviceNotFound) Error() string {
	return fmt.Sprintf("device not found: %s", e.DeviceName)
}

type ErrAlreadyMounted struct {
	DeviceName string
}

func (e *ErrAlreadyMounted) Error() string {
	return fmt.Sprintf("a device is already mounted: %s", e.DeviceName)
}

type ErrNotMounted struct {
}

func (e *ErrNotMounted) Error() string {
	return "no device is mounted"
}

type ErrDeviceBusy struct {
	MountPoint string
}

func (e *ErrDeviceBusy) Error() string {
	return fmt.Sprintf("device busy: %s", e.MountPoint)
}

type ErrUnsupportedFilesystem struct {
	DevicePath string
}

func (e *ErrUnsupportedFilesystem) Error() string {
	return fmt.Sprintf("unsupported filesystem on device: %s", e.DevicePath)
}

type ErrPermissionDenied struct {
	Path string
}

func (e *ErrPermissionDenied) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Path)
}

// Path errors

type ErrInvalidPath struct {
	Path string
}

func (e *ErrInvalidPath) Error() string {
	return fmt.Sprintf("invalid path: %q", e.Path)
}

type ErrPathNotFound struct {
	Path string
}

func (e *ErrPathNotFound) Error() string {
	return fmt.Sprintf("path not found: %q", e.Path)
}

type ErrConflict struct {
	Path string
}

func (e *ErrConflict) Error() string {
	return fmt.Sprintf("path already exists: %q", e.Path)
}

// Upload errors

type ErrInvalidName struct {
	Name string
}

func (e *ErrInvalidName) Error() string {
	return fmt.Sprintf("invalid name: %q", e.Name)
}

type ErrInvalidFileType struct {
	Extension string
}

func (e *ErrInvalidFileType) Error() string {
	return fmt.Sprintf("file type not allowed: %q", e.Extension)
}

type ErrFileTooLarge struct {
	SizeBytes int64
	MaxBytes  int64
}

func (e *ErrFileTooLarge) Error() string {
	return fmt.Sprintf("file too large: %d bytes exceeds limit of %d bytes", e.SizeBytes, e.MaxBytes)
}

type ErrIO struct {
	Op    string
	Cause error
}

func (e *ErrIO) Error() string {
	return fmt.Sprintf("i/o error during %s: %v", e.Op, e.Cause)
}

func (e *ErrIO) Unwrap() error {
	return e.Cause
}

// System errors

type ErrDeviceLost struct {
	Cause error
}

func (e *ErrDeviceLost) Error() string {
	return fmt.Sprintf("device lost: %v", e.Cause)
}

func (e *ErrDeviceLost) Unwrap() error {
	return e.Cause
}

type ErrMountFailed struct {
	DevicePath string
	Output     string
}

func (e *ErrMountFailed) Error() string {
	return fmt.Sprintf("failed to mount %s: %s", e.DevicePath, e.Output)
}
