package apiv1

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drivebay/drivebay/pkg/types"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "invalid path", err: &types.ErrInvalidPath{Path: ".."}, expected: http.StatusBadRequest},
		{name: "invalid name", err: &types.ErrInvalidName{Name: "a/b"}, expected: http.StatusBadRequest},
		{name: "invalid file type", err: &types.ErrInvalidFileType{Extension: ".exe"}, expected: http.StatusBadRequest},
		{name: "device not found", err: &types.ErrDeviceNotFound{DeviceName: "sdz9"}, expected: http.StatusNotFound},
		{name: "path not found", err: &types.ErrPathNotFound{Path: "ghost"}, expected: http.StatusNotFound},
		{name: "already mounted", err: &types.ErrAlreadyMounted{DeviceName: "sda1"}, expected: http.StatusConflict},
		{name: "not mounted", err: &types.ErrNotMounted{}, expected: http.StatusConflict},
		{name: "conflict", err: &types.ErrConflict{Path: "a.txt"}, expected: http.StatusConflict},
		{name: "device busy", err: &types.ErrDeviceBusy{MountPoint: "/media/usb"}, expected: http.StatusConflict},
		{name: "file too large", err: &types.ErrFileTooLarge{SizeBytes: 2, MaxBytes: 1}, expected: http.StatusRequestEntityTooLarge},
		{name: "permission denied", err: &types.ErrPermissionDenied{Path: "x"}, expected: http.StatusForbidden},
		{name: "device lost", err: &types.ErrDeviceLost{Cause: assert.AnError}, expected: http.StatusGone},
		{name: "unknown", err: assert.AnError, expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusForError(tt.err))
		})
	}
}
