package device

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivebay/drivebay/pkg/types"
)

func TestStatusUnmounted(t *testing.T) {
	controller := newTestController(t, &fakeMounter{})
	reporter := NewStatusReporter(controller)

	status := reporter.Status(context.Background())
	assert.False(t, status.Mounted)
	assert.Empty(t, status.Device)
}

func TestStatusMounted(t *testing.T) {
	controller := newTestController(t, &fakeMounter{}, sda1())
	reporter := NewStatusReporter(controller)

	// The fake mounter leaves the mountpoint a plain directory, so usage
	// figures come from the filesystem the temp dir lives on.
	session, err := controller.Mount(context.Background(), "sda1")
	require.NoError(t, err)

	status := reporter.Status(context.Background())
	require.True(t, status.Mounted)
	assert.Equal(t, "sda1", status.Device)
	assert.Equal(t, session.MountPoint, status.MountPoint)
	assert.NotZero(t, status.TotalBytes)
	assert.GreaterOrEqual(t, status.UsagePercent, 0)
	assert.LessOrEqual(t, status.UsagePercent, 100)
	assert.Equal(t, UsageTagFor(status.UsagePercent), status.UsageTag)
}

func TestStatusInvalidatesOnVanishedMountpoint(t *testing.T) {
	controller := newTestController(t, &fakeMounter{}, sda1())
	reporter := NewStatusReporter(controller)

	session, err := controller.Mount(context.Background(), "sda1")
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(session.MountPoint))

	status := reporter.Status(context.Background())
	assert.False(t, status.Mounted)
	assert.Equal(t, types.MountStateUnmounted, controller.State())
}

func TestUsageTagFor(t *testing.T) {
	tests := []struct {
		percent  int
		expected types.UsageTag
	}{
		{percent: 0, expected: types.UsageTagNormal},
		{percent: 50, expected: types.UsageTagNormal},
		{percent: 75, expected: types.UsageTagNormal},
		{percent: 76, expected: types.UsageTagWarning},
		{percent: 90, expected: types.UsageTagWarning},
		{percent: 91, expected: types.UsageTagDanger},
		{percent: 100, expected: types.UsageTagDanger},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, UsageTagFor(tt.percent), "percent %d", tt.percent)
	}
}
