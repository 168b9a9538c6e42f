package device

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/disk"

	"github.com/drivebay/drivebay/pkg/common"
	"github.com/drivebay/drivebay/pkg/types"
)

// StatusReporter produces live space-usage snapshots for the mounted
// filesystem. Figures always come from a fresh statfs, never a cache.
type StatusReporter struct {
	controller *MountController
}

func NewStatusReporter(controller *MountController) *StatusReporter {
	return &StatusReporter{controller: controller}
}

func (r *StatusReporter) Status(ctx context.Context) types.DriveStatus {
	session, ok := r.controller.Session()
	if !ok {
		return types.DriveStatus{Mounted: false}
	}

	usage, err := disk.UsageWithContext(ctx, session.MountPoint)
	if err != nil || usage.Total == 0 {
		if common.IsDeviceLostError(err) || !common.DirExists(session.MountPoint) {
			r.controller.Invalidate(err)
		}
		log.Error().Err(err).Str("mount_point", session.MountPoint).Msg("failed to stat mounted filesystem")
		return types.DriveStatus{Mounted: false}
	}

	percent := int(math.Round(float64(usage.Used) / float64(usage.Total) * 100))

	return types.DriveStatus{
		Mounted:      true,
		Device:       session.DeviceName,
		MountPoint:   session.MountPoint,
		TotalBytes:   usage.Total,
		UsedBytes:    usage.Used,
		FreeBytes:    usage.Free,
		UsagePercent: percent,
		UsageTag:     UsageTagFor(percent),
	}
}

// UsageTagFor maps a usage percentage onto its informational band.
func UsageTagFor(percent int) types.UsageTag {
	switch {
	case percent > 90:
		return types.UsageTagDanger
	case percent > 75:
		return types.UsageTagWarning
	default:
		return types.UsageTagNormal
	}
}
