package device

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/disk"

	"github.com/drivebay/drivebay/pkg/common"
	"github.com/drivebay/drivebay/pkg/types"
)

// Enumerator lists candidate removable block devices. Implementations fail
// soft: callers always get a (possibly empty) device list, never an error.
type Enumerator interface {
	List(ctx context.Context) []types.BlockDevice
}

// BlockDeviceEnumerator discovers removable partitions with lsblk, falling
// back to a gopsutil partition scan when lsblk is unavailable. Only
// partitions of removable disks are reported; the system's own boot/root
// device is always excluded.
type BlockDeviceEnumerator struct {
	config       types.DeviceConfig
	sysBlockPath string
}

func NewBlockDeviceEnumerator(config types.DeviceConfig) *BlockDeviceEnumerator {
	return &BlockDeviceEnumerator{
		config:       config,
		sysBlockPath: "/sys/block",
	}
}

// Raw JSON representation from lsblk --json --bytes
type lsblkTree struct {
	BlockDevices []lsblkDevice `json:"blockdevices"`
}

type lsblkDevice struct {
	Name       string        `json:"name"`
	Size       any           `json:"size"` // number with -b on recent lsblk, string on older ones
	Type       string        `json:"type"`
	Mountpoint *string       `json:"mountpoint"`
	Label      *string       `json:"label"`
	FsType     *string       `json:"fstype"`
	Children   []lsblkDevice `json:"children,omitempty"`
}

func (e *BlockDeviceEnumerator) List(ctx context.Context) []types.BlockDevice {
	ctx, cancel := context.WithTimeout(ctx, e.config.EnumerationTimeout)
	defer cancel()

	devices, err := e.listWithLsblk(ctx)
	if err != nil {
		log.Error().Err(err).Msg("lsblk enumeration failed, using fallback")
		devices = e.listFallback(ctx)
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Name < devices[j].Name
	})

	return devices
}

func (e *BlockDeviceEnumerator) listWithLsblk(ctx context.Context) ([]types.BlockDevice, error) {
	cmd := exec.CommandContext(ctx, "lsblk", "-J", "-b", "-o", "NAME,SIZE,TYPE,MOUNTPOINT,LABEL,FSTYPE")
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	var tree lsblkTree
	if err := json.Unmarshal(output, &tree); err != nil {
		return nil, err
	}

	devices := []types.BlockDevice{}
	for _, dev := range tree.BlockDevices {
		if dev.Type != "disk" || !e.isRemovableDisk(dev.Name) {
			continue
		}

		for _, part := range dev.Children {
			if part.Type != "part" {
				continue
			}
			if bd, ok := e.newBlockDevice(part); ok {
				devices = append(devices, bd)
			}
		}
	}

	return devices, nil
}

func (e *BlockDeviceEnumerator) newBlockDevice(part lsblkDevice) (types.BlockDevice, bool) {
	// Never expose anything holding the running system, however it got here.
	if part.Mountpoint != nil && isSystemMountpoint(*part.Mountpoint) {
		return types.BlockDevice{}, false
	}

	sizeBytes := coerceSize(part.Size)
	bd := types.BlockDevice{
		Name:       part.Name,
		Path:       "/dev/" + part.Name,
		SizeBytes:  sizeBytes,
		Size:       common.HumanSize(sizeBytes),
		Mountpoint: part.Mountpoint,
		Removable:  true,
	}
	if part.Label != nil {
		bd.Label = *part.Label
	}
	if part.FsType != nil {
		bd.FsType = *part.FsType
	}

	return bd, true
}

// listFallback builds a degraded device list from mounted partitions plus a
// sysfs walk, for hosts where lsblk is missing or broken.
func (e *BlockDeviceEnumerator) listFallback(ctx context.Context) []types.BlockDevice {
	mounted := map[string]string{}
	if partitions, err := disk.PartitionsWithContext(ctx, false); err == nil {
		for _, p := range partitions {
			mounted[p.Device] = p.Mountpoint
		}
	}

	blockDirs, err := filepath.Glob(filepath.Join(e.sysBlockPath, "*"))
	if err != nil {
		log.Error().Err(err).Msg("fallback enumeration failed")
		return []types.BlockDevice{}
	}

	devices := []types.BlockDevice{}
	for _, blockDir := range blockDirs {
		diskName := filepath.Base(blockDir)
		if !e.isRemovableDisk(diskName) {
			continue
		}

		partitions, _ := filepath.Glob(filepath.Join(blockDir, diskName+"*"))
		for _, partition := range partitions {
			partName := filepath.Base(partition)
			if partName == diskName {
				continue
			}

			devPath := "/dev/" + partName
			sizeBytes := sysfsSizeBytes(partition)
			bd := types.BlockDevice{
				Name:      partName,
				Path:      devPath,
				SizeBytes: sizeBytes,
				Size:      common.HumanSize(sizeBytes),
				Removable: true,
			}
			if mp, ok := mounted[devPath]; ok && mp != "" {
				if isSystemMountpoint(mp) {
					continue
				}
				bd.Mountpoint = &mp
			}

			devices = append(devices, bd)
		}
	}

	return devices
}

func (e *BlockDeviceEnumerator) isRemovableDisk(diskName string) bool {
	data, err := os.ReadFile(filepath.Join(e.sysBlockPath, diskName, "removable"))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "1"
}

func isSystemMountpoint(mountpoint string) bool {
	return mountpoint == "/" || mountpoint == "/boot" || strings.HasPrefix(mountpoint, "/boot/")
}

// sysfs reports size in 512-byte sectors
func sysfsSizeBytes(partitionDir string) uint64 {
	data, err := os.ReadFile(filepath.Join(partitionDir, "size"))
	if err != nil {
		return 0
	}
	sectors, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0
	}
	return sectors * 512
}

func coerceSize(v any) uint64 {
	switch size := v.(type) {
	case float64:
		if size < 0 {
			return 0
		}
		return uint64(size)
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(size), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
