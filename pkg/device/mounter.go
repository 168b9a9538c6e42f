package device

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/drivebay/drivebay/pkg/types"
)

// Mounter is the narrow privileged-mount capability consumed by the
// MountController. The production implementation shells out to mount(8) and
// umount(8); a native syscall implementation can replace it without touching
// the state machine.
type Mounter interface {
	Mount(ctx context.Context, devicePath string, mountPoint string) error
	Unmount(ctx context.Context, mountPoint string) error
}

type ShellMounter struct {
	procMountsPath string
}

func NewShellMounter() *ShellMounter {
	return &ShellMounter{procMountsPath: "/proc/mounts"}
}

func (m *ShellMounter) Mount(ctx context.Context, devicePath string, mountPoint string) error {
	output, err := runCommand(ctx, "mount", devicePath, mountPoint)
	if err != nil {
		// Retry with explicit filesystem auto-detection before giving up
		retryOutput, retryErr := runCommand(ctx, "mount", "-t", "auto", devicePath, mountPoint)
		if retryErr != nil {
			return classifyMountFailure(devicePath, output+retryOutput)
		}
	}

	if !m.isMounted(mountPoint) {
		return &types.ErrMountFailed{DevicePath: devicePath, Output: "mount verification failed"}
	}

	log.Info().Str("device", devicePath).Str("mount_point", mountPoint).Msg("device mounted")
	return nil
}

func (m *ShellMounter) Unmount(ctx context.Context, mountPoint string) error {
	output, err := runCommand(ctx, "umount", mountPoint)
	if err != nil {
		lowered := strings.ToLower(output)
		if strings.Contains(lowered, "busy") {
			return &types.ErrDeviceBusy{MountPoint: mountPoint}
		}
		if strings.Contains(lowered, "not mounted") {
			log.Warn().Str("mount_point", mountPoint).Msg("unmount target was not mounted")
			return nil
		}
		return errors.Wrapf(err, "error executing umount: %s", output)
	}

	log.Info().Str("mount_point", mountPoint).Msg("device unmounted")
	return nil
}

func (m *ShellMounter) isMounted(mountPoint string) bool {
	file, err := os.Open(m.procMountsPath)
	if err != nil {
		return false
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 && fields[1] == mountPoint {
			return true
		}
	}

	return false
}

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func classifyMountFailure(devicePath string, output string) error {
	lowered := strings.ToLower(output)
	switch {
	case strings.Contains(lowered, "unknown filesystem type") || strings.Contains(lowered, "wrong fs type"):
		return &types.ErrUnsupportedFilesystem{DevicePath: devicePath}
	case strings.Contains(lowered, "permission denied") || strings.Contains(lowered, "only root") || strings.Contains(lowered, "must be superuser"):
		return &types.ErrPermissionDenied{Path: devicePath}
	case strings.Contains(lowered, "already mounted"):
		return &types.ErrAlreadyMounted{DeviceName: devicePath}
	default:
		return &types.ErrMountFailed{DevicePath: devicePath, Output: strings.TrimSpace(output)}
	}
}
