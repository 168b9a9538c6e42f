package device

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/drivebay/drivebay/pkg/types"
)

const invalidateDetachTimeout = 5 * time.Second

// MountController owns the single active mount session. All state
// transitions are serialized through one mutex so concurrent callers can
// never observe or create overlapping sessions.
type MountController struct {
	config     types.DeviceConfig
	mounter    Mounter
	enumerator Enumerator

	mu      sync.Mutex
	state   types.MountState
	session *types.MountSession
}

func NewMountController(config types.DeviceConfig, mounter Mounter, enumerator Enumerator) *MountController {
	return &MountController{
		config:     config,
		mounter:    mounter,
		enumerator: enumerator,
		state:      types.MountStateUnmounted,
	}
}

func (c *MountController) State() types.MountState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns a copy of the active mount session, if any.
func (c *MountController) Session() (types.MountSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return types.MountSession{}, false
	}
	return *c.session, true
}

// MountRoot returns the absolute path under which the active device's
// contents are exposed.
func (c *MountController) MountRoot() (string, bool) {
	session, ok := c.Session()
	if !ok {
		return "", false
	}
	return session.MountPoint, true
}

// Mount attaches the named device under a fresh mountpoint below the
// configured base path. Valid only while unmounted; the device must appear
// in a fresh enumeration. Any failure rolls the controller back to
// UNMOUNTED with no session.
func (c *MountController) Mount(ctx context.Context, deviceName string) (types.MountSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != types.MountStateUnmounted {
		mounted := ""
		if c.session != nil {
			mounted = c.session.DeviceName
		}
		return types.MountSession{}, &types.ErrAlreadyMounted{DeviceName: mounted}
	}

	var target *types.BlockDevice
	for _, dev := range c.enumerator.List(ctx) {
		if dev.Name == deviceName {
			d := dev
			target = &d
			break
		}
	}
	if target == nil {
		return types.MountSession{}, &types.ErrDeviceNotFound{DeviceName: deviceName}
	}

	c.state = types.MountStateMounting

	sessionId := uuid.New().String()
	mountPoint := filepath.Join(c.config.MountBasePath, fmt.Sprintf("usb-%s", sessionId[:8]))
	if err := os.MkdirAll(mountPoint, 0755); err != nil {
		c.state = types.MountStateUnmounted
		return types.MountSession{}, &types.ErrMountFailed{DevicePath: target.Path, Output: err.Error()}
	}

	mountCtx, cancel := context.WithTimeout(ctx, c.config.MountTimeout)
	defer cancel()

	if err := c.mounter.Mount(mountCtx, target.Path, mountPoint); err != nil {
		os.Remove(mountPoint)
		c.state = types.MountStateUnmounted
		return types.MountSession{}, err
	}

	c.session = &types.MountSession{
		Id:         sessionId,
		DeviceName: target.Name,
		DevicePath: target.Path,
		MountPoint: mountPoint,
		MountedAt:  time.Now(),
	}
	c.state = types.MountStateMounted

	log.Info().Str("device", target.Name).Str("mount_point", mountPoint).Msg("mount session started")
	return *c.session, nil
}

// Unmount detaches the active session. A busy device (open handles, data
// still flushing) is retried a bounded number of times and then surfaced as
// Busy with the session intact; it is never force-unmounted.
func (c *MountController) Unmount(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != types.MountStateMounted {
		return &types.ErrNotMounted{}
	}

	mountPoint := c.session.MountPoint
	c.state = types.MountStateUnmounting

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.config.UnmountRetryInterval), c.config.UnmountRetries),
		ctx,
	)
	err := backoff.Retry(func() error {
		err := c.mounter.Unmount(ctx, mountPoint)
		if err == nil {
			return nil
		}

		var busy *types.ErrDeviceBusy
		if errors.As(err, &busy) {
			log.Warn().Str("mount_point", mountPoint).Msg("device busy, retrying unmount")
			return err
		}
		return backoff.Permanent(err)
	}, policy)
	if err != nil {
		c.state = types.MountStateMounted
		return err
	}

	os.Remove(mountPoint)
	device := c.session.DeviceName
	c.session = nil
	c.state = types.MountStateUnmounted

	log.Info().Str("device", device).Msg("mount session ended")
	return nil
}

// Invalidate tears down the session after the medium disappeared underneath
// us. The detach is best effort; the state transition is what matters, so
// subsequent calls observe UNMOUNTED instead of a stale session.
func (c *MountController) Invalidate(cause error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != types.MountStateMounted {
		return
	}

	mountPoint := c.session.MountPoint
	log.Warn().Err(cause).Str("device", c.session.DeviceName).Msg("device lost, invalidating mount session")

	detachCtx, cancel := context.WithTimeout(context.Background(), invalidateDetachTimeout)
	defer cancel()
	if err := c.mounter.Unmount(detachCtx, mountPoint); err != nil {
		log.Warn().Err(err).Str("mount_point", mountPoint).Msg("best-effort detach failed")
	}
	os.Remove(mountPoint)

	c.session = nil
	c.state = types.MountStateUnmounted
}
