package device

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivebay/drivebay/pkg/types"
)

type fakeEnumerator struct {
	devices []types.BlockDevice
}

func (e *fakeEnumerator) List(ctx context.Context) []types.BlockDevice {
	return e.devices
}

type fakeMounter struct {
	mountErr     error
	unmountErrs  []error
	mountCalls   int
	unmountCalls int
}

func (m *fakeMounter) Mount(ctx context.Context, devicePath string, mountPoint string) error {
	m.mountCalls++
	return m.mountErr
}

func (m *fakeMounter) Unmount(ctx context.Context, mountPoint string) error {
	m.unmountCalls++
	if len(m.unmountErrs) == 0 {
		return nil
	}
	err := m.unmountErrs[0]
	m.unmountErrs = m.unmountErrs[1:]
	return err
}

func newTestController(t *testing.T, mounter *fakeMounter, devices ...types.BlockDevice) *MountController {
	t.Helper()
	config := types.DeviceConfig{
		MountBasePath:        t.TempDir(),
		MountTimeout:         5 * time.Second,
		EnumerationTimeout:   time.Second,
		UnmountRetries:       3,
		UnmountRetryInterval: time.Millisecond,
	}
	return NewMountController(config, mounter, &fakeEnumerator{devices: devices})
}

func sda1() types.BlockDevice {
	return types.BlockDevice{Name: "sda1", Path: "/dev/sda1", Removable: true}
}

func TestMountRoundTrip(t *testing.T) {
	mounter := &fakeMounter{}
	controller := newTestController(t, mounter, sda1())

	session, err := controller.Mount(context.Background(), "sda1")
	require.NoError(t, err)

	assert.Equal(t, "sda1", session.DeviceName)
	assert.Equal(t, "/dev/sda1", session.DevicePath)
	assert.NotEmpty(t, session.Id)
	assert.Equal(t, types.MountStateMounted, controller.State())
	assert.DirExists(t, session.MountPoint)

	root, ok := controller.MountRoot()
	assert.True(t, ok)
	assert.Equal(t, session.MountPoint, root)
}

func TestMountUnknownDevice(t *testing.T) {
	controller := newTestController(t, &fakeMounter{}, sda1())

	_, err := controller.Mount(context.Background(), "sdz9")
	var notFound *types.ErrDeviceNotFound
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, types.MountStateUnmounted, controller.State())
}

func TestMountWhileMounted(t *testing.T) {
	controller := newTestController(t, &fakeMounter{}, sda1())

	_, err := controller.Mount(context.Background(), "sda1")
	require.NoError(t, err)

	_, err = controller.Mount(context.Background(), "sda1")
	var alreadyMounted *types.ErrAlreadyMounted
	assert.ErrorAs(t, err, &alreadyMounted)
}

func TestMountFailureRollsBack(t *testing.T) {
	mounter := &fakeMounter{mountErr: &types.ErrUnsupportedFilesystem{DevicePath: "/dev/sda1"}}
	controller := newTestController(t, mounter, sda1())

	_, err := controller.Mount(context.Background(), "sda1")
	var unsupported *types.ErrUnsupportedFilesystem
	assert.ErrorAs(t, err, &unsupported)

	assert.Equal(t, types.MountStateUnmounted, controller.State())
	_, ok := controller.Session()
	assert.False(t, ok)
}

func TestUnmountWithoutSession(t *testing.T) {
	controller := newTestController(t, &fakeMounter{})

	err := controller.Unmount(context.Background())
	var notMounted *types.ErrNotMounted
	assert.ErrorAs(t, err, &notMounted)
}

func TestUnmountRoundTrip(t *testing.T) {
	mounter := &fakeMounter{}
	controller := newTestController(t, mounter, sda1())

	session, err := controller.Mount(context.Background(), "sda1")
	require.NoError(t, err)

	require.NoError(t, controller.Unmount(context.Background()))
	assert.Equal(t, types.MountStateUnmounted, controller.State())
	assert.NoDirExists(t, session.MountPoint)

	_, ok := controller.Session()
	assert.False(t, ok)
}

func TestUnmountRetriesBusyThenSucceeds(t *testing.T) {
	mounter := &fakeMounter{unmountErrs: []error{
		&types.ErrDeviceBusy{MountPoint: "x"},
		&types.ErrDeviceBusy{MountPoint: "x"},
	}}
	controller := newTestController(t, mounter, sda1())

	_, err := controller.Mount(context.Background(), "sda1")
	require.NoError(t, err)

	require.NoError(t, controller.Unmount(context.Background()))
	assert.Equal(t, 3, mounter.unmountCalls)
	assert.Equal(t, types.MountStateUnmounted, controller.State())
}

func TestUnmountBusyExhaustsRetries(t *testing.T) {
	mounter := &fakeMounter{unmountErrs: []error{
		&types.ErrDeviceBusy{MountPoint: "x"},
		&types.ErrDeviceBusy{MountPoint: "x"},
		&types.ErrDeviceBusy{MountPoint: "x"},
		&types.ErrDeviceBusy{MountPoint: "x"},
	}}
	controller := newTestController(t, mounter, sda1())

	session, err := controller.Mount(context.Background(), "sda1")
	require.NoError(t, err)

	err = controller.Unmount(context.Background())
	var busy *types.ErrDeviceBusy
	assert.ErrorAs(t, err, &busy)

	// Session stays intact so the caller can retry later
	assert.Equal(t, types.MountStateMounted, controller.State())
	current, ok := controller.Session()
	assert.True(t, ok)
	assert.Equal(t, session.Id, current.Id)
}

func TestUnmountPermanentFailureStaysMounted(t *testing.T) {
	mounter := &fakeMounter{unmountErrs: []error{assert.AnError}}
	controller := newTestController(t, mounter, sda1())

	_, err := controller.Mount(context.Background(), "sda1")
	require.NoError(t, err)

	err = controller.Unmount(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, mounter.unmountCalls)
	assert.Equal(t, types.MountStateMounted, controller.State())
}

func TestInvalidateClearsSession(t *testing.T) {
	mounter := &fakeMounter{}
	controller := newTestController(t, mounter, sda1())

	session, err := controller.Mount(context.Background(), "sda1")
	require.NoError(t, err)

	controller.Invalidate(assert.AnError)
	assert.Equal(t, types.MountStateUnmounted, controller.State())
	assert.NoDirExists(t, session.MountPoint)

	_, ok := controller.Session()
	assert.False(t, ok)
}

func TestInvalidateWithoutSessionIsNoop(t *testing.T) {
	mounter := &fakeMounter{}
	controller := newTestController(t, mounter)

	controller.Invalidate(assert.AnError)
	assert.Equal(t, types.MountStateUnmounted, controller.State())
	assert.Equal(t, 0, mounter.unmountCalls)
}
