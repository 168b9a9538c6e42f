package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivebay/drivebay/pkg/types"
)

func TestConfigManagerDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("CONFIG_JSON", "")

	cm, err := NewConfigManager[types.AppConfig]()
	require.NoError(t, err)

	config := cm.GetConfig()
	assert.Equal(t, 55005, config.GatewayService.HTTP.Port)
	assert.Equal(t, 30*time.Second, config.GatewayService.ShutdownTimeout)
	assert.Equal(t, "/media/usb", config.Device.MountBasePath)
	assert.Equal(t, uint64(3), config.Device.UnmountRetries)
	assert.Equal(t, int64(100), config.FileService.MaxUploadSizeMB)
	assert.Contains(t, config.FileService.AllowedExtensions, ".txt")
	assert.Contains(t, config.FileService.AllowedExtensions, ".pdf")
}

func TestConfigManagerOverrideFromPath(t *testing.T) {
	override := filepath.Join(t.TempDir(), "config.yaml")
	content := "device:\n  mountBasePath: /mnt/override\nfileService:\n  maxUploadSizeMb: 5\n"
	require.NoError(t, os.WriteFile(override, []byte(content), 0644))

	t.Setenv("CONFIG_PATH", override)
	t.Setenv("CONFIG_JSON", "")

	cm, err := NewConfigManager[types.AppConfig]()
	require.NoError(t, err)

	config := cm.GetConfig()
	assert.Equal(t, "/mnt/override", config.Device.MountBasePath)
	assert.Equal(t, int64(5), config.FileService.MaxUploadSizeMB)

	// Values not overridden keep their defaults
	assert.Equal(t, 55005, config.GatewayService.HTTP.Port)
}

func TestConfigManagerOverrideFromJSON(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("CONFIG_JSON", `{"debugMode": true}`)

	cm, err := NewConfigManager[types.AppConfig]()
	require.NoError(t, err)
	assert.True(t, cm.kf.Bool("debugMode"))
}
