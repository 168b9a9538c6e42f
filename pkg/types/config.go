package types

import (
	"time"
)

type AppConfig struct {
	DebugMode      bool                 `key:"debugMode" json:"debug_mode"`
	PrettyLogs     bool                 `key:"prettyLogs" json:"pretty_logs"`
	GatewayService GatewayServiceConfig `key:"gateway" json:"gateway_service"`
	Device         DeviceConfig         `key:"device" json:"device"`
	FileService    FileServiceConfig    `key:"fileService" json:"file_service"`
}

type GatewayServiceConfig struct {
	Host            string        `key:"host" json:"host"`
	HTTP            HTTPConfig    `key:"http" json:"http"`
	ShutdownTimeout time.Duration `key:"shutdownTimeout" json:"shutdown_timeout"`
}

type HTTPConfig struct {
	Port             int        `key:"port" json:"port"`
	EnablePrettyLogs bool       `key:"enablePrettyLogs" json:"enable_pretty_logs"`
	CORS             CORSConfig `key:"cors" json:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `key:"allowOrigins" json:"allow_origins"`
	AllowedMethods []string `key:"allowMethods" json:"allow_methods"`
	AllowedHeaders []string `key:"allowHeaders" json:"allow_headers"`
}

type DeviceConfig struct {
	MountBasePath        string        `key:"mountBasePath" json:"mount_base_path"`
	MountTimeout         time.Duration `key:"mountTimeout" json:"mount_timeout"`
	EnumerationTimeout   time.Duration `key:"enumerationTimeout" json:"enumeration_timeout"`
	UnmountRetries       uint64        `key:"unmountRetries" json:"unmount_retries"`
	UnmountRetryInterval time.Duration `key:"unmountRetryInterval" json:"unmount_retry_interval"`
}

type FileServiceConfig struct {
	MaxUploadSizeMB   int64    `key:"maxUploadSizeMb" json:"max_upload_size_mb"`
	AllowedExtensions []string `key:"allowedExtensions" json:"allowed_extensions"`
}

func (c *FileServiceConfig) MaxUploadSizeBytes() int64 {
	return c.MaxUploadSizeMB * 1024 * 1024
}
