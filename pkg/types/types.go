package types

import (
	"io"
	"time"
)

// MountState tracks the lifecycle of the single active mount session.
type MountState string

const (
	MountStateUnmounted  MountState = "UNMOUNTED"
	MountStateMounting   MountState = "MOUNTING"
	MountStateMounted    MountState = "MOUNTED"
	MountStateUnmounting MountState = "UNMOUNTING"
)

// BlockDevice describes one candidate removable partition. It is recomputed
// on every enumeration call and never persisted.
type BlockDevice struct {
	Name       string  `json:"name"`
	Path       string  `json:"path"`
	SizeBytes  uint64  `json:"size_bytes"`
	Size       string  `json:"size"`
	Label      string  `json:"label,omitempty"`
	FsType     string  `json:"fstype,omitempty"`
	Mountpoint *string `json:"mountpoint"`
	Removable  bool    `json:"removable"`
}

// MountSession is the live binding between a mounted device and its mount
// root. At most one session exists at a time.
type MountSession struct {
	Id         string    `json:"id"`
	DeviceName string    `json:"device"`
	DevicePath string    `json:"device_path"`
	MountPoint string    `json:"mount_point"`
	MountedAt  time.Time `json:"mounted_at"`
}

type FileCategory string

const (
	FileCategoryFolder     FileCategory = "folder"
	FileCategoryImage      FileCategory = "image"
	FileCategoryPdf        FileCategory = "pdf"
	FileCategoryWord       FileCategory = "word"
	FileCategoryExcel      FileCategory = "excel"
	FileCategoryPowerpoint FileCategory = "powerpoint"
	FileCategoryVideo      FileCategory = "video"
	FileCategoryAudio      FileCategory = "audio"
	FileCategoryArchive    FileCategory = "archive"
	FileCategoryCode       FileCategory = "code"
	FileCategoryText       FileCategory = "text"
	FileCategoryFile       FileCategory = "file"
)

// FileEntry is an ephemeral directory listing result. AbsPath always lies
// within the active session's mount root.
type FileEntry struct {
	Name      string       `json:"name"`
	Path      string       `json:"path"`
	AbsPath   string       `json:"-"`
	IsDir     bool         `json:"is_directory"`
	Size      int64        `json:"size"`
	HumanSize string       `json:"human_size"`
	ModTime   time.Time    `json:"modified"`
	Category  FileCategory `json:"icon"`
}

type UploadRequest struct {
	TargetDir    string
	Filename     string
	Content      io.Reader
	DeclaredSize int64
}

type UsageTag string

const (
	UsageTagNormal  UsageTag = "normal"
	UsageTagWarning UsageTag = "warning"
	UsageTagDanger  UsageTag = "danger"
)

// DriveStatus is a live snapshot of the mounted filesystem. Figures are
// never cached; they come from a fresh statfs on every call.
type DriveStatus struct {
	Mounted      bool     `json:"mounted"`
	Device       string   `json:"device,omitempty"`
	MountPoint   string   `json:"mount_point,omitempty"`
	TotalBytes   uint64   `json:"total_space"`
	UsedBytes    uint64   `json:"used_space"`
	FreeBytes    uint64   `json:"free_space"`
	UsagePercent int      `json:"usage_percent"`
	UsageTag     UsageTag `json:"usage_tag,omitempty"`
}
