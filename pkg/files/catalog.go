package files

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/drivebay/drivebay/pkg/common"
	"github.com/drivebay/drivebay/pkg/types"
)

// FileCatalog lists directories on the mounted medium with derived
// metadata. Listings are computed fresh on every call; no cache exists.
type FileCatalog struct {
	resolver *PathResolver
}

func NewFileCatalog(resolver *PathResolver) *FileCatalog {
	return &FileCatalog{resolver: resolver}
}

// List returns the entries of the directory at relativePath, directories
// first, then files, each group ordered case-insensitively by name.
func (c *FileCatalog) List(relativePath string) ([]types.FileEntry, error) {
	abs, err := c.resolver.Resolve(relativePath)
	if err != nil {
		return nil, err
	}
	root, err := c.resolver.Root()
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, c.resolver.WrapFsError("list", relativePath, err)
	}
	if !info.IsDir() {
		return nil, &types.ErrPathNotFound{Path: relativePath}
	}

	dirEntries, err := os.ReadDir(abs)
	if err != nil {
		return nil, c.resolver.WrapFsError("list", relativePath, err)
	}

	entries := make([]types.FileEntry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		entryInfo, err := dirEntry.Info()
		if err != nil {
			log.Warn().Err(err).Str("name", dirEntry.Name()).Msg("skipping unreadable entry")
			continue
		}
		entries = append(entries, newFileEntry(root, filepath.Join(abs, dirEntry.Name()), entryInfo))
	}

	sortEntries(entries)
	return entries, nil
}

func newFileEntry(root string, abs string, info os.FileInfo) types.FileEntry {
	relPath := strings.TrimPrefix(strings.TrimPrefix(abs, root), string(os.PathSeparator))

	entry := types.FileEntry{
		Name:    info.Name(),
		Path:    relPath,
		AbsPath: abs,
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
	}

	if info.IsDir() {
		entry.HumanSize = "--"
		entry.Category = types.FileCategoryFolder
	} else {
		entry.Size = info.Size()
		entry.HumanSize = common.HumanSize(uint64(info.Size()))
		entry.Category = CategoryForName(info.Name())
	}

	return entry
}

// Directories first, then case-insensitive by name within each group.
func sortEntries(entries []types.FileEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
}

var categoryByExtension = map[string]types.FileCategory{
	".jpg": types.FileCategoryImage, ".jpeg": types.FileCategoryImage, ".png": types.FileCategoryImage,
	".gif": types.FileCategoryImage, ".bmp": types.FileCategoryImage, ".tiff": types.FileCategoryImage,
	".webp": types.FileCategoryImage, ".svg": types.FileCategoryImage,

	".pdf": types.FileCategoryPdf,

	".doc": types.FileCategoryWord, ".docx": types.FileCategoryWord,

	".xls": types.FileCategoryExcel, ".xlsx": types.FileCategoryExcel,
	".csv": types.FileCategoryExcel, ".ods": types.FileCategoryExcel,

	".ppt": types.FileCategoryPowerpoint, ".pptx": types.FileCategoryPowerpoint, ".odp": types.FileCategoryPowerpoint,

	".mp4": types.FileCategoryVideo, ".avi": types.FileCategoryVideo, ".mkv": types.FileCategoryVideo,
	".mov": types.FileCategoryVideo, ".wmv": types.FileCategoryVideo, ".flv": types.FileCategoryVideo,
	".webm": types.FileCategoryVideo,

	".mp3": types.FileCategoryAudio, ".wav": types.FileCategoryAudio, ".flac": types.FileCategoryAudio,
	".aac": types.FileCategoryAudio, ".ogg": types.FileCategoryAudio, ".m4a": types.FileCategoryAudio,

	".zip": types.FileCategoryArchive, ".rar": types.FileCategoryArchive, ".7z": types.FileCategoryArchive,
	".tar": types.FileCategoryArchive, ".gz": types.FileCategoryArchive, ".bz2": types.FileCategoryArchive,
	".xz": types.FileCategoryArchive,

	".py": types.FileCategoryCode, ".js": types.FileCategoryCode, ".go": types.FileCategoryCode,
	".html": types.FileCategoryCode, ".css": types.FileCategoryCode, ".json": types.FileCategoryCode,
	".xml": types.FileCategoryCode, ".sql": types.FileCategoryCode, ".sh": types.FileCategoryCode,
	".c": types.FileCategoryCode, ".cpp": types.FileCategoryCode, ".h": types.FileCategoryCode,
	".hpp": types.FileCategoryCode, ".java": types.FileCategoryCode,
	".yml": types.FileCategoryCode, ".yaml": types.FileCategoryCode, ".toml": types.FileCategoryCode,

	".txt": types.FileCategoryText, ".md": types.FileCategoryText, ".log": types.FileCategoryText,
	".ini": types.FileCategoryText, ".cfg": types.FileCategoryText, ".conf": types.FileCategoryText,
	".rtf": types.FileCategoryText, ".odt": types.FileCategoryText,
}

// CategoryForName maps a filename onto its icon category, falling back to
// the generic file category for unknown extensions.
func CategoryForName(name string) types.FileCategory {
	if category, ok := categoryByExtension[strings.ToLower(filepath.Ext(name))]; ok {
		return category
	}
	return types.FileCategoryFile
}
