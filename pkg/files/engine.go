package files

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/drivebay/drivebay/pkg/types"
)

// FileOperationsEngine implements the mutating operations on the mounted
// medium: upload, download, delete, rename, and folder creation. All paths
// pass through the PathResolver; nothing here constructs a filesystem path
// from user input directly.
type FileOperationsEngine struct {
	config   types.FileServiceConfig
	resolver *PathResolver
	allowed  map[string]struct{}
}

func NewFileOperationsEngine(config types.FileServiceConfig, resolver *PathResolver) *FileOperationsEngine {
	allowed := make(map[string]struct{}, len(config.AllowedExtensions))
	for _, ext := range config.AllowedExtensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	return &FileOperationsEngine{
		config:   config,
		resolver: resolver,
		allowed:  allowed,
	}
}

// Upload streams req.Content to a temporary file in the target directory
// and atomically renames it into place, so no partial file is ever visible
// under its final name. A name collision is rejected with Conflict. The
// size limit is enforced against both the declared size and the streamed
// byte count. On any failure, including the caller aborting the stream, the
// temporary file is removed.
func (e *FileOperationsEngine) Upload(ctx context.Context, req types.UploadRequest) (types.FileEntry, error) {
	name, err := SanitizeName(req.Filename)
	if err != nil {
		return types.FileEntry{}, err
	}

	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := e.allowed[ext]; !ok {
		return types.FileEntry{}, &types.ErrInvalidFileType{Extension: ext}
	}

	maxBytes := e.config.MaxUploadSizeBytes()
	if req.DeclaredSize > maxBytes {
		return types.FileEntry{}, &types.ErrFileTooLarge{SizeBytes: req.DeclaredSize, MaxBytes: maxBytes}
	}

	dirAbs, err := e.resolver.Resolve(req.TargetDir)
	if err != nil {
		return types.FileEntry{}, err
	}
	dirInfo, err := os.Stat(dirAbs)
	if err != nil {
		return types.FileEntry{}, e.resolver.WrapFsError("upload", req.TargetDir, err)
	}
	if !dirInfo.IsDir() {
		return types.FileEntry{}, &types.ErrPathNotFound{Path: req.TargetDir}
	}

	finalPath := filepath.Join(dirAbs, name)
	if _, err := os.Lstat(finalPath); err == nil {
		return types.FileEntry{}, &types.ErrConflict{Path: name}
	}

	tmpPath := filepath.Join(dirAbs, fmt.Sprintf(".upload-%s.tmp", uuid.New().String()))
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return types.FileEntry{}, e.resolver.WrapFsError("upload", req.TargetDir, err)
	}

	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	written, copyErr := io.CopyN(f, req.Content, maxBytes+1)
	if copyErr == nil {
		// Limit reached with no EOF: the stream carries more than allowed
		f.Close()
		return types.FileEntry{}, &types.ErrFileTooLarge{SizeBytes: written, MaxBytes: maxBytes}
	}
	if copyErr != io.EOF {
		f.Close()
		if ctx.Err() != nil {
			return types.FileEntry{}, ctx.Err()
		}
		return types.FileEntry{}, e.resolver.WrapFsError("upload", name, copyErr)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return types.FileEntry{}, e.resolver.WrapFsError("upload", name, err)
	}
	if err := f.Close(); err != nil {
		return types.FileEntry{}, e.resolver.WrapFsError("upload", name, err)
	}

	if _, err := os.Lstat(finalPath); err == nil {
		return types.FileEntry{}, &types.ErrConflict{Path: name}
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return types.FileEntry{}, e.resolver.WrapFsError("upload", name, err)
	}
	committed = true

	entry, err := e.statEntry(finalPath)
	if err != nil {
		return types.FileEntry{}, err
	}

	log.Info().Str("name", name).Int64("size", written).Msg("file uploaded")
	return entry, nil
}

// Download opens the regular file at relativePath for streaming. Directory
// targets and missing paths fail NotFound. The caller owns the ReadCloser.
func (e *FileOperationsEngine) Download(relativePath string) (io.ReadCloser, types.FileEntry, error) {
	abs, err := e.resolver.Resolve(relativePath)
	if err != nil {
		return nil, types.FileEntry{}, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, types.FileEntry{}, e.resolver.WrapFsError("download", relativePath, err)
	}
	if info.IsDir() {
		return nil, types.FileEntry{}, &types.ErrPathNotFound{Path: relativePath}
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, types.FileEntry{}, e.resolver.WrapFsError("download", relativePath, err)
	}

	root, err := e.resolver.Root()
	if err != nil {
		f.Close()
		return nil, types.FileEntry{}, err
	}

	return f, newFileEntry(root, abs, info), nil
}

// Delete removes the file or directory (recursively) at relativePath. The
// mount root itself cannot be deleted.
func (e *FileOperationsEngine) Delete(relativePath string) error {
	abs, err := e.resolver.Resolve(relativePath)
	if err != nil {
		return err
	}
	root, err := e.resolver.Root()
	if err != nil {
		return err
	}
	if abs == root {
		return &types.ErrInvalidPath{Path: relativePath}
	}

	if _, err := os.Lstat(abs); err != nil {
		return e.resolver.WrapFsError("delete", relativePath, err)
	}
	if err := os.RemoveAll(abs); err != nil {
		return e.resolver.WrapFsError("delete", relativePath, err)
	}

	log.Info().Str("path", relativePath).Msg("path deleted")
	return nil
}

// Rename gives the entry at relativePath a new sibling name. newName is
// sanitized like an upload filename; an existing sibling fails Conflict and
// leaves both entries untouched.
func (e *FileOperationsEngine) Rename(relativePath string, newName string) (types.FileEntry, error) {
	name, err := SanitizeName(newName)
	if err != nil {
		return types.FileEntry{}, err
	}

	abs, err := e.resolver.Resolve(relativePath)
	if err != nil {
		return types.FileEntry{}, err
	}
	root, err := e.resolver.Root()
	if err != nil {
		return types.FileEntry{}, err
	}
	if abs == root {
		return types.FileEntry{}, &types.ErrInvalidPath{Path: relativePath}
	}

	if _, err := os.Lstat(abs); err != nil {
		return types.FileEntry{}, e.resolver.WrapFsError("rename", relativePath, err)
	}

	targetAbs := filepath.Join(filepath.Dir(abs), name)
	if _, err := os.Lstat(targetAbs); err == nil {
		return types.FileEntry{}, &types.ErrConflict{Path: name}
	}

	if err := os.Rename(abs, targetAbs); err != nil {
		return types.FileEntry{}, e.resolver.WrapFsError("rename", relativePath, err)
	}

	entry, err := e.statEntry(targetAbs)
	if err != nil {
		return types.FileEntry{}, err
	}

	log.Info().Str("path", relativePath).Str("new_name", name).Msg("path renamed")
	return entry, nil
}

// CreateFolder creates a directory named folderName under the parent
// directory at parentRelativePath.
func (e *FileOperationsEngine) CreateFolder(parentRelativePath string, folderName string) (types.FileEntry, error) {
	name, err := SanitizeName(folderName)
	if err != nil {
		return types.FileEntry{}, err
	}

	parentAbs, err := e.resolver.Resolve(parentRelativePath)
	if err != nil {
		return types.FileEntry{}, err
	}
	parentInfo, err := os.Stat(parentAbs)
	if err != nil {
		return types.FileEntry{}, e.resolver.WrapFsError("mkdir", parentRelativePath, err)
	}
	if !parentInfo.IsDir() {
		return types.FileEntry{}, &types.ErrPathNotFound{Path: parentRelativePath}
	}

	folderAbs := filepath.Join(parentAbs, name)
	if _, err := os.Lstat(folderAbs); err == nil {
		return types.FileEntry{}, &types.ErrConflict{Path: name}
	}

	if err := os.Mkdir(folderAbs, 0755); err != nil {
		return types.FileEntry{}, e.resolver.WrapFsError("mkdir", name, err)
	}

	entry, err := e.statEntry(folderAbs)
	if err != nil {
		return types.FileEntry{}, err
	}

	log.Info().Str("folder", name).Msg("folder created")
	return entry, nil
}

func (e *FileOperationsEngine) statEntry(abs string) (types.FileEntry, error) {
	root, err := e.resolver.Root()
	if err != nil {
		return types.FileEntry{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return types.FileEntry{}, e.resolver.WrapFsError("stat", abs, err)
	}
	return newFileEntry(root, abs, info), nil
}
