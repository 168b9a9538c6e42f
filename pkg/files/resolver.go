package files

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/drivebay/drivebay/pkg/common"
	"github.com/drivebay/drivebay/pkg/types"
)

// MountSource exposes the active mount root to the file layer and accepts
// device-loss notifications back from it. The MountController satisfies it.
type MountSource interface {
	MountRoot() (string, bool)
	Invalidate(cause error)
}

// PathResolver is the single trust boundary between caller-supplied
// relative paths and the filesystem. Every component that touches the
// mounted medium resolves its paths here and nowhere else.
type PathResolver struct {
	source MountSource
}

func NewPathResolver(source MountSource) *PathResolver {
	return &PathResolver{source: source}
}

// Root returns the active mount root or ErrNotMounted.
func (r *PathResolver) Root() (string, error) {
	root, ok := r.source.MountRoot()
	if !ok {
		return "", &types.ErrNotMounted{}
	}
	return root, nil
}

// Resolve turns a caller-supplied relative path into an absolute path that
// is guaranteed to lie within the mount root. The empty string resolves to
// the root itself. Containment is checked lexically after normalization and
// re-checked against the symlink-resolved ancestry, so neither ".."
// traversal nor a symlink planted on the medium can escape.
func (r *PathResolver) Resolve(relativePath string) (string, error) {
	root, err := r.Root()
	if err != nil {
		return "", err
	}

	if strings.ContainsRune(relativePath, 0) {
		return "", &types.ErrInvalidPath{Path: relativePath}
	}

	trimmed := strings.TrimLeft(relativePath, "/")
	abs := filepath.Join(root, trimmed)
	if !contained(abs, root) {
		return "", &types.ErrInvalidPath{Path: relativePath}
	}

	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", r.WrapFsError("resolve", relativePath, err)
	}
	resolvedAncestor, err := resolveExistingAncestor(abs)
	if err != nil {
		return "", r.WrapFsError("resolve", relativePath, err)
	}
	if !contained(resolvedAncestor, resolvedRoot) {
		return "", &types.ErrInvalidPath{Path: relativePath}
	}

	return abs, nil
}

// SanitizeName validates a single path component supplied by a caller
// (upload filename, rename target, new folder name).
func SanitizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || trimmed == "." || trimmed == ".." {
		return "", &types.ErrInvalidName{Name: name}
	}
	if strings.ContainsAny(trimmed, `/\`) || strings.ContainsRune(trimmed, 0) {
		return "", &types.ErrInvalidName{Name: name}
	}
	return trimmed, nil
}

// WrapFsError converts a raw filesystem error into the typed taxonomy,
// treating plausible medium-loss signals as such and invalidating the
// session so later calls observe NotMounted.
func (r *PathResolver) WrapFsError(op string, relativePath string, err error) error {
	if common.IsDeviceLostError(err) || r.rootVanished() {
		r.source.Invalidate(err)
		return &types.ErrDeviceLost{Cause: err}
	}
	if os.IsNotExist(err) {
		return &types.ErrPathNotFound{Path: relativePath}
	}
	if os.IsPermission(err) {
		return &types.ErrPermissionDenied{Path: relativePath}
	}
	return &types.ErrIO{Op: op, Cause: err}
}

func (r *PathResolver) rootVanished() bool {
	root, ok := r.source.MountRoot()
	return ok && !common.DirExists(root)
}

func contained(path string, root string) bool {
	return path == root || strings.HasPrefix(path, root+string(os.PathSeparator))
}

// resolveExistingAncestor resolves symlinks for the closest existing
// ancestor of path, so containment can be verified even for paths that do
// not exist yet (upload and mkdir targets).
func resolveExistingAncestor(path string) (string, error) {
	current := path
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			return resolved, nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", err
		}
		current = parent
	}
}
