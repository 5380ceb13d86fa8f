// Package archive unpacks downloaded data archives. The vault mostly serves
// zipped daily data sets, so extraction is an optional post-download step.
package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"

	"github.com/deltaneutral/dnfvault/pkg/fsutil"
)

// Manager handles archive extraction operations.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// IsArchive reports whether the filename looks like an archive this manager
// can extract.
func (am *Manager) IsArchive(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zip", ".gz", ".tgz", ".bz2", ".xz", ".7z", ".rar":
		return true
	default:
		return false
	}
}

// ExtractAll extracts all files from an archive to the specified destination
// directory.
func (am *Manager) ExtractAll(ctx context.Context, archivePath, destDir string) error {
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	if err := os.MkdirAll(destDir, fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		return am.extractEntry(fsys, path, destDir, d)
	}

	return fs.WalkDir(fsys, ".", walkFn)
}

// extractEntry processes a single archive entry and writes it to destDir.
func (am *Manager) extractEntry(fsys fs.FS, path, destDir string, d fs.DirEntry) error {
	// Skip the root directory
	if path == "." {
		return nil
	}

	targetPath := filepath.Join(destDir, path)

	if d.IsDir() {
		return os.MkdirAll(targetPath, fsutil.DirModeDefault)
	}

	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("failed to get file info for %s: %w", path, err)
	}

	return am.writeRegularFile(fsys, path, targetPath, info)
}

// writeRegularFile writes a regular file from the archive entry to targetPath.
func (am *Manager) writeRegularFile(fsys fs.FS, path, targetPath string, info fs.FileInfo) error {
	srcFile, err := fsys.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", path, err)
	}
	defer func() { _ = srcFile.Close() }()

	if err := os.MkdirAll(filepath.Dir(targetPath), fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", path, err)
	}

	perm := info.Mode().Perm()
	if perm == 0 {
		perm = fsutil.FileModeDefault
	}
	dstFile, err := os.OpenFile(targetPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", targetPath, err)
	}
	defer func() { _ = dstFile.Close() }()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file %s to %s: %w", path, targetPath, err)
	}

	return nil
}
