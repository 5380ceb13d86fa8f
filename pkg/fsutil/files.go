package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Move moves a file from src to dst. It first attempts os.Rename for an
// atomic operation and falls back to copy + delete when the rename fails
// due to crossing filesystem boundaries.
func Move(src, dst string) error {
	if src == "" || dst == "" {
		return fmt.Errorf("source and destination paths cannot be empty")
	}

	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("failed to stat source %s: %w", src, err)
	}

	dstDir := filepath.Dir(dst)
	if err := os.MkdirAll(dstDir, DirModeDefault); err != nil {
		return fmt.Errorf("failed to create destination directory %s: %w", dstDir, err)
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	if !isCrossFilesystemError(err) {
		return fmt.Errorf("failed to rename %s to %s: %w", src, dst, err)
	}

	return moveFile(src, dst)
}

// isCrossFilesystemError determines if an error from os.Rename indicates
// a cross-filesystem boundary issue that requires fallback to copy+delete.
func isCrossFilesystemError(err error) bool {
	if err == nil {
		return false
	}

	var linkError *os.LinkError
	if errors.As(err, &linkError) {
		if errno, ok := linkError.Err.(syscall.Errno); ok {
			return errno == syscall.EXDEV
		}
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return isCrossFilesystemError(pathErr.Err)
	}

	// Fallback to string matching for platforms where EXDEV isn't surfaced
	// as a syscall errno.
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "cross-device") || strings.Contains(errMsg, "cross device")
}

// moveFile handles moving a single file across filesystem boundaries.
func moveFile(src, dst string) error {
	if err := Copy(src, dst); err != nil {
		return fmt.Errorf("failed to copy file %s to %s: %w", src, dst, err)
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		_ = os.Remove(src)
		return fmt.Errorf("failed to stat source file after copy: %w", err)
	}

	if err := os.Chmod(dst, srcInfo.Mode()); err != nil {
		_ = os.Remove(src)
		return fmt.Errorf("failed to set permissions on %s: %w", dst, err)
	}

	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove source file %s after copy: %w", src, err)
	}

	return nil
}

// Copy copies the contents of srcFile to dstFile.
func Copy(srcFile, dstFile string) error {
	src, err := os.Open(srcFile)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcFile, err)
	}
	defer src.Close()

	dst, err := os.Create(dstFile)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dstFile, err)
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	if err != nil {
		return fmt.Errorf("failed to copy from %s to %s: %w", srcFile, dstFile, err)
	}

	return nil
}
