package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMove(t *testing.T) {
	t.Run("moves file within same filesystem", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "a.part")
		dst := filepath.Join(dir, "a.zip")
		require.NoError(t, os.WriteFile(src, []byte("payload"), FileModeDefault))

		require.NoError(t, Move(src, dst))

		content, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(content))
		_, err = os.Stat(src)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("creates destination directory", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "b.part")
		dst := filepath.Join(dir, "nested", "deeper", "b.zip")
		require.NoError(t, os.WriteFile(src, []byte("x"), FileModeDefault))

		require.NoError(t, Move(src, dst))

		_, err := os.Stat(dst)
		assert.NoError(t, err)
	})

	t.Run("overwrites existing destination", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "c.part")
		dst := filepath.Join(dir, "c.zip")
		require.NoError(t, os.WriteFile(src, []byte("new"), FileModeDefault))
		require.NoError(t, os.WriteFile(dst, []byte("old"), FileModeDefault))

		require.NoError(t, Move(src, dst))

		content, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "new", string(content))
	})

	t.Run("missing source fails", func(t *testing.T) {
		dir := t.TempDir()
		err := Move(filepath.Join(dir, "missing"), filepath.Join(dir, "dst"))
		assert.Error(t, err)
	})

	t.Run("empty paths fail", func(t *testing.T) {
		assert.Error(t, Move("", "dst"))
		assert.Error(t, Move("src", ""))
	})
}

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("contents"), FileModeDefault))

	require.NoError(t, Copy(src, dst))

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "contents", string(content))

	// source remains
	_, err = os.Stat(src)
	assert.NoError(t, err)
}
