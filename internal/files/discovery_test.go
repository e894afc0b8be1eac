package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/carlosrabelo/tabula/internal/errors"
)

func touch(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	mtime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestFindExports(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "new.xlsx", time.Minute)
	touch(t, dir, "old.csv", time.Hour)
	touch(t, dir, "legacy.xls", time.Second)
	touch(t, dir, "notes.pdf", time.Second)
	touch(t, dir, "~$new.xlsx", time.Second)
	touch(t, dir, ".hidden.csv", time.Second)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.xlsx"), 0o755))

	found, err := FindExports(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(found))
	for _, f := range found {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"old.csv", "new.xlsx", "legacy.xls"}, names)
	assert.Equal(t, int64(1), found[0].Size)
}

func TestFindExportsMissingDir(t *testing.T) {
	_, err := FindExports(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInput))
}

func TestGetLatestFile(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name   string
		files  []FileInfo
		want   string
		wantOK bool
	}{
		{"empty", nil, "", false},
		{"single", []FileInfo{{Name: "a", ModTime: now}}, "a", true},
		{"newest wins", []FileInfo{{Name: "a", ModTime: now}, {Name: "b", ModTime: now.Add(-time.Hour)}}, "a", true},
		{"tie goes to later", []FileInfo{{Name: "a", ModTime: now}, {Name: "b", ModTime: now}}, "b", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GetLatestFile(tt.files)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestResolveInput(t *testing.T) {
	dir := t.TempDir()
	older := touch(t, dir, "export-may.xlsx", 2*time.Hour)
	newer := touch(t, dir, "export-june.xlsx", time.Hour)

	t.Run("file is returned as is", func(t *testing.T) {
		got, err := ResolveInput(older)
		require.NoError(t, err)
		assert.Equal(t, older, got)
	})

	t.Run("directory picks newest export", func(t *testing.T) {
		got, err := ResolveInput(dir)
		require.NoError(t, err)
		assert.Equal(t, newer, got)
	})

	t.Run("missing path is left to the loader", func(t *testing.T) {
		missing := filepath.Join(dir, "nope.xlsx")
		got, err := ResolveInput(missing)
		require.NoError(t, err)
		assert.Equal(t, missing, got)
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := ResolveInput(t.TempDir())
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInput))
	})
}

func TestEnsureWritable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	require.NoError(t, EnsureWritable(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	err = EnsureWritable(filepath.Join(blocker, "out"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}
