package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "github.com/carlosrabelo/tabula/internal/errors"
	"github.com/carlosrabelo/tabula/internal/ingest"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// FindExports lists the readable exports in dir, oldest first. Hidden
// files and spreadsheet lock files (~$name.xlsx) are skipped.
func FindExports(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.NewInputError(fmt.Sprintf("failed to read directory %s", dir), err).
			WithContext("path", dir)
	}

	var found []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if !ingest.Supported(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, FileInfo{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].ModTime.Equal(found[j].ModTime) {
			return found[i].Name < found[j].Name
		}
		return found[i].ModTime.Before(found[j].ModTime)
	})
	return found, nil
}

// GetLatestFile returns the most recently modified file from a list. Ties
// go to the later entry.
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if !file.ModTime.Before(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}

// ResolveInput returns path unchanged when it names a file. A directory
// resolves to its newest export.
func ResolveInput(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		// ingest reports missing files with the right error type
		return path, nil
	}

	exports, err := FindExports(path)
	if err != nil {
		return "", err
	}
	latest, ok := GetLatestFile(exports)
	if !ok {
		return "", apperrors.NewInputError(fmt.Sprintf("no enrollment export found in %s", path), nil).
			WithContext("path", path)
	}
	return latest.Path, nil
}

// EnsureWritable creates dir when needed and verifies files can be created
// in it
func EnsureWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err).
			WithContext("path", dir)
	}

	probe, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err).
			WithContext("path", dir)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}
