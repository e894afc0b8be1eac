// Package ingest reads an enrollment export into a raw record set. The
// format is chosen by file extension.
package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/carlosrabelo/tabula/internal/errors"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

// Options configures loading
type Options struct {
	// Sheet selects a worksheet by name; empty means the first sheet.
	Sheet string
}

// Supported reports whether Load can decode a file with path's extension
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm", ".xls", ".csv", ".txt":
		return true
	}
	return false
}

// Load reads the export at path
func Load(path string, opts Options) (*domain.RecordSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewInputError(fmt.Sprintf("input file not found: %s", path), err).
				WithContext("path", path)
		}
		return nil, apperrors.NewInputError("failed to stat input file", err).WithContext("path", path)
	}
	if info.IsDir() {
		return nil, apperrors.NewInputError(fmt.Sprintf("input path is a directory: %s", path), nil).
			WithContext("path", path)
	}

	start := time.Now()
	ext := strings.ToLower(filepath.Ext(path))

	var rs *domain.RecordSet
	switch ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		rs, err = loadWorkbook(path, opts)
	case ".csv", ".txt":
		rs, err = loadDelimited(path)
	case ".xls":
		rs, err = loadLegacyWorkbook(path, opts)
	default:
		return nil, apperrors.NewDecodingError(fmt.Sprintf("unsupported input format %q", ext), nil).
			WithContext("path", path)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("input loaded",
		slog.String("path", path),
		slog.String("format", strings.TrimPrefix(ext, ".")),
		slog.Int("columns", len(rs.Headers)),
		slog.Int("rows", rs.Len()),
		slog.Duration("duration", time.Since(start)))
	return rs, nil
}
