package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds the resolved absolute paths used during a run
type Paths struct {
	BaseDir      string
	InputFile    string
	OutputDir    string
	ManifestFile string
	LogsDir      string
	LogFile      string
	SynonymsFile string
	HistoryDB    string
}

// ResolvePaths makes every configured path absolute against base. An empty
// base means the current working directory.
func (c *Config) ResolvePaths(base string) (*Paths, error) {
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	outputDir := resolve(c.Paths.OutputDir)
	logFile := resolve(c.Logging.FilePath)

	paths := &Paths{
		BaseDir:      base,
		InputFile:    resolve(c.Paths.InputFile),
		OutputDir:    outputDir,
		ManifestFile: filepath.Join(outputDir, ManifestFileName),
		LogFile:      logFile,
		SynonymsFile: resolve(c.Paths.SynonymsFile),
		HistoryDB:    resolve(c.History.Path),
	}
	if logFile != "" {
		paths.LogsDir = filepath.Dir(logFile)
	}
	return paths, nil
}

// EnsureDirectories creates the output directory and, when logging to a
// file, the logs directory
func (p *Paths) EnsureDirectories() error {
	directories := []string{p.OutputDir}
	if p.LogsDir != "" {
		directories = append(directories, p.LogsDir)
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// DatasetPath returns the output path for a dataset file
func (p *Paths) DatasetPath(name string) string {
	return filepath.Join(p.OutputDir, name)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
