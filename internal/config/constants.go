package config

import "time"

// Application constants
const (
	// Application Info
	AppName = "tabula"

	// EnvPrefix namespaces every environment variable (TABULA_*)
	EnvPrefix = "TABULA"

	// File Paths (relative to the working directory)
	DefaultOutputDir   = "datasets"
	DefaultLogsDir     = "logs"
	DefaultLogFile     = "logs/tabula.log"
	DefaultHistoryFile = "tabula.db"
	ManifestFileName   = "manifest.json"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "console"

	// Dataset generation
	DefaultDatasetWorkers = 4
	DefaultRowWorkers     = 4
	ReferenceDateLayout   = "2006-01-02"

	// HTTP
	DefaultAddr            = ":8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRateLimit       = 20 // requests per second
	DefaultBurstSize       = 40

	// Telemetry
	ExporterStdout = "stdout"
	ExporterNone   = "none"
)

// Config file locations searched when no explicit file is given
var configFileLocations = []string{
	"tabula.yaml",
	"configs/tabula.yaml",
}
