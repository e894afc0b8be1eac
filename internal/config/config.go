package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Datasets  DatasetsConfig  `yaml:"datasets" envconfig:"DATASETS"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	History   HistoryConfig   `yaml:"history" envconfig:"HISTORY"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	InputFile    string `yaml:"input_file" envconfig:"INPUT_FILE"`
	OutputDir    string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	SynonymsFile string `yaml:"synonyms_file" envconfig:"SYNONYMS_FILE"`
	Sheet        string `yaml:"sheet" envconfig:"SHEET"`
}

// DatasetsConfig controls dataset generation
type DatasetsConfig struct {
	Workers       int      `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=64"`
	RowWorkers    int      `yaml:"row_workers" envconfig:"ROW_WORKERS" validate:"min=1,max=64"`
	Only          []string `yaml:"only" envconfig:"ONLY" validate:"dive,required"`
	BOM           bool     `yaml:"bom" envconfig:"BOM"`
	ReferenceDate string   `yaml:"reference_date" envconfig:"REFERENCE_DATE" validate:"omitempty,datetime=2006-01-02"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Addr            string          `yaml:"addr" envconfig:"ADDR" validate:"required"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// HistoryConfig points at the optional run history database. An empty path
// disables history.
type HistoryConfig struct {
	Path string `yaml:"path" envconfig:"PATH"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled       bool   `yaml:"enabled" envconfig:"ENABLED"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	Environment   string `yaml:"environment" envconfig:"ENVIRONMENT"`
}

// Load builds the configuration from defaults, then the YAML file (explicit
// path or the first known location that exists), then TABULA_* environment
// variables. Later sources win.
func Load(path string) (*Config, error) {
	cfg := Default()

	configFile := path
	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// getConfigFilePath returns the first config file found in the known locations
func getConfigFilePath() string {
	for _, location := range configFileLocations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

var validate = validator.New()

// Validate checks struct constraints and normalizes logging settings
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return err
	}

	// JSON is the only log format
	c.Logging.Format = DefaultLogFormat
	if c.Logging.FilePath == "" && c.Logging.Output != "console" {
		c.Logging.FilePath = DefaultLogFile
	}
	return nil
}

// Reference parses the configured reference date. The zero time means the
// caller should use the current date.
func (c *Config) Reference() (time.Time, error) {
	if c.Datasets.ReferenceDate == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(ReferenceDateLayout, c.Datasets.ReferenceDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reference date %q: %w", c.Datasets.ReferenceDate, err)
	}
	return t, nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   DefaultLogOutput,
			FilePath: DefaultLogFile,
		},
		Paths: PathsConfig{
			OutputDir: DefaultOutputDir,
		},
		Datasets: DatasetsConfig{
			Workers:    DefaultDatasetWorkers,
			RowWorkers: DefaultRowWorkers,
		},
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Telemetry: TelemetryConfig{
			TraceExporter: ExporterNone,
			Environment:   "development",
		},
	}
}
