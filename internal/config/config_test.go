package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tabula.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, DefaultOutputDir, cfg.Paths.OutputDir)
				assert.Equal(t, DefaultDatasetWorkers, cfg.Datasets.Workers)
				assert.Equal(t, DefaultRowWorkers, cfg.Datasets.RowWorkers)
				assert.False(t, cfg.Datasets.BOM)
				assert.Empty(t, cfg.Datasets.Only)
				assert.Equal(t, ":8080", cfg.Server.Addr)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.True(t, cfg.Server.RateLimit.Enabled)
				assert.Empty(t, cfg.History.Path)
				assert.False(t, cfg.Telemetry.Enabled)
				assert.Equal(t, ExporterNone, cfg.Telemetry.TraceExporter)
			},
		},
		{
			name: "environment overrides defaults",
			env: map[string]string{
				"TABULA_LOGGING_LEVEL":       "debug",
				"TABULA_PATHS_OUTPUT_DIR":    "out",
				"TABULA_DATASETS_WORKERS":    "8",
				"TABULA_DATASETS_ONLY":       "turno.csv,modalidade.csv",
				"TABULA_DATASETS_BOM":        "true",
				"TABULA_SERVER_READ_TIMEOUT": "30s",
				"TABULA_HISTORY_PATH":        "runs.db",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "out", cfg.Paths.OutputDir)
				assert.Equal(t, 8, cfg.Datasets.Workers)
				assert.Equal(t, []string{"turno.csv", "modalidade.csv"}, cfg.Datasets.Only)
				assert.True(t, cfg.Datasets.BOM)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "runs.db", cfg.History.Path)
			},
		},
		{
			name: "file overrides defaults",
			file: `
logging:
  level: warn
  output: both
datasets:
  workers: 2
  reference_date: "2024-03-01"
server:
  addr: ":9090"
  rate_limit:
    enabled: false
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "both", cfg.Logging.Output)
				assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)
				assert.Equal(t, 2, cfg.Datasets.Workers)
				assert.Equal(t, ":9090", cfg.Server.Addr)
				assert.False(t, cfg.Server.RateLimit.Enabled)
				// untouched sections keep their defaults
				assert.Equal(t, DefaultOutputDir, cfg.Paths.OutputDir)

				ref, err := cfg.Reference()
				require.NoError(t, err)
				assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ref)
			},
		},
		{
			name: "environment wins over file",
			env:  map[string]string{"TABULA_DATASETS_WORKERS": "6"},
			file: "datasets:\n  workers: 2\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 6, cfg.Datasets.Workers)
			},
		},
		{
			name:    "invalid log level",
			env:     map[string]string{"TABULA_LOGGING_LEVEL": "verbose"},
			wantErr: "Config.Logging.Level failed on oneof",
		},
		{
			name:    "workers out of range",
			env:     map[string]string{"TABULA_DATASETS_WORKERS": "0"},
			wantErr: "Config.Datasets.Workers failed on min",
		},
		{
			name:    "malformed reference date",
			env:     map[string]string{"TABULA_DATASETS_REFERENCE_DATE": "01/03/2024"},
			wantErr: "Config.Datasets.ReferenceDate failed on datetime",
		},
		{
			name:    "unknown yaml key",
			file:    "datasets:\n  wrokers: 2\n",
			wantErr: "failed to load config from file",
		},
		{
			name:    "bad env value",
			env:     map[string]string{"TABULA_DATASETS_WORKERS": "many"},
			wantErr: "failed to load config from env",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateForcesJSON(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestReferenceEmpty(t *testing.T) {
	ref, err := Default().Reference()
	require.NoError(t, err)
	assert.True(t, ref.IsZero())
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "tabula.example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "inbox", cfg.Paths.InputFile)
	assert.Equal(t, "tabula.db", cfg.History.Path)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 40, cfg.Server.RateLimit.Burst)
}
