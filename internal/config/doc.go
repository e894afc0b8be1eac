// Package config provides configuration management for tabula.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources, later ones winning:
//
//	1. Default values
//	2. A YAML file (explicit --config path, tabula.yaml or configs/tabula.yaml)
//	3. Environment variables
//
// Command line flags are applied on top by cmd/tabula.
//
// # Environment Variables
//
// All environment variables use the TABULA_ prefix followed by the section:
//
//	TABULA_LOGGING_LEVEL=debug
//	TABULA_PATHS_OUTPUT_DIR=out/datasets
//	TABULA_DATASETS_WORKERS=8
//	TABULA_DATASETS_ONLY=turno.csv,modalidade.csv
//	TABULA_HISTORY_PATH=tabula.db
//	TABULA_TELEMETRY_ENABLED=true
//
// # Validation
//
// Load validates struct tags with go-playground/validator and forces the JSON
// log format.
package config
