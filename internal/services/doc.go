// Package services sits between the entry points (CLI and HTTP) and the
// generation packages.
//
// BuildService runs one generation: load the export, resolve headers,
// enrich rows, build and write every dataset, then write the manifest and
// optionally record the run. DataService reads back what a run produced and
// the stored history. HealthService backs the health endpoints.
//
// Services take their logger by injection and fall back to slog.Default.
package services
