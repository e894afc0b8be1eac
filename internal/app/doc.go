// Package app wires the HTTP read API of tabula.
//
// # Initialization Flow
//
//	1. Telemetry providers and dataset metrics
//	2. Optional run history database (SQLite)
//	3. Data and health services
//	4. chi router with middleware and routes
//	5. http.Server from the server section of the config
//
// Run blocks until the context is cancelled or SIGINT/SIGTERM arrives, then
// shuts the server down within server.shutdown_timeout.
package app
