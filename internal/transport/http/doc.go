// Package http implements the read-only HTTP API over generated datasets and
// run history. Handlers stay thin: they parse the request, call a service
// and render JSON with chi/render. Every error goes through
// errors.ErrorHandler so clients always receive RFC 7807 problem documents.
//
// Routes (mounted by internal/app):
//
//	GET /healthz              liveness
//	GET /readyz               readiness (output dir, history db)
//	GET /api/version          build information
//	GET /api/datasets         manifest of the latest run
//	GET /api/datasets/{name}  dataset rows as JSON, ?format=csv for the file
//	GET /api/datasets/{name}/summary  category rows with their total
//	GET /api/runs             run history, ?limit=N
//	GET /api/runs/{id}        one stored run
//	GET /datasets/*           raw dataset files
package http
