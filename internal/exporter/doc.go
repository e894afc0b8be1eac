// Package exporter writes aggregated tables as semicolon-separated UTF-8
// files and reads them back for serving.
//
// Example usage:
//
//	w := exporter.NewCSVWriter("datasets")
//	path, err := w.WriteTable("modalidade.csv", table)
package exporter
