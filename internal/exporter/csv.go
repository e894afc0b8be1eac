package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

// Separator is the field delimiter of every dataset file
const Separator = ';'

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes dataset files into a single output directory
type CSVWriter struct {
	dir string
	bom bool
}

// NewCSVWriter creates a writer rooted at dir
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

// WithBOM returns a copy of the writer that prefixes files with a UTF-8 BOM
func (w *CSVWriter) WithBOM(enabled bool) *CSVWriter {
	return &CSVWriter{dir: w.dir, bom: enabled}
}

// Dir returns the output directory
func (w *CSVWriter) Dir() string {
	return w.dir
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteTable writes table to <dir>/<name> and returns the written path
func (w *CSVWriter) WriteTable(name string, table domain.Table) (string, error) {
	path := w.resolvePath(name)
	err := w.WriteCSV(path, WriteOptions{
		Headers:   table.Columns,
		Records:   table.Rows,
		BOMPrefix: w.bom,
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// WriteCSV writes data to a CSV file. The file is replaced atomically so
// readers never observe a partial dataset.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	slog.Debug("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	var buf bytes.Buffer
	if options.BOMPrefix {
		buf.Write(utf8BOM)
	}

	writer := csv.NewWriter(&buf)
	writer.Comma = Separator

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	return writeFileAtomic(filePath, buf.Bytes())
}

// WriteJSON writes v as indented JSON to <dir>/<name>
func (w *CSVWriter) WriteJSON(name string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", name, err)
	}
	path := w.resolvePath(name)
	if err := writeFileAtomic(path, append(data, '\n')); err != nil {
		return "", err
	}
	return path, nil
}

// ReadTable reads a dataset file written by WriteTable
func ReadTable(path string) (domain.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return DecodeTable(file)
}

// DecodeTable parses semicolon-separated content with a header row
func DecodeTable(r io.Reader) (domain.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to read table: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = Separator
	records, err := reader.ReadAll()
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to parse table: %w", err)
	}
	if len(records) == 0 {
		return domain.NewTable(), nil
	}

	table := domain.NewTable(records[0]...)
	table.Rows = append(table.Rows, records[1:]...)
	return table, nil
}

// resolvePath places relative names inside the output directory
func (w *CSVWriter) resolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(w.dir, name)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
