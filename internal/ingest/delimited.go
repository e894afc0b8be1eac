package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	apperrors "github.com/carlosrabelo/tabula/internal/errors"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// loadDelimited reads a ';' or ',' separated export. Every value is Text;
// files that are not valid UTF-8 are decoded as Windows-1252.
func loadDelimited(path string) (*domain.RecordSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewInputError("failed to read input file", err).WithContext("path", path)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, apperrors.NewDecodingError("failed to decode input as Windows-1252", err).
				WithContext("path", path)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectSeparator(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to parse delimited input", err).WithContext("path", path)
	}
	if len(records) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("%s has no header row", path), nil).
			WithContext("path", path)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([][]domain.Cell, 0, len(records)-1)
	for _, record := range records[1:] {
		if blankRow(record) {
			continue
		}
		row := make([]domain.Cell, len(headers))
		for i := 0; i < len(headers) && i < len(record); i++ {
			if strings.TrimSpace(record[i]) == "" {
				continue
			}
			row[i] = domain.TextCell(record[i])
		}
		rows = append(rows, row)
	}

	return domain.NewRecordSet(path, headers, rows), nil
}

// detectSeparator picks ';' or ',' by counting both in the header line
func detectSeparator(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) >= bytes.Count(line, []byte{','}) && bytes.IndexByte(line, ';') >= 0 {
		return ';'
	}
	return ','
}
