package ingest

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/extrame/xls"

	apperrors "github.com/carlosrabelo/tabula/internal/errors"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

// legacyCharset is the code page assumed for BIFF string records that
// carry no unicode flag
const legacyCharset = "utf-8"

// loadLegacyWorkbook reads a BIFF (.xls) workbook. The decoder renders every
// cell as text, so numbers and ISO dates are recovered from that text.
func loadLegacyWorkbook(path string, opts Options) (rs *domain.RecordSet, err error) {
	// the BIFF decoder panics on truncated streams
	defer func() {
		if r := recover(); r != nil {
			rs = nil
			err = apperrors.NewDecodingError(fmt.Sprintf("malformed .xls workbook: %v", r), nil).
				WithContext("path", path)
		}
	}()

	closer, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewDecodingError("failed to open .xls workbook", err).WithContext("path", path)
	}
	defer closer.Close()
	wb, err := xls.OpenReader(closer, legacyCharset)
	if err != nil {
		return nil, apperrors.NewDecodingError("failed to open .xls workbook", err).WithContext("path", path)
	}

	sheet, err := legacySheet(wb, opts.Sheet, path)
	if err != nil {
		return nil, err
	}

	raw := legacyRows(sheet)
	if len(raw) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("sheet %q has no header row", sheet.Name), nil).
			WithContext("path", path)
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([][]domain.Cell, 0, len(raw)-1)
	for _, values := range raw[1:] {
		if blankRow(values) {
			continue
		}
		row := make([]domain.Cell, len(headers))
		for col := 0; col < len(headers); col++ {
			if col < len(values) {
				row[col] = legacyCell(values[col])
			} else {
				row[col] = domain.MissingCell()
			}
		}
		rows = append(rows, row)
	}

	return domain.NewRecordSet(path, headers, rows), nil
}

func legacySheet(wb *xls.WorkBook, name, path string) (*xls.WorkSheet, error) {
	if wb.NumSheets() == 0 {
		return nil, apperrors.NewParsingError("workbook has no worksheets", nil).WithContext("path", path)
	}
	if name == "" {
		return wb.GetSheet(0), nil
	}
	for i := 0; i < wb.NumSheets(); i++ {
		if s := wb.GetSheet(i); s != nil && s.Name == name {
			return s, nil
		}
	}
	return nil, apperrors.NewDecodingError(fmt.Sprintf("failed to read sheet %q", name), nil).
		WithContext("path", path)
}

// legacyRows flattens a worksheet into text rows, keeping row positions
func legacyRows(sheet *xls.WorkSheet) [][]string {
	if sheet == nil {
		return nil
	}
	out := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		r := sheet.Row(i)
		if r == nil {
			out = append(out, nil)
			continue
		}
		values := make([]string, r.LastCol())
		for col := range values {
			values[col] = r.Col(col)
		}
		out = append(out, values)
	}
	return out
}

func legacyCell(raw string) domain.Cell {
	text := strings.TrimSpace(raw)
	if text == "" {
		return domain.MissingCell()
	}
	if v, err := strconv.ParseFloat(text, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) && !leadingZero(text) {
		return domain.NumberCell(v)
	}
	if t, ok := parseISODate(text); ok {
		return domain.DateCell(t)
	}
	return domain.TextCell(raw)
}

// leadingZero reports codes such as "00123" that must stay text
func leadingZero(text string) bool {
	return len(text) > 1 && text[0] == '0' && text[1] != '.'
}
