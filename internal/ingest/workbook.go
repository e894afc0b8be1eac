package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/carlosrabelo/tabula/internal/errors"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

// builtInDateFormats are the built-in number format IDs that render dates
var builtInDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true,
	20: true, 21: true, 22: true, 45: true, 46: true, 47: true,
}

type workbookReader struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	// dateStyles caches whether a style index carries a date format
	dateStyles map[int]bool
}

func loadWorkbook(path string, opts Options) (*domain.RecordSet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewDecodingError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewParsingError("workbook has no worksheets", nil).WithContext("path", path)
		}
		sheet = sheets[0]
	}

	r := &workbookReader{f: f, sheet: sheet, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewDecodingError(fmt.Sprintf("failed to read sheet %q", sheet), err).
			WithContext("path", path)
	}
	if len(raw) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("sheet %q has no header row", sheet), nil).
			WithContext("path", path)
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([][]domain.Cell, 0, len(raw)-1)
	for i, values := range raw[1:] {
		if blankRow(values) {
			continue
		}
		row := make([]domain.Cell, len(headers))
		for col := 0; col < len(headers) && col < len(values); col++ {
			cell, err := r.cell(col+1, i+2, values[col])
			if err != nil {
				return nil, apperrors.NewDecodingError("failed to read cell", err).
					WithContext("path", path).
					WithContext("row", i+2).
					WithContext("column", col+1)
			}
			row[col] = cell
		}
		rows = append(rows, row)
	}

	return domain.NewRecordSet(path, headers, rows), nil
}

// cell converts one raw value into a tagged cell using the stored type and
// the number format of its style
func (r *workbookReader) cell(col, row int, raw string) (domain.Cell, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.MissingCell(), nil
	}

	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return domain.Cell{}, err
	}
	cellType, err := r.f.GetCellType(r.sheet, ref)
	if err != nil {
		return domain.Cell{}, err
	}

	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return domain.TextCell(raw), nil
	case excelize.CellTypeBool:
		if raw == "1" {
			return domain.TextCell("TRUE"), nil
		}
		return domain.TextCell("FALSE"), nil
	case excelize.CellTypeError:
		return domain.MissingCell(), nil
	case excelize.CellTypeDate:
		if t, ok := parseISODate(raw); ok {
			return domain.DateCell(t), nil
		}
		return domain.TextCell(raw), nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return domain.TextCell(raw), nil
	}

	isDate, err := r.hasDateFormat(ref)
	if err != nil {
		return domain.Cell{}, err
	}
	if isDate {
		if t, err := excelize.ExcelDateToTime(v, r.date1904); err == nil {
			return domain.DateCell(t), nil
		}
	}
	return domain.NumberCell(v), nil
}

func (r *workbookReader) hasDateFormat(ref string) (bool, error) {
	idx, err := r.f.GetCellStyle(r.sheet, ref)
	if err != nil {
		return false, err
	}
	if idx == 0 {
		return false, nil
	}
	if cached, ok := r.dateStyles[idx]; ok {
		return cached, nil
	}

	isDate := false
	if style, err := r.f.GetStyle(idx); err == nil && style != nil {
		isDate = builtInDateFormats[style.NumFmt]
		if !isDate && style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		}
	}
	r.dateStyles[idx] = isDate
	return isDate, nil
}

// isDateFormatCode reports whether a custom number format renders a date
// or time. Quoted literals, bracketed sections and escaped characters are
// ignored.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket, escaped := false, false, false
	for _, ch := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case inQuote:
			inQuote = ch != '"'
		case inBracket:
			inBracket = ch != ']'
		case ch == '\\':
			escaped = true
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		default:
			b.WriteRune(ch)
		}
	}
	cleaned := b.String()
	if cleaned == "general" {
		return false
	}
	return strings.ContainsAny(cleaned, "ydmhs")
}

func parseISODate(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04:05.999", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func blankRow(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
