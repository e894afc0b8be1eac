package domain

import (
	"strconv"
	"time"
)

// CellKind identifies which payload of a Cell is populated
type CellKind uint8

const (
	CellMissing CellKind = iota
	CellText
	CellNumber
	CellDate
)

// String returns the kind name
func (k CellKind) String() string {
	switch k {
	case CellText:
		return "text"
	case CellNumber:
		return "number"
	case CellDate:
		return "date"
	default:
		return "missing"
	}
}

// Cell is a single spreadsheet value. Exactly one payload is meaningful,
// selected by Kind; a zero Cell is Missing.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Time   time.Time
}

// MissingCell returns the missing marker
func MissingCell() Cell {
	return Cell{}
}

// TextCell wraps a text value. Blank text stays Text; consumers decide
// whether blank means missing.
func TextCell(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

// NumberCell wraps a numeric value
func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Number: f}
}

// DateCell wraps a date/time value
func DateCell(t time.Time) Cell {
	return Cell{Kind: CellDate, Time: t}
}

// IsMissing reports whether the cell carries no value
func (c Cell) IsMissing() bool {
	return c.Kind == CellMissing
}

// Display renders the cell the way it is written into reports.
// Integral numbers drop the fractional part, dates use ISO layout.
func (c Cell) Display() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		if c.Number == float64(int64(c.Number)) {
			return strconv.FormatInt(int64(c.Number), 10)
		}
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellDate:
		if c.Time.Hour() == 0 && c.Time.Minute() == 0 && c.Time.Second() == 0 {
			return c.Time.Format("2006-01-02")
		}
		return c.Time.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}
