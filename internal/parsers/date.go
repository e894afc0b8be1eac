// Package parsers holds the stateless value conversions applied to canonical
// cells. Every parser is total: malformed input yields ok == false, never an
// error or panic.
package parsers

import (
	"math"
	"strings"
	"time"

	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

// spreadsheetEpoch is day zero of spreadsheet serial dates
var spreadsheetEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// dayFirstLayouts are tried before any other layout
var dayFirstLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"02-01-2006",
	"2-1-2006",
	"02-01-2006 15:04:05",
	"02.01.2006",
	"2.1.2006",
	"02/01/06",
	"2/1/06",
}

// genericLayouts are the fallback when no day-first layout matches
var genericLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05.000000",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"20060102",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
}

// FromSerial converts a spreadsheet serial day number to a date.
// Fractional days are discarded.
func FromSerial(serial float64) (time.Time, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, false
	}
	days := math.Floor(serial)
	// keep within a range time.Time arithmetic handles sanely
	if days < -700000 || days > 3000000 {
		return time.Time{}, false
	}
	return spreadsheetEpoch.AddDate(0, 0, int(days)), true
}

// ParseDate converts a cell into a date. Text is parsed day-first first,
// then with generic layouts.
func ParseDate(c domain.Cell) (time.Time, bool) {
	switch c.Kind {
	case domain.CellDate:
		if c.Time.IsZero() {
			return time.Time{}, false
		}
		return c.Time, true
	case domain.CellNumber:
		return FromSerial(c.Number)
	case domain.CellText:
		return parseDateText(c.Text)
	default:
		return time.Time{}, false
	}
}

func parseDateText(s string) (time.Time, bool) {
	text := strings.TrimSpace(s)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
