package parsers

import (
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

// daysPerMonth is the mean Gregorian month length
const daysPerMonth = 30.4375

// maxYear bounds numeric years; larger magnitudes are not years
const maxYear = 10000

// ExtractYear prefers a numeric year, then a 19xx/20xx token in text,
// then the year of fallback.
func ExtractYear(c domain.Cell, fallback *time.Time) (int, bool) {
	switch c.Kind {
	case domain.CellNumber:
		if !math.IsNaN(c.Number) && math.Abs(c.Number) <= maxYear {
			return int(c.Number), true
		}
	case domain.CellDate:
		if !c.Time.IsZero() {
			return c.Time.Year(), true
		}
	case domain.CellText:
		if m := yearPattern.FindString(c.Text); m != "" {
			if y, err := strconv.Atoi(m); err == nil {
				return y, true
			}
		}
	}
	if fallback != nil && !fallback.IsZero() {
		return fallback.Year(), true
	}
	return 0, false
}

// MonthsBetween returns the span in months between two dates, using whole
// elapsed days over the mean month length, rounded to two decimals.
func MonthsBetween(start, end *time.Time) (float64, bool) {
	if start == nil || end == nil || start.IsZero() || end.IsZero() {
		return 0, false
	}
	// Unix seconds, not time.Duration: durations saturate after ~292 years
	days := math.Floor(float64(end.Unix()-start.Unix()) / 86400)
	return RoundTo(days/daysPerMonth, 2), true
}

// RoundTo rounds v to the given number of decimals
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
