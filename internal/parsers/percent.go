package parsers

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// Progress bucket labels in report order
const (
	BucketQ1 = "0-25%"
	BucketQ2 = "25-50%"
	BucketQ3 = "50-75%"
	BucketQ4 = "75-100%"
)

// BucketOrder is the fixed ordering of the progress distribution report
var BucketOrder = []string{BucketQ1, BucketQ2, BucketQ3, BucketQ4}

// ParsePercent reads a percentage. Numbers pass through; text like "85%",
// "85,5" or "1.234,5" is cleaned to a decimal-point number first.
func ParsePercent(c domain.Cell) (float64, bool) {
	switch c.Kind {
	case domain.CellNumber:
		if math.IsNaN(c.Number) {
			return 0, false
		}
		return c.Number, true
	case domain.CellText:
		return parsePercentText(c.Text)
	default:
		return 0, false
	}
}

func parsePercentText(s string) (float64, bool) {
	text := strings.TrimSpace(s)
	if text == "" {
		return 0, false
	}
	text = strings.ReplaceAll(text, "%", "")
	text = strings.ReplaceAll(text, " ", "")

	// with a decimal comma every dot is a thousands separator
	if strings.Contains(text, ",") {
		text = strings.ReplaceAll(text, ".", "")
		text = strings.ReplaceAll(text, ",", ".")
	}
	// only the last dot is the decimal point
	if n := strings.Count(text, "."); n > 1 {
		text = strings.Replace(text, ".", "", n-1)
	}

	match := numberPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// BucketProgress places a percentage in one of four half-open quartile bins
// after clamping it to [0, 100]. ok == false input yields no bucket.
func BucketProgress(value float64, ok bool) (string, bool) {
	if !ok || math.IsNaN(value) {
		return "", false
	}
	v := math.Max(0, math.Min(100, value))
	switch {
	case v < 25:
		return BucketQ1, true
	case v < 50:
		return BucketQ2, true
	case v < 75:
		return BucketQ3, true
	default:
		return BucketQ4, true
	}
}
