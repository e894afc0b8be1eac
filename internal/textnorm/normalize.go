// Package textnorm folds free text for case- and accent-insensitive comparison.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

// Normalize trims, strips combining marks and lower-cases s.
// Blank input yields "".
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// transform.Chain is stateful, so each call builds its own chain
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// NormalizeCell normalizes the display form of a cell; missing cells yield "".
func NormalizeCell(c domain.Cell) string {
	if c.IsMissing() {
		return ""
	}
	return Normalize(c.Display())
}
