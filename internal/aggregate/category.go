// Package aggregate counts categorical columns of the enriched frame.
package aggregate

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

// Default labels
const (
	DefaultMissingLabel = "Não informado"
	DefaultPercentLabel = "pct_total"
	CountColumn         = "qtd"
)

// SortKey selects the ordering of a category count
type SortKey int

const (
	// SortNatural orders by category label ascending
	SortNatural SortKey = iota
	// SortCount orders by count; ties are broken by label ascending
	SortCount
	// SortLabel orders by label honoring Descending
	SortLabel
)

// CategoryOptions configures CountCategory
type CategoryOptions struct {
	Label          string
	KeepMissing    bool
	MissingLabel   string
	IncludePercent bool
	PercentLabel   string
	Precision      int
	SortBy         SortKey
	Descending     bool
	Limit          int
}

func (o CategoryOptions) columns() []string {
	cols := []string{o.Label, CountColumn}
	if o.IncludePercent {
		cols = append(cols, o.PercentLabel)
	}
	return cols
}

func (o CategoryOptions) withDefaults() CategoryOptions {
	if o.MissingLabel == "" {
		o.MissingLabel = DefaultMissingLabel
	}
	if o.PercentLabel == "" {
		o.PercentLabel = DefaultPercentLabel
	}
	if o.Precision < 0 {
		o.Precision = 0
	}
	return o
}

// Group is one counted category
type Group struct {
	Label   string
	Count   int
	Percent float64
}

// CategoryValue returns the trimmed display form of c; blank is missing
func CategoryValue(c domain.Cell) (string, bool) {
	if c.IsMissing() {
		return "", false
	}
	v := strings.TrimSpace(c.Display())
	return v, v != ""
}

// Count groups the column by category. A nil column or one with no
// retained values yields no groups.
func Count(column []domain.Cell, opts CategoryOptions) []Group {
	opts = opts.withDefaults()

	counts := make(map[string]int)
	for _, c := range column {
		v, ok := CategoryValue(c)
		if !ok {
			if !opts.KeepMissing {
				continue
			}
			v = opts.MissingLabel
		}
		counts[v]++
	}
	if len(counts) == 0 {
		return nil
	}

	groups := make([]Group, 0, len(counts))
	total := 0
	for label, n := range counts {
		groups = append(groups, Group{Label: label, Count: n})
		total += n
	}

	if opts.IncludePercent {
		for i := range groups {
			groups[i].Percent = Percent(groups[i].Count, total, opts.Precision)
		}
	}

	sortGroups(groups, opts.SortBy, opts.Descending)

	if opts.Limit > 0 && len(groups) > opts.Limit {
		groups = groups[:opts.Limit]
	}
	return groups
}

// CountCategory counts a column into a table of label;qtd[;pct]. The
// header is always present, even when no rows are produced.
func CountCategory(column []domain.Cell, opts CategoryOptions) domain.Table {
	opts = opts.withDefaults()
	table := domain.NewTable(opts.columns()...)

	for _, g := range Count(column, opts) {
		row := []string{g.Label, strconv.Itoa(g.Count)}
		if opts.IncludePercent {
			row = append(row, FormatPercent(g.Percent, opts.Precision))
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// Percent returns round(count/total*100, precision), or 0 for an empty total
func Percent(count, total, precision int) float64 {
	if total == 0 {
		return 0
	}
	p := math.Pow(10, float64(precision))
	return math.Round(float64(count)/float64(total)*100*p) / p
}

// FormatPercent renders a percentage with exactly precision decimals
func FormatPercent(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

func sortGroups(groups []Group, key SortKey, descending bool) {
	switch key {
	case SortCount:
		sort.Slice(groups, func(i, j int) bool {
			if groups[i].Count != groups[j].Count {
				if descending {
					return groups[i].Count > groups[j].Count
				}
				return groups[i].Count < groups[j].Count
			}
			return groups[i].Label < groups[j].Label
		})
	case SortLabel:
		sort.Slice(groups, func(i, j int) bool {
			if descending {
				return groups[i].Label > groups[j].Label
			}
			return groups[i].Label < groups[j].Label
		})
	default:
		sort.Slice(groups, func(i, j int) bool {
			return groups[i].Label < groups[j].Label
		})
	}
}
