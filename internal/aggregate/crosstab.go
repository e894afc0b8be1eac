package aggregate

import (
	"sort"
	"strconv"

	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

// CrossTab counts pairs of values from two aligned columns. Rows where
// either value is missing are dropped; output is ordered by (a, b).
func CrossTab(a, b []domain.Cell, labelA, labelB string) domain.Table {
	table := domain.NewTable(labelA, labelB, CountColumn)

	type pair struct{ a, b string }
	counts := make(map[pair]int)
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		va, ok := CategoryValue(a[i])
		if !ok {
			continue
		}
		vb, ok := CategoryValue(b[i])
		if !ok {
			continue
		}
		counts[pair{va, vb}]++
	}

	keys := make([]pair, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})

	for _, k := range keys {
		table.Rows = append(table.Rows, []string{k.a, k.b, strconv.Itoa(counts[k])})
	}
	return table
}

// Tagged is a table contributed to a stack under a dimension value
type Tagged struct {
	Tag   string
	Table domain.Table
}

// Stack concatenates tables that share a column layout, prefixing each row
// with its tag under tagColumn. Columns are taken from the first table
// unless columns is given.
func Stack(tagColumn string, columns []string, parts ...Tagged) domain.Table {
	if len(columns) == 0 && len(parts) > 0 {
		columns = parts[0].Table.Columns
	}
	table := domain.NewTable(append([]string{tagColumn}, columns...)...)
	for _, part := range parts {
		for _, row := range part.Table.Rows {
			table.Rows = append(table.Rows, append([]string{part.Tag}, row...))
		}
	}
	return table
}

// Summary is a category table with its grand total
type Summary struct {
	Column  string              `json:"coluna"`
	Total   int                 `json:"total"`
	Records []map[string]string `json:"registros"`
}

// Summarize totals the count column of a table built by CountCategory
func Summarize(table domain.Table) Summary {
	s := Summary{Records: table.Records()}
	if len(table.Columns) > 0 {
		s.Column = table.Columns[0]
	}
	idx := -1
	for i, c := range table.Columns {
		if c == CountColumn {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	for _, row := range table.Rows {
		if idx < len(row) {
			if n, err := strconv.Atoi(row[idx]); err == nil {
				s.Total += n
			}
		}
	}
	return s
}
