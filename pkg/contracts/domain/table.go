package domain

// Table is an aggregated output table. Rows are already formatted for
// serialization and every row has len(Columns) values.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewTable creates an empty table with the given header
func NewTable(columns ...string) Table {
	return Table{Columns: columns, Rows: [][]string{}}
}

// Len returns the number of data rows
func (t Table) Len() int {
	return len(t.Rows)
}

// Empty reports whether the table has no data rows
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// Records returns the rows keyed by column name, in row order
func (t Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}
