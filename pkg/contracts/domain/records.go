package domain

// RecordSet is a raw spreadsheet export: a header row plus data rows of
// heterogeneous cells. Every row holds exactly len(Headers) cells.
type RecordSet struct {
	Source  string   `json:"source"`
	Headers []string `json:"headers"`
	Rows    [][]Cell `json:"-"`
}

// NewRecordSet builds a record set, padding or truncating rows to the header width
func NewRecordSet(source string, headers []string, rows [][]Cell) *RecordSet {
	width := len(headers)
	fixed := make([][]Cell, 0, len(rows))
	for _, row := range rows {
		if len(row) == width {
			fixed = append(fixed, row)
			continue
		}
		r := make([]Cell, width)
		copy(r, row)
		fixed = append(fixed, r)
	}
	return &RecordSet{Source: source, Headers: headers, Rows: fixed}
}

// Len returns the number of data rows
func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// ColumnIndex returns the position of a header, or -1
func (rs *RecordSet) ColumnIndex(header string) int {
	for i, h := range rs.Headers {
		if h == header {
			return i
		}
	}
	return -1
}
