package schema

import (
	"github.com/carlosrabelo/tabula/internal/textnorm"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

// Resolution is the outcome of matching an export's headers to canonical fields
type Resolution struct {
	// Mapping holds canonical field -> raw header for every resolved field
	Mapping map[Field]string
	// Available is the set of fields with a matching raw header, regardless
	// of whether any value in that column is filled
	Available FieldSet
	// Collisions lists raw headers dropped because an earlier header
	// normalized to the same key
	Collisions []domain.HeaderCollision

	index map[Field]int
}

// Resolve matches headers against the synonym table. For each canonical
// field the candidates are tried in declared order, canonical name last;
// the first candidate equal to a normalized header wins.
func Resolve(headers []string, table *SynonymTable) Resolution {
	if table == nil {
		table = DefaultSynonyms()
	}

	res := Resolution{
		Mapping:   make(map[Field]string),
		Available: make(FieldSet),
		index:     make(map[Field]int),
	}

	normalized := make(map[string]int, len(headers))
	for i, h := range headers {
		key := textnorm.Normalize(h)
		if key == "" {
			continue
		}
		if first, exists := normalized[key]; exists {
			res.Collisions = append(res.Collisions, domain.HeaderCollision{
				Normalized: key,
				Kept:       headers[first],
				Ignored:    h,
			})
			continue
		}
		normalized[key] = i
	}

	for _, f := range Fields() {
		for _, candidate := range table.Candidates(f) {
			if idx, ok := normalized[textnorm.Normalize(candidate)]; ok {
				res.Mapping[f] = headers[idx]
				res.Available.Add(f)
				res.index[f] = idx
				break
			}
		}
	}

	return res
}

// Header returns the raw header resolved for f
func (r Resolution) Header(f Field) (string, bool) {
	h, ok := r.Mapping[f]
	return h, ok
}

// MappingByName returns the mapping keyed by canonical column name
func (r Resolution) MappingByName() map[string]string {
	out := make(map[string]string, len(r.Mapping))
	for f, h := range r.Mapping {
		out[f.String()] = h
	}
	return out
}

// Row holds one record projected onto the canonical schema
type Row [fieldCount]domain.Cell

// Get returns the cell for f
func (r *Row) Get(f Field) domain.Cell {
	if !f.Valid() {
		return domain.MissingCell()
	}
	return r[f]
}

// Canonicalize projects every row of rs onto the canonical schema. Every
// canonical field is present in each Row; unresolved fields are Missing.
func (r Resolution) Canonicalize(rs *domain.RecordSet) []Row {
	rows := make([]Row, rs.Len())
	if rs == nil {
		return rows
	}

	index := r.index
	if len(index) != len(r.Mapping) {
		// Resolution built by hand; fall back to header lookup
		index = make(map[Field]int, len(r.Mapping))
		for f, h := range r.Mapping {
			if i := rs.ColumnIndex(h); i >= 0 {
				index[f] = i
			}
		}
	}

	for i, raw := range rs.Rows {
		for f, col := range index {
			if col < len(raw) {
				rows[i][f] = raw[col]
			}
		}
	}
	return rows
}
