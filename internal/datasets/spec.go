// Package datasets holds the catalogue of aggregated reports, the builders
// that produce them and the orchestrator that gates, builds and writes each
// one for an enriched frame.
package datasets

import (
	"github.com/carlosrabelo/tabula/internal/pipeline"
	"github.com/carlosrabelo/tabula/internal/schema"
)

// Spec declares one output report and what must be present before it is
// generated
type Spec struct {
	// ID is the output file name
	ID string
	// Requires lists enriched columns that must hold at least one value
	Requires []string
	// SourcesAll lists raw fields that must all have matched a header
	SourcesAll []schema.Field
	// SourcesAny lists groups of raw fields; each group needs one match
	SourcesAny [][]schema.Field
	Builder    Builder
}

// HasSources reports whether the raw-source requirements hold
func (s Spec) HasSources(available schema.FieldSet) bool {
	if !available.HasAll(s.SourcesAll...) {
		return false
	}
	for _, group := range s.SourcesAny {
		if !available.HasAny(group...) {
			return false
		}
	}
	return true
}

// MissingRequirements returns the required columns that are absent from the
// frame or hold no value, in declaration order
func (s Spec) MissingRequirements(f *pipeline.Frame) []string {
	var missing []string
	for _, col := range s.Requires {
		if !f.HasValues(col) {
			missing = append(missing, col)
		}
	}
	return missing
}
