// Package pipeline materializes the derived fields of an enrollment export.
// Each row is threaded through an ordered sequence of derivation steps; a
// step reads only fields populated by the steps before it.
package pipeline

import (
	"time"

	"github.com/carlosrabelo/tabula/internal/parsers"
	"github.com/carlosrabelo/tabula/internal/schema"
)

// Derived column names
const (
	ColStatusSimplified = "status_simplificado"
	ColProgressNumeric  = "percentual_progresso_num"
	ColProgressBucket   = "bucket_progresso"
	ColSpecialNeed      = "tem_ne"
	ColCourseMonths     = "tempo_curso_meses"
	ColCohortYear       = "coorte_ano"
)

// DerivedColumns lists the derived column names in derivation order
var DerivedColumns = []string{
	ColStatusSimplified,
	ColProgressNumeric,
	ColProgressBucket,
	ColSpecialNeed,
	ColCourseMonths,
	ColCohortYear,
}

// Student is one enriched enrollment record
type Student struct {
	// Canonical holds the resolved source cells; date fields are replaced by
	// Date cells (or Missing) during the dates step.
	Canonical schema.Row

	EnrollmentDate      *time.Time
	CompletionDate      *time.Time
	IntegralizationDate *time.Time

	Status         parsers.SimpleStatus
	Progress       *float64
	ProgressBucket string // empty when progress is unknown
	SpecialNeed    string // empty when the source column is unavailable
	CourseMonths   *float64
	CohortYear     *int
}

func (s *Student) setDate(f schema.Field, t *time.Time) {
	switch f {
	case schema.EnrollmentDate:
		s.EnrollmentDate = t
	case schema.CompletionDate:
		s.CompletionDate = t
	case schema.IntegralizationDate:
		s.IntegralizationDate = t
	}
}
