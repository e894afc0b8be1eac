package pipeline

import (
	"time"

	"github.com/carlosrabelo/tabula/internal/parsers"
	"github.com/carlosrabelo/tabula/internal/schema"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

// env is the per-run input shared read-only by every step
type env struct {
	statusSource   schema.Field
	hasSpecialNeed bool
	reference      time.Time
}

type step struct {
	name  string
	apply func(s *Student, e *env)
}

// steps run in this order for every row
var steps = []step{
	{name: "dates", apply: deriveDates},
	{name: "status", apply: deriveStatus},
	{name: "progress", apply: deriveProgress},
	{name: "special_need", apply: deriveSpecialNeed},
	{name: "course_months", apply: deriveCourseMonths},
	{name: "cohort_year", apply: deriveCohortYear},
}

// StepNames returns the derivation step names in execution order
func StepNames() []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.name
	}
	return names
}

func deriveDates(s *Student, _ *env) {
	for _, f := range schema.DateFields {
		t, ok := parsers.ParseDate(s.Canonical[f])
		if !ok {
			s.Canonical[f] = domain.MissingCell()
			s.setDate(f, nil)
			continue
		}
		s.Canonical[f] = domain.DateCell(t)
		s.setDate(f, &t)
	}
}

func deriveStatus(s *Student, e *env) {
	s.Status = parsers.SimplifyStatus(s.Canonical[e.statusSource])
}

func deriveProgress(s *Student, _ *env) {
	v, ok := parsers.ParsePercent(s.Canonical[schema.ProgressPercent])
	if !ok {
		return
	}
	s.Progress = &v
	s.ProgressBucket, _ = parsers.BucketProgress(v, true)
}

func deriveSpecialNeed(s *Student, e *env) {
	if !e.hasSpecialNeed {
		return
	}
	s.SpecialNeed = parsers.ClassifySpecialNeed(s.Canonical[schema.SpecialNeeds])
}

// deriveCourseMonths measures enrollment to completion for completed
// students and enrollment to the reference date otherwise.
func deriveCourseMonths(s *Student, e *env) {
	if s.EnrollmentDate == nil {
		return
	}
	end := &e.reference
	if s.Status == parsers.StatusCompleted {
		end = s.CompletionDate
	}
	if months, ok := parsers.MonthsBetween(s.EnrollmentDate, end); ok {
		s.CourseMonths = &months
	}
}

func deriveCohortYear(s *Student, _ *env) {
	if year, ok := parsers.ExtractYear(s.Canonical[schema.AdmissionYear], s.EnrollmentDate); ok {
		s.CohortYear = &year
	}
}
