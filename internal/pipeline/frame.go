package pipeline

import (
	"time"

	"github.com/carlosrabelo/tabula/internal/schema"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

// Frame is the enriched record set handed to the dataset builders
type Frame struct {
	Students   []Student
	Resolution schema.Resolution
	// Available is the Available-Sources Set of the export
	Available schema.FieldSet
	// StatusColumn is the column reported by the status distribution:
	// situacao_curso, situacao_sistema or status_simplificado.
	StatusColumn string
	Reference    time.Time
}

func newFrame(students []Student, res schema.Resolution, reference time.Time) *Frame {
	f := &Frame{
		Students:   students,
		Resolution: res,
		Available:  res.Available,
		Reference:  reference,
	}
	f.StatusColumn = f.resolveStatusColumn()
	return f
}

func (f *Frame) resolveStatusColumn() string {
	for _, field := range []schema.Field{schema.CourseStatus, schema.SystemStatus} {
		if f.Available.Has(field) && f.HasValues(field.String()) {
			return field.String()
		}
	}
	return ColStatusSimplified
}

// Len returns the number of rows
func (f *Frame) Len() int {
	return len(f.Students)
}

// Column returns the cells of a canonical or derived column
func (f *Frame) Column(name string) ([]domain.Cell, bool) {
	if field, ok := schema.ParseField(name); ok {
		out := make([]domain.Cell, len(f.Students))
		for i := range f.Students {
			out[i] = f.Students[i].Canonical[field]
		}
		return out, true
	}

	get := derivedAccessor(name)
	if get == nil {
		return nil, false
	}
	out := make([]domain.Cell, len(f.Students))
	for i := range f.Students {
		out[i] = get(&f.Students[i])
	}
	return out, true
}

// HasValues reports whether the column exists and holds at least one
// non-missing value
func (f *Frame) HasValues(name string) bool {
	if field, ok := schema.ParseField(name); ok {
		for i := range f.Students {
			if !f.Students[i].Canonical[field].IsMissing() {
				return true
			}
		}
		return false
	}

	get := derivedAccessor(name)
	if get == nil {
		return false
	}
	for i := range f.Students {
		if !get(&f.Students[i]).IsMissing() {
			return true
		}
	}
	return false
}

// Columns returns every column name of the frame, canonical first
func (f *Frame) Columns() []string {
	out := make([]string, 0, schema.FieldCount+len(DerivedColumns))
	for _, field := range schema.Fields() {
		out = append(out, field.String())
	}
	return append(out, DerivedColumns...)
}

func derivedAccessor(name string) func(*Student) domain.Cell {
	switch name {
	case ColStatusSimplified:
		return func(s *Student) domain.Cell {
			return domain.TextCell(string(s.Status))
		}
	case ColProgressNumeric:
		return func(s *Student) domain.Cell {
			if s.Progress == nil {
				return domain.MissingCell()
			}
			return domain.NumberCell(*s.Progress)
		}
	case ColProgressBucket:
		return func(s *Student) domain.Cell {
			return optionalText(s.ProgressBucket)
		}
	case ColSpecialNeed:
		return func(s *Student) domain.Cell {
			return optionalText(s.SpecialNeed)
		}
	case ColCourseMonths:
		return func(s *Student) domain.Cell {
			if s.CourseMonths == nil {
				return domain.MissingCell()
			}
			return domain.NumberCell(*s.CourseMonths)
		}
	case ColCohortYear:
		return func(s *Student) domain.Cell {
			if s.CohortYear == nil {
				return domain.MissingCell()
			}
			return domain.NumberCell(float64(*s.CohortYear))
		}
	default:
		return nil
	}
}

func optionalText(s string) domain.Cell {
	if s == "" {
		return domain.MissingCell()
	}
	return domain.TextCell(s)
}
