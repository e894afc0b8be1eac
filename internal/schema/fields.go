// Package schema defines the canonical enrollment fields and resolves the
// headers of an export to them.
package schema

import "fmt"

// Field is a canonical column of the working record set
type Field int

// Canonical fields in declaration order. Resolution walks them in this order.
const (
	Course Field = iota
	CourseStatus
	SystemStatus
	EnrollmentDate
	CompletionDate
	IntegralizationDate
	Modality
	Shift
	AdmissionForm
	Campus
	QuotaMEC
	QuotaSistec
	Ethnicity
	SpecialNeeds
	Attendance
	FinalGrade
	PendingRequirements
	State
	City
	Pole
	TransportPublic
	TransportVehicle
	ProgressPercent
	AdmissionYear
	PriorSchoolType
	ParticipationNature

	fieldCount
)

var fieldNames = [fieldCount]string{
	Course:              "curso",
	CourseStatus:        "situacao_curso",
	SystemStatus:        "situacao_sistema",
	EnrollmentDate:      "data_matricula",
	CompletionDate:      "data_conclusao",
	IntegralizationDate: "data_integralizacao",
	Modality:            "modalidade",
	Shift:               "turno",
	AdmissionForm:       "forma_ingresso",
	Campus:              "campus",
	QuotaMEC:            "cota_mec",
	QuotaSistec:         "cota_sistec",
	Ethnicity:           "etnia_raca",
	SpecialNeeds:        "necessidades_especiais",
	Attendance:          "frequencia_periodo",
	FinalGrade:          "media_final_periodo",
	PendingRequirements: "pendencias_conclusao",
	State:               "estado",
	City:                "cidade",
	Pole:                "polo",
	TransportPublic:     "transporte_publico",
	TransportVehicle:    "transporte_tipo",
	ProgressPercent:     "percentual_progresso",
	AdmissionYear:       "ano_ingresso",
	PriorSchoolType:     "tipo_escola_origem",
	ParticipationNature: "natureza_participacao",
}

// FieldCount is the number of canonical fields
const FieldCount = int(fieldCount)

// DateFields are parsed into Date cells before derivation
var DateFields = []Field{EnrollmentDate, CompletionDate, IntegralizationDate}

// String returns the canonical column name
func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// Valid reports whether f is a declared canonical field
func (f Field) Valid() bool {
	return f >= 0 && f < fieldCount
}

// Fields returns all canonical fields in declaration order
func Fields() []Field {
	out := make([]Field, fieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// ParseField looks up a canonical field by its column name
func ParseField(name string) (Field, bool) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), true
		}
	}
	return 0, false
}

// FieldSet is a set of canonical fields
type FieldSet map[Field]struct{}

// Has reports whether f is in the set
func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

// Add inserts f into the set
func (s FieldSet) Add(f Field) {
	s[f] = struct{}{}
}

// HasAll reports whether every field is in the set
func (s FieldSet) HasAll(fields ...Field) bool {
	for _, f := range fields {
		if !s.Has(f) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one field is in the set
func (s FieldSet) HasAny(fields ...Field) bool {
	for _, f := range fields {
		if s.Has(f) {
			return true
		}
	}
	return false
}

// Sorted returns the members in declaration order
func (s FieldSet) Sorted() []Field {
	out := make([]Field, 0, len(s))
	for _, f := range Fields() {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}
