package schema

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"
)

// defaultSynonyms lists accepted header spellings per canonical field.
// Order matters: the first spelling present in an export wins.
var defaultSynonyms = map[Field][]string{
	Course:              {"Curso", "Curso Nome", "Nome do Curso", "Descrição do Curso", "Descricao do Curso"},
	CourseStatus:        {"Situação no Curso", "Situacao no Curso", "Status no Curso"},
	SystemStatus:        {"Situação no Sistema", "Situacao no Sistema"},
	EnrollmentDate:      {"Data de Matrícula", "Data da Matrícula", "Data Matricula", "Matricula Data"},
	CompletionDate:      {"Data de Conclusão de Curso", "Data de Conclusão", "Conclusão Data"},
	IntegralizationDate: {"Data de Integralização", "Data de Integralizacao"},
	Modality:            {"Modalidade"},
	Shift:               {"Turno", "Período", "Periodo"},
	AdmissionForm:       {"Forma de Ingresso", "Forma Ingresso"},
	Campus:              {"Campus"},
	QuotaMEC:            {"Cota MEC", "Cota_MEC"},
	QuotaSistec:         {"Cota Sistec", "Cota_Sistec"},
	Ethnicity:           {"Etnia/Raça", "Etnia - Raça", "Raca/Cor", "Raça/Cor"},
	SpecialNeeds:        {"Deficiências/Transtornos/Superdotação", "Necessidades Especiais"},
	Attendance:          {"Frequência no Período", "Frequencia no Periodo"},
	FinalGrade:          {"Média Final no Período", "Media Final no Periodo"},
	PendingRequirements: {"Pendências de Requisitos de Conclusão", "Pendencias Conclusao"},
	State:               {"Estado", "UF"},
	City:                {"Cidade", "Município", "Municipio"},
	Pole:                {"Polo", "Pólo"},
	TransportPublic:     {"Transporte Escolar: Poder Público", "Transporte Escolar - Poder Publico"},
	TransportVehicle:    {"Transporte Escolar: Tipo de Veículo", "Transporte Escolar - Tipo de Veiculo"},
	ProgressPercent:     {"Percentual de Progresso", "Progresso (%)", "% Progresso"},
	AdmissionYear:       {"Ano de Ingresso", "Ano_Ingresso"},
	PriorSchoolType:     {"Tipo de Escola de Origem"},
	ParticipationNature: {"Natureza de Participação", "Natureza de Participacao"},
}

// SynonymTable maps each canonical field to its accepted header spellings.
// It is immutable once built.
type SynonymTable struct {
	synonyms [fieldCount][]string
}

// DefaultSynonyms returns the built-in table
func DefaultSynonyms() *SynonymTable {
	t := &SynonymTable{}
	for f, names := range defaultSynonyms {
		t.synonyms[f] = append([]string(nil), names...)
	}
	return t
}

// WithExtra returns a copy of the table with extra spellings appended after
// the built-in ones. Unknown canonical names are rejected.
func (t *SynonymTable) WithExtra(extra map[string][]string) (*SynonymTable, error) {
	out := &SynonymTable{}
	for i := range t.synonyms {
		out.synonyms[i] = append([]string(nil), t.synonyms[i]...)
	}

	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f, ok := ParseField(name)
		if !ok {
			return nil, fmt.Errorf("unknown canonical field %q in synonym overlay", name)
		}
		out.synonyms[f] = append(out.synonyms[f], extra[name]...)
	}
	return out, nil
}

// Synonyms returns the declared spellings for f, without the canonical name
func (t *SynonymTable) Synonyms(f Field) []string {
	if !f.Valid() {
		return nil
	}
	return append([]string(nil), t.synonyms[f]...)
}

// Candidates returns the spellings tried for f, canonical name last
func (t *SynonymTable) Candidates(f Field) []string {
	if !f.Valid() {
		return nil
	}
	out := make([]string, 0, len(t.synonyms[f])+1)
	out = append(out, t.synonyms[f]...)
	return append(out, f.String())
}

// LoadSynonymOverlay reads a YAML document of the form
//
//	situacao_curso:
//	  - "Situação Acadêmica"
//
// and applies it on top of base.
func LoadSynonymOverlay(path string, base *SynonymTable) (*SynonymTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read synonym overlay: %w", err)
	}

	var extra map[string][]string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("failed to parse synonym overlay: %w", err)
	}
	return base.WithExtra(extra)
}
