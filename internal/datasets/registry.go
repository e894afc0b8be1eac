package datasets

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/carlosrabelo/tabula/internal/errors"
	"github.com/carlosrabelo/tabula/internal/pipeline"
	"github.com/carlosrabelo/tabula/internal/schema"
)

// Registry holds dataset specs in registration order
type Registry struct {
	mu    sync.RWMutex
	specs map[string]Spec
	order []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		specs: make(map[string]Spec),
		order: make([]string, 0),
	}
}

// Register adds a spec; IDs must be unique and every spec needs a builder
func (r *Registry) Register(spec Spec) error {
	if spec.ID == "" {
		return fmt.Errorf("dataset ID cannot be empty")
	}
	if spec.Builder == nil {
		return fmt.Errorf("dataset %s has no builder", spec.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.specs[spec.ID]; exists {
		return fmt.Errorf("dataset %s already registered", spec.ID)
	}
	r.specs[spec.ID] = spec
	r.order = append(r.order, spec.ID)
	return nil
}

// Get retrieves a spec by ID
func (r *Registry) Get(id string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[id]
	return spec, ok
}

// List returns all specs in registration order
func (r *Registry) List() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Spec, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.specs[id])
	}
	return out
}

// IDs returns all dataset IDs in registration order
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Count returns the number of registered specs
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.specs)
}

// Select returns the specs named in only, kept in registration order. An
// empty selection returns every spec; unknown IDs are a validation error.
func (r *Registry) Select(only []string) ([]Spec, error) {
	if len(only) == 0 {
		return r.List(), nil
	}

	wanted := make(map[string]struct{}, len(only))
	var unknown []string
	for _, id := range only {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := r.Get(id); !ok {
			unknown = append(unknown, id)
			continue
		}
		wanted[id] = struct{}{}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("unknown dataset(s): %s", strings.Join(unknown, ", "))).
			WithContext("known", r.IDs())
	}

	out := make([]Spec, 0, len(wanted))
	for _, spec := range r.List() {
		if _, ok := wanted[spec.ID]; ok {
			out = append(out, spec)
		}
	}
	return out, nil
}

var statusSources = []schema.Field{schema.CourseStatus, schema.SystemStatus}

// catalogue is the fixed list of generated reports
func catalogue() []Spec {
	category := func(id string, field schema.Field, label string) Spec {
		return Spec{
			ID:         id,
			Requires:   []string{field.String()},
			SourcesAll: []schema.Field{field},
			Builder:    categoryBuilder{column: field.String(), label: label},
		}
	}

	return []Spec{
		{
			ID:         "alunos_por_situacao.csv",
			Requires:   []string{pipeline.ColStatusSimplified},
			SourcesAny: [][]schema.Field{statusSources},
			Builder:    statusBuilder{},
		},
		category("modalidade.csv", schema.Modality, "Modalidade"),
		{
			ID:         "dist_percentual_progresso.csv",
			Requires:   []string{pipeline.ColProgressBucket},
			SourcesAll: []schema.Field{schema.ProgressPercent},
			Builder:    progressBuilder{},
		},
		category("turno.csv", schema.Shift, "Turno"),
		category("forma_ingresso.csv", schema.AdmissionForm, "Forma_Ingresso"),
		category("cota_mec.csv", schema.QuotaMEC, "Cota_MEC"),
		category("cota_sistec.csv", schema.QuotaSistec, "Cota_Sistec"),
		{
			ID:         "cotas.csv",
			Requires:   []string{schema.QuotaMEC.String(), schema.QuotaSistec.String()},
			SourcesAll: []schema.Field{schema.QuotaMEC, schema.QuotaSistec},
			Builder:    quotaBuilder{},
		},
		category("etnia_raca.csv", schema.Ethnicity, "Etnia_Raca"),
		{
			ID:         "necessidades_especiais.csv",
			Requires:   []string{pipeline.ColSpecialNeed},
			SourcesAll: []schema.Field{schema.SpecialNeeds},
			Builder:    categoryBuilder{column: pipeline.ColSpecialNeed, label: "Tem_NE"},
		},
		category("tipo_escola_origem.csv", schema.PriorSchoolType, "Tipo_Escola_Origem"),
		category("natureza_participacao.csv", schema.ParticipationNature, "Natureza_Participacao"),
		{
			ID:         "transporte_tipo.csv",
			Requires:   []string{schema.TransportPublic.String(), schema.TransportVehicle.String()},
			SourcesAll: []schema.Field{schema.TransportPublic, schema.TransportVehicle},
			Builder:    transportBuilder{},
		},
		{
			ID:         "natureza_escola.csv",
			Requires:   []string{schema.ParticipationNature.String(), schema.PriorSchoolType.String()},
			SourcesAll: []schema.Field{schema.ParticipationNature, schema.PriorSchoolType},
			Builder:    crossTabBuilder{a: schema.ParticipationNature.String(), b: schema.PriorSchoolType.String()},
		},
		{
			ID:         "situacao_escola.csv",
			Requires:   []string{pipeline.ColStatusSimplified, schema.PriorSchoolType.String()},
			SourcesAll: []schema.Field{schema.PriorSchoolType},
			SourcesAny: [][]schema.Field{statusSources},
			Builder:    crossTabBuilder{a: pipeline.ColStatusSimplified, b: schema.PriorSchoolType.String()},
		},
	}
}

// DefaultRegistry returns a registry filled with the report catalogue
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, spec := range catalogue() {
		if err := r.Register(spec); err != nil {
			panic(fmt.Sprintf("invalid dataset catalogue: %v", err))
		}
	}
	return r
}
