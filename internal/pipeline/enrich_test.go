package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosrabelo/tabula/internal/parsers"
	"github.com/carlosrabelo/tabula/internal/schema"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

var reference = time.Date(2024, 7, 1, 15, 45, 0, 0, time.UTC)

func enrich(t *testing.T, headers []string, rows [][]domain.Cell) *Frame {
	t.Helper()
	rs := domain.NewRecordSet("test", headers, rows)
	frame, err := Enrich(context.Background(), rs, schema.Resolve(headers, nil), Options{Reference: reference})
	require.NoError(t, err)
	return frame
}

func texts(t *testing.T, f *Frame, column string) []string {
	t.Helper()
	cells, ok := f.Column(column)
	require.True(t, ok, "column %s", column)
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Display()
	}
	return out
}

func TestEnrichStatusFromCourseColumn(t *testing.T) {
	frame := enrich(t, []string{"Situação no Curso"}, [][]domain.Cell{
		{domain.TextCell("Concluído")},
		{domain.TextCell("Concluído")},
		{domain.TextCell("Cursando")},
	})

	assert.Equal(t, []string{"Concluído", "Concluído", "Ativo"}, texts(t, frame, ColStatusSimplified))
	assert.Equal(t, "situacao_curso", frame.StatusColumn)
	assert.Equal(t, parsers.StatusCompleted, frame.Students[0].Status)
	assert.Equal(t, parsers.StatusActive, frame.Students[2].Status)
}

func TestEnrichStatusFallsBackToSystemColumn(t *testing.T) {
	frame := enrich(t, []string{"Situação no Curso", "Situação no Sistema"}, [][]domain.Cell{
		{domain.MissingCell(), domain.TextCell("Trancado")},
		{domain.MissingCell(), domain.TextCell("Evadido")},
	})

	assert.Equal(t, []string{"Trancado", "Evasão/Cancelado"}, texts(t, frame, ColStatusSimplified))
	assert.Equal(t, "situacao_sistema", frame.StatusColumn)
}

func TestEnrichStatusWithoutSources(t *testing.T) {
	frame := enrich(t, []string{"Modalidade"}, [][]domain.Cell{
		{domain.TextCell("EAD")},
	})

	assert.Equal(t, []string{"Outros"}, texts(t, frame, ColStatusSimplified))
	assert.Equal(t, ColStatusSimplified, frame.StatusColumn)
}

func TestEnrichDerivedFields(t *testing.T) {
	headers := []string{
		"Situação no Curso", "Data de Matrícula", "Data de Conclusão",
		"Percentual de Progresso", "Necessidades Especiais", "Ano de Ingresso",
	}
	frame := enrich(t, headers, [][]domain.Cell{
		{
			domain.TextCell("Concluído"), domain.TextCell("01/02/2020"), domain.TextCell("01/02/2022"),
			domain.TextCell("100%"), domain.TextCell("Não possui"), domain.NumberCell(2020),
		},
		{
			domain.TextCell("Cursando"), domain.NumberCell(44197), domain.MissingCell(),
			domain.TextCell("37,5"), domain.TextCell("Baixa visão"), domain.MissingCell(),
		},
		{
			domain.TextCell("Cancelado"), domain.MissingCell(), domain.MissingCell(),
			domain.TextCell("n/d"), domain.MissingCell(), domain.TextCell("sem registro"),
		},
	})

	first := frame.Students[0]
	require.NotNil(t, first.CourseMonths)
	assert.Equal(t, 24.02, *first.CourseMonths) // 731 days
	require.NotNil(t, first.CohortYear)
	assert.Equal(t, 2020, *first.CohortYear)
	assert.Equal(t, "Não", first.SpecialNeed)
	assert.Equal(t, parsers.BucketQ4, first.ProgressBucket)

	second := frame.Students[1]
	require.NotNil(t, second.EnrollmentDate)
	assert.Equal(t, "2021-01-01", second.EnrollmentDate.Format("2006-01-02"))
	require.NotNil(t, second.CourseMonths)
	assert.Equal(t, 41.95, *second.CourseMonths) // 1277 days to the reference date
	require.NotNil(t, second.CohortYear)
	assert.Equal(t, 2021, *second.CohortYear) // falls back to the enrollment year
	assert.Equal(t, "Sim", second.SpecialNeed)
	assert.Equal(t, parsers.BucketQ2, second.ProgressBucket)

	third := frame.Students[2]
	assert.Nil(t, third.CourseMonths)
	assert.Nil(t, third.CohortYear)
	assert.Nil(t, third.Progress)
	assert.Equal(t, "Não", third.SpecialNeed)

	assert.Equal(t, []string{"2020-02-01", "2021-01-01", ""}, texts(t, frame, "data_matricula"))
	assert.Equal(t, []string{"75-100%", "25-50%", ""}, texts(t, frame, ColProgressBucket))
	assert.Equal(t, []string{"2020", "2021", ""}, texts(t, frame, ColCohortYear))
}

func TestEnrichCompletedWithoutCompletionDate(t *testing.T) {
	frame := enrich(t, []string{"Situação no Curso", "Data de Matrícula"}, [][]domain.Cell{
		{domain.TextCell("Formado"), domain.TextCell("2020-01-01")},
	})
	assert.Nil(t, frame.Students[0].CourseMonths)
}

func TestEnrichSpecialNeedUnavailable(t *testing.T) {
	frame := enrich(t, []string{"Curso"}, [][]domain.Cell{
		{domain.TextCell("Informática")},
	})

	assert.Empty(t, frame.Students[0].SpecialNeed)
	assert.False(t, frame.HasValues(ColSpecialNeed))
	assert.True(t, frame.HasValues("curso"))
	assert.False(t, frame.HasValues("cota_mec"))
	assert.False(t, frame.HasValues("unknown"))
}

func TestEnrichWorkerCountDoesNotChangeResult(t *testing.T) {
	headers := []string{"Situação no Curso", "Data de Matrícula", "Percentual de Progresso"}
	statuses := []string{"Concluído", "Cursando", "Trancado", "Evadido", "Outro"}

	rows := make([][]domain.Cell, 5000)
	for i := range rows {
		rows[i] = []domain.Cell{
			domain.TextCell(statuses[i%len(statuses)]),
			domain.NumberCell(float64(43000 + i%900)),
			domain.TextCell(fmt.Sprintf("%d,%d%%", i%101, i%10)),
		}
	}
	rs := domain.NewRecordSet("big", headers, rows)
	res := schema.Resolve(headers, nil)

	serial, err := Enrich(context.Background(), rs, res, Options{Reference: reference, Workers: 1})
	require.NoError(t, err)
	parallel, err := Enrich(context.Background(), rs, res, Options{Reference: reference, Workers: 8})
	require.NoError(t, err)

	for _, col := range serial.Columns() {
		assert.Equal(t, texts(t, serial, col), texts(t, parallel, col), "column %s", col)
	}
}

func TestEnrichRequiresReference(t *testing.T) {
	rs := domain.NewRecordSet("test", []string{"Curso"}, nil)
	_, err := Enrich(context.Background(), rs, schema.Resolve(rs.Headers, nil), Options{})
	assert.Error(t, err)
}

func TestEnrichCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rs := domain.NewRecordSet("test", []string{"Curso"}, [][]domain.Cell{{domain.TextCell("x")}})
	_, err := Enrich(ctx, rs, schema.Resolve(rs.Headers, nil), Options{Reference: reference})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStepNames(t *testing.T) {
	assert.Equal(t, []string{"dates", "status", "progress", "special_need", "course_months", "cohort_year"}, StepNames())
}
