package datasets

import (
	"strconv"

	"github.com/carlosrabelo/tabula/internal/aggregate"
	"github.com/carlosrabelo/tabula/internal/parsers"
	"github.com/carlosrabelo/tabula/internal/pipeline"
	"github.com/carlosrabelo/tabula/internal/schema"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

const (
	percentPrecision = 2
	transportSep     = " - "
	quotaTypeColumn  = "Tipo_Cota"
	quotaValueColumn = "Categoria"
	quotaTypeMEC     = "MEC"
	quotaTypeSistec  = "Sistec"
	statusLabel      = "Situacao"
	bucketLabel      = "Bucket_Progresso"
	transportLabel   = "Transporte_Tipo"
)

// Builder turns an enriched frame into one aggregated table. The set of
// implementations is closed to this package.
type Builder interface {
	Build(f *pipeline.Frame) domain.Table
	builder()
}

func column(f *pipeline.Frame, name string) []domain.Cell {
	cells, _ := f.Column(name)
	return cells
}

// categoryBuilder is the generic label;qtd;pct_total count
type categoryBuilder struct {
	column string
	label  string
}

func (categoryBuilder) builder() {}

func (b categoryBuilder) Build(f *pipeline.Frame) domain.Table {
	return countWithPercent(column(f, b.column), b.label)
}

func countWithPercent(cells []domain.Cell, label string) domain.Table {
	return aggregate.CountCategory(cells, aggregate.CategoryOptions{
		Label:          label,
		IncludePercent: true,
		Precision:      percentPrecision,
		SortBy:         aggregate.SortCount,
		Descending:     true,
	})
}

// statusBuilder counts the selected raw status column, labelling missing
// values
type statusBuilder struct{}

func (statusBuilder) builder() {}

func (statusBuilder) Build(f *pipeline.Frame) domain.Table {
	return aggregate.CountCategory(column(f, f.StatusColumn), aggregate.CategoryOptions{
		Label:       statusLabel,
		KeepMissing: true,
		SortBy:      aggregate.SortCount,
		Descending:  true,
	})
}

// progressBuilder counts progress buckets in the fixed bucket order
type progressBuilder struct{}

func (progressBuilder) builder() {}

func (progressBuilder) Build(f *pipeline.Frame) domain.Table {
	groups := aggregate.Count(column(f, pipeline.ColProgressBucket), aggregate.CategoryOptions{Label: bucketLabel})
	counts := make(map[string]int, len(groups))
	for _, g := range groups {
		counts[g.Label] = g.Count
	}

	table := domain.NewTable(bucketLabel, aggregate.CountColumn)
	for _, bucket := range parsers.BucketOrder {
		if n, ok := counts[bucket]; ok {
			table.Rows = append(table.Rows, []string{bucket, strconv.Itoa(n)})
		}
	}
	return table
}

// quotaBuilder stacks the MEC and Sistec quota counts
type quotaBuilder struct{}

func (quotaBuilder) builder() {}

func (quotaBuilder) Build(f *pipeline.Frame) domain.Table {
	opts := aggregate.CategoryOptions{Label: quotaValueColumn, SortBy: aggregate.SortNatural}
	return aggregate.Stack(quotaTypeColumn, []string{quotaValueColumn, aggregate.CountColumn},
		aggregate.Tagged{Tag: quotaTypeMEC, Table: aggregate.CountCategory(column(f, schema.QuotaMEC.String()), opts)},
		aggregate.Tagged{Tag: quotaTypeSistec, Table: aggregate.CountCategory(column(f, schema.QuotaSistec.String()), opts)},
	)
}

// transportBuilder counts the composite "vehicle - provider" label
type transportBuilder struct{}

func (transportBuilder) builder() {}

func (transportBuilder) Build(f *pipeline.Frame) domain.Table {
	vehicles := column(f, schema.TransportVehicle.String())
	providers := column(f, schema.TransportPublic.String())

	composite := make([]domain.Cell, len(vehicles))
	for i := range vehicles {
		var provider domain.Cell
		if i < len(providers) {
			provider = providers[i]
		}
		composite[i] = domain.TextCell(transportLabelFor(vehicles[i], provider))
	}
	return countWithPercent(composite, transportLabel)
}

func transportLabelFor(vehicle, provider domain.Cell) string {
	v, vok := aggregate.CategoryValue(vehicle)
	p, pok := aggregate.CategoryValue(provider)
	if !vok && !pok {
		return aggregate.DefaultMissingLabel
	}
	if !vok {
		v = aggregate.DefaultMissingLabel
	}
	if !pok {
		p = aggregate.DefaultMissingLabel
	}
	return v + transportSep + p
}

// crossTabBuilder counts pairs of two columns
type crossTabBuilder struct {
	a, b string
}

func (crossTabBuilder) builder() {}

func (b crossTabBuilder) Build(f *pipeline.Frame) domain.Table {
	return aggregate.CrossTab(column(f, b.a), column(f, b.b), b.a, b.b)
}
