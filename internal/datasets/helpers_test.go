package datasets

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carlosrabelo/tabula/internal/pipeline"
	"github.com/carlosrabelo/tabula/internal/schema"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

var reference = time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

// frameOf enriches rows of text cells; nil entries become missing cells
func frameOf(t *testing.T, headers []string, rows ...[]any) *pipeline.Frame {
	t.Helper()
	cells := make([][]domain.Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]domain.Cell, len(row))
		for j, v := range row {
			switch x := v.(type) {
			case nil:
				cells[i][j] = domain.MissingCell()
			case string:
				cells[i][j] = domain.TextCell(x)
			case float64:
				cells[i][j] = domain.NumberCell(x)
			case int:
				cells[i][j] = domain.NumberCell(float64(x))
			default:
				t.Fatalf("unsupported cell value %T", v)
			}
		}
	}
	rs := domain.NewRecordSet("test", headers, cells)
	frame, err := pipeline.Enrich(context.Background(), rs, schema.Resolve(headers, nil), pipeline.Options{Reference: reference})
	require.NoError(t, err)
	return frame
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
