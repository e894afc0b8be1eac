package console

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/carlosrabelo/tabula/internal/schema"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

// Printer writes run output either styled or as plain lines
type Printer struct {
	w      io.Writer
	styled bool
}

// NewPrinter creates a printer that styles output only when w is a terminal
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, styled: IsTerminal(w)}
}

// NewPlainPrinter creates a printer that never styles output
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Results prints one notice per dataset and a summary line
func (p *Printer) Results(m *domain.RunManifest) error {
	if p.styled {
		rows := make([][]string, 0, len(m.Results))
		for _, r := range m.Results {
			rows = append(rows, []string{
				r.Dataset,
				OutcomeStyle(r.Outcome).Render(r.Outcome.Notice()),
				rowCount(r),
				r.Error,
			})
		}
		if _, err := io.WriteString(p.w, RenderTable([]string{"DATASET", "STATUS", "ROWS", "DETAIL"}, rows)); err != nil {
			return err
		}
	} else {
		for _, r := range m.Results {
			line := fmt.Sprintf("%s: %s", r.Dataset, r.Outcome.Notice())
			if r.Error != "" {
				line += " (" + r.Error + ")"
			}
			if _, err := fmt.Fprintln(p.w, line); err != nil {
				return err
			}
		}
	}

	s := m.Summary()
	_, err := fmt.Fprintf(p.w, "%d rows, %d generated, %d skipped, %d failed -> %s\n",
		s.RowCount, s.Generated, s.Skipped, s.Failed, m.OutputDir)
	return err
}

func rowCount(r domain.DatasetResult) string {
	if r.Outcome != domain.OutcomeGenerated {
		return "-"
	}
	return strconv.Itoa(r.Rows)
}

// Runs prints a run history listing
func (p *Printer) Runs(runs []domain.RunSummary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(p.w, "no runs recorded")
		return err
	}

	headers := []string{"RUN", "STARTED", "REFERENCE", "ROWS", "GENERATED", "SKIPPED", "FAILED"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.RunID,
			r.StartedAt.Local().Format(time.DateTime),
			r.ReferenceDate,
			strconv.Itoa(r.RowCount),
			strconv.Itoa(r.Generated),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Failed),
		})
	}
	if p.styled {
		_, err := io.WriteString(p.w, RenderTable(headers, rows))
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(p.w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// Fields prints every canonical field with its accepted header spellings
func (p *Printer) Fields(table *schema.SynonymTable) error {
	rows := make([][]string, 0, schema.FieldCount)
	for _, f := range schema.Fields() {
		rows = append(rows, []string{f.String(), strings.Join(table.Synonyms(f), " | ")})
	}
	if p.styled {
		_, err := io.WriteString(p.w, RenderTable([]string{"FIELD", "SYNONYMS"}, rows))
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(p.w, "%s: %s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return nil
}
