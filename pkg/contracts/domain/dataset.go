package domain

import (
	"time"
)

// DatasetOutcome is the reason code reported for every catalogue entry
type DatasetOutcome string

const (
	OutcomeGenerated        DatasetOutcome = "generated"
	OutcomeMissingSources   DatasetOutcome = "missing_sources"
	OutcomeInsufficientData DatasetOutcome = "insufficient_data"
	OutcomeNoData           DatasetOutcome = "no_data"
	OutcomeFailed           DatasetOutcome = "failed"
)

// Skipped reports whether the outcome is one of the non-fatal skip reasons
func (o DatasetOutcome) Skipped() bool {
	switch o {
	case OutcomeMissingSources, OutcomeInsufficientData, OutcomeNoData:
		return true
	}
	return false
}

// Notice returns the human readable notice for console output
func (o DatasetOutcome) Notice() string {
	switch o {
	case OutcomeGenerated:
		return "generated"
	case OutcomeMissingSources:
		return "skipped (missing sources)"
	case OutcomeInsufficientData:
		return "skipped (insufficient data)"
	case OutcomeNoData:
		return "skipped (no data)"
	case OutcomeFailed:
		return "failed"
	default:
		return string(o)
	}
}

// DatasetResult records what happened to one dataset during a run
type DatasetResult struct {
	Dataset  string         `json:"dataset"`
	Outcome  DatasetOutcome `json:"outcome"`
	Rows     int            `json:"rows"`
	Path     string         `json:"path,omitempty"`
	Error    string         `json:"error,omitempty"`
	Duration time.Duration  `json:"duration_ns"`
}

// HeaderCollision records two raw headers that normalize to the same key
type HeaderCollision struct {
	Normalized string `json:"normalized"`
	Kept       string `json:"kept"`
	Ignored    string `json:"ignored"`
}

// RunManifest summarizes a complete generation run
type RunManifest struct {
	RunID         string            `json:"run_id"`
	InputPath     string            `json:"input_path"`
	OutputDir     string            `json:"output_dir"`
	ReferenceDate string            `json:"reference_date"`
	RowCount      int               `json:"row_count"`
	StatusColumn  string            `json:"status_column"`
	Mapping       map[string]string `json:"mapping"`
	Collisions    []HeaderCollision `json:"collisions,omitempty"`
	Results       []DatasetResult   `json:"results"`
	StartedAt     time.Time         `json:"started_at"`
	FinishedAt    time.Time         `json:"finished_at"`
}

// Generated returns the results that produced a file
func (m *RunManifest) Generated() []DatasetResult {
	out := make([]DatasetResult, 0, len(m.Results))
	for _, r := range m.Results {
		if r.Outcome == OutcomeGenerated {
			out = append(out, r)
		}
	}
	return out
}

// Result looks up the result for a dataset ID
func (m *RunManifest) Result(dataset string) (DatasetResult, bool) {
	for _, r := range m.Results {
		if r.Dataset == dataset {
			return r, true
		}
	}
	return DatasetResult{}, false
}

// RunSummary is the condensed view of a run used for history listings
type RunSummary struct {
	RunID         string    `json:"run_id"`
	InputPath     string    `json:"input_path"`
	OutputDir     string    `json:"output_dir"`
	ReferenceDate string    `json:"reference_date"`
	RowCount      int       `json:"row_count"`
	Generated     int       `json:"generated"`
	Skipped       int       `json:"skipped"`
	Failed        int       `json:"failed"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// Summary tallies the manifest's outcomes
func (m *RunManifest) Summary() RunSummary {
	s := RunSummary{
		RunID:         m.RunID,
		InputPath:     m.InputPath,
		OutputDir:     m.OutputDir,
		ReferenceDate: m.ReferenceDate,
		RowCount:      m.RowCount,
		StartedAt:     m.StartedAt,
		FinishedAt:    m.FinishedAt,
	}
	for _, r := range m.Results {
		switch {
		case r.Outcome == OutcomeGenerated:
			s.Generated++
		case r.Outcome == OutcomeFailed:
			s.Failed++
		case r.Outcome.Skipped():
			s.Skipped++
		}
	}
	return s
}
