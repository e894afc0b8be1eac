package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/carlosrabelo/tabula/internal/errors"
	"github.com/carlosrabelo/tabula/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd(&out, &errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestBuildCommand(t *testing.T) {
	input := testutil.WriteWorkbook(t, "export.xlsx", testutil.EnrollmentHeaders, testutil.EnrollmentRows())
	outDir := filepath.Join(t.TempDir(), "datasets")
	history := filepath.Join(t.TempDir(), "history.db")

	stdout, logs, err := execute(t, "build",
		"--in", input,
		"--out", outDir,
		"--reference-date", "2024-06-30",
		"--workers", "3",
		"--history", history)
	require.NoError(t, err)

	assert.Contains(t, stdout, "modalidade.csv: generated")
	assert.Contains(t, stdout, "cotas.csv: skipped (missing sources)")
	assert.Contains(t, stdout, "5 rows, 13 generated, 2 skipped, 0 failed -> "+outDir)
	assert.Contains(t, logs, `"msg":"build finished"`)

	assert.FileExists(t, filepath.Join(outDir, "modalidade.csv"))
	assert.FileExists(t, filepath.Join(outDir, "manifest.json"))
	assert.NoFileExists(t, filepath.Join(outDir, "cotas.csv"))

	stdout, _, err = execute(t, "history", "--history", history)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "2024-06-30\t5\t13\t2\t0")

	runID := strings.SplitN(lines[0], "\t", 2)[0]
	stdout, _, err = execute(t, "history", runID, "--history", history)
	require.NoError(t, err)
	assert.Contains(t, stdout, "turno.csv: generated")
}

func TestBuildCommandOnly(t *testing.T) {
	input := testutil.WriteWorkbook(t, "export.xlsx", testutil.EnrollmentHeaders, testutil.EnrollmentRows())
	outDir := t.TempDir()

	stdout, _, err := execute(t, "build", "--in", input, "--out", outDir, "--only", "turno.csv, modalidade.csv")
	require.NoError(t, err)

	assert.Contains(t, stdout, "2 generated, 0 skipped")
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 3) // two datasets and the manifest
}

func TestBuildCommandErrors(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, "export.xls")
	require.NoError(t, os.WriteFile(legacy, []byte("not a workbook"), 0o644))

	tests := []struct {
		name    string
		args    []string
		errType apperrors.ErrorType
	}{
		{"no input", []string{"build", "--out", dir}, apperrors.ErrTypeConfig},
		{"missing input", []string{"build", "--in", filepath.Join(dir, "nope.xlsx"), "--out", dir}, apperrors.ErrTypeInput},
		{"corrupt legacy workbook", []string{"build", "--in", legacy, "--out", dir}, apperrors.ErrTypeDecoding},
		{"bad reference date", []string{"build", "--in", legacy, "--out", dir, "--reference-date", "30/06/2024"}, apperrors.ErrTypeConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.errType), "got %v", err)
		})
	}
}

func TestHistoryCommandWithoutDatabase(t *testing.T) {
	_, _, err := execute(t, "history", "--history", filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestFieldsCommand(t *testing.T) {
	overlay := filepath.Join(t.TempDir(), "synonyms.yaml")
	require.NoError(t, os.WriteFile(overlay, []byte("turno:\n  - Período do Dia\n"), 0o644))

	stdout, _, err := execute(t, "fields", "--synonyms", overlay)
	require.NoError(t, err)
	assert.Contains(t, stdout, "turno: ")
	assert.Contains(t, stdout, "Período do Dia")

	_, _, err = execute(t, "fields", "--synonyms", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "tabula v"))
}
