package testutil

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook saves a single-sheet workbook under t.TempDir() and returns
// its path. The first row holds headers; nil values leave a cell empty.
func WriteWorkbook(t *testing.T, name string, headers []string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for col, h := range headers {
		ref, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetCellValue(sheet, ref, h); err != nil {
			t.Fatalf("set header %q: %v", h, err)
		}
	}

	for r, row := range rows {
		for col, v := range row {
			if v == nil {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, ref, v); err != nil {
				t.Fatalf("set %s: %v", ref, err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save temp workbook: %v", err)
	}
	return path
}

// EnrollmentHeaders is a realistic SUAP export header row
var EnrollmentHeaders = []string{
	"Matrícula", "Nome", "Curso", "Situação no Curso", "Situação no Sistema",
	"Data de Matrícula", "Data de Conclusão de Curso", "Modalidade", "Turno",
	"Forma de Ingresso", "Cota MEC", "Etnia/Raça", "Deficiências/Transtornos/Superdotação",
	"Percentual de Progresso", "Ano de Ingresso", "Tipo de Escola de Origem",
	"Natureza de Participação", "Transporte Escolar: Poder Público",
	"Transporte Escolar: Tipo de Veículo",
}

// EnrollmentRows are sample rows aligned with EnrollmentHeaders
func EnrollmentRows() [][]any {
	return [][]any{
		{"2020101", "Ana", "Técnico em Informática", "Concluído", "Concluído", "01/02/2020", "15/12/2022", "Presencial", "Matutino", "Processo Seletivo", "Escola Pública", "Parda", "Não possui", "100%", 2020, "Pública", "Regular", "Municipal", "Ônibus"},
		{"2021102", "Bruno", "Técnico em Informática", "Cursando", "Matriculado", "01/02/2021", nil, "Presencial", "Vespertino", "Processo Seletivo", "Ampla Concorrência", "Branca", "Baixa visão", "62,5%", 2021, "Privada", "Regular", nil, nil},
		{"2021103", "Carla", "Técnico em Edificações", "Cursando", "Matriculado", "01/02/2021", nil, "EAD", "Noturno", "SISU", "Escola Pública", "Preta", nil, "30%", 2021, "Pública", "Bolsista", "Estadual", "Van"},
		{"2019104", "Diego", "Técnico em Edificações", "Trancado", "Trancado", "01/08/2019", nil, "Presencial", "Noturno", "Transferência", "Ampla Concorrência", "Parda", "Não", "12,0", 2019, "Pública", "Regular", "Municipal", "Ônibus"},
		{"2022105", "Elisa", "Técnico em Informática", "Cancelado", "Evadido", "01/02/2022", nil, "EAD", "Matutino", "SISU", "Escola Pública", "Indígena", "", "5%", 2022, "Pública", "Regular", nil, nil},
	}
}
