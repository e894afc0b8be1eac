package parsers

import (
	"strings"

	"github.com/carlosrabelo/tabula/internal/textnorm"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

// SimpleStatus is the five-way classification of an enrollment situation
type SimpleStatus string

const (
	StatusCompleted SimpleStatus = "Concluído"
	StatusActive    SimpleStatus = "Ativo"
	StatusSuspended SimpleStatus = "Trancado"
	StatusDropped   SimpleStatus = "Evasão/Cancelado"
	StatusOther     SimpleStatus = "Outros"
)

type statusRule struct {
	stems  []string
	status SimpleStatus
}

// statusRules are evaluated in order; the first rule with a matching stem wins
var statusRules = []statusRule{
	{stems: []string{"concl", "form"}, status: StatusCompleted},
	{stems: []string{"ativ", "curs"}, status: StatusActive},
	{stems: []string{"tranc"}, status: StatusSuspended},
	{stems: []string{"cancel", "evad", "desl"}, status: StatusDropped},
}

// SimplifyStatus classifies a raw situation by normalized prefix
func SimplifyStatus(c domain.Cell) SimpleStatus {
	normalized := textnorm.NormalizeCell(c)
	if normalized == "" {
		return StatusOther
	}
	for _, rule := range statusRules {
		for _, stem := range rule.stems {
			if strings.HasPrefix(normalized, stem) {
				return rule.status
			}
		}
	}
	return StatusOther
}

// Special-need labels
const (
	SpecialNeedYes = "Sim"
	SpecialNeedNo  = "Não"
)

var negativeMarkers = []string{
	"nao",
	"naopossui",
	"naoseaplica",
	"naodeclarado",
	"naoinformado",
	"sem",
	"0",
}

// ClassifySpecialNeed reduces the free-text special needs column to Sim/Não
func ClassifySpecialNeed(c domain.Cell) string {
	normalized := textnorm.NormalizeCell(c)
	if normalized == "" {
		return SpecialNeedNo
	}
	for _, marker := range negativeMarkers {
		if strings.HasPrefix(normalized, marker) {
			return SpecialNeedNo
		}
	}
	if normalized == "n" || normalized == "na" {
		return SpecialNeedNo
	}
	return SpecialNeedYes
}
