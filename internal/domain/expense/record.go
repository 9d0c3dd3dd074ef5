// Package expense holds the canonical expense record model and the shared
// record store the rest of the application reads from. Records are created
// by ingestion, immutable afterwards and only removable one at a time or by
// clearing the whole set.
package expense

import "strings"

// Status is the review state of a record. Ingestion always assigns
// StatusPending; the others exist for records touched during review.
type Status string

const (
	StatusValidated  Status = "Validado"
	StatusPending    Status = "Pendente"
	StatusValueError Status = "Erro de Valor"
)

// BudgetFlag marks whether a record crossed the per-item alert threshold at
// ingestion time. The flag is frozen then; it is never reconciled with the
// monthly budgets configured later, which track a separate notion of
// "exceeded".
type BudgetFlag string

const (
	BudgetWithin   BudgetFlag = "Within"
	BudgetExceeded BudgetFlag = "Exceeded"
)

// Canonical category labels. Anything not recognized as PPRI or Diárias
// keeps its raw purpose text, or falls back to CategoryGeneral.
const (
	CategoryGeneral = "Geral"
	CategoryPPRI    = "PPRI"
	CategoryDiarias = "Diárias"
)

// UnidentifiedCollaborator is the sentinel name for rows without one.
const UnidentifiedCollaborator = "Não Identificado"

// Record is a fully normalized expense entry. Val keeps the display form
// ("R$ <source digits>"); consumers that need arithmetic re-parse it.
type Record struct {
	ID     string     `json:"id"`
	Date   string     `json:"date"`
	Name   string     `json:"name"`
	Val    string     `json:"val"`
	Type   string     `json:"type"`
	Status Status     `json:"status"`
	Budget BudgetFlag `json:"budget"`
}

// MonthKeys are the twelve fixed bucket labels, indexed 0..11.
var MonthKeys = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// MonthNames are the full pt-BR month names, indexed 0..11.
var MonthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthIndex extracts the zero-based month from a canonical DD/MM/YYYY date.
// It reports false for dates that do not split into three slash-delimited
// parts or whose month is out of range.
func (r Record) MonthIndex() (int, bool) {
	parts := strings.Split(r.Date, "/")
	if len(parts) != 3 {
		return 0, false
	}
	idx := atoiLenient(parts[1]) - 1
	if idx < 0 || idx > 11 {
		return 0, false
	}
	return idx, true
}

// Year extracts the year component of the record date, or "" when the date
// is not slash-delimited.
func (r Record) Year() string {
	parts := strings.Split(r.Date, "/")
	if len(parts) != 3 {
		return ""
	}
	return parts[2]
}

func atoiLenient(s string) int {
	n := 0
	for _, r := range strings.TrimSpace(s) {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}
