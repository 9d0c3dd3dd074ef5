// Package resolver maps variant spreadsheet header names to the canonical
// fields the pipeline consumes. Source files come from different teams and
// tools, so the same logical column shows up as "VALOR", "Valor", "Vlr" or
// "Quantia"; each canonical field carries an ordered candidate list that
// tolerates those variants.
package resolver

import (
	"sort"
	"strings"
)

// Field identifies a canonical record field resolvable from a row.
type Field int

const (
	Date Field = iota
	Collaborator
	Amount
	Purpose
	InternalID
)

func (f Field) String() string {
	switch f {
	case Date:
		return "date"
	case Collaborator:
		return "collaborator"
	case Amount:
		return "amount"
	case Purpose:
		return "purpose"
	case InternalID:
		return "internal_id"
	}
	return "unknown"
}

// candidates lists header names per field in priority order. Earlier entries
// win; each is tried as an exact key first, then as a normalized match
// against every actual header.
var candidates = map[Field][]string{
	Date:         {"DATA", "Data", "Dt", "Dia", "DATA DO PAGAMENTO"},
	Collaborator: {"COLABORADOR PARA DEPOSITO", "Colaborador", "Nome", "Funcionário"},
	Amount:       {"VALOR", "Valor", "Vlr", "Quantia"},
	Purpose:      {"FINALIDADE", "Finalidade", "Categoria", "Tipo", "Descrição"},
	InternalID:   {"Nº INT.", "Nº INT", "N INT", "ID", "Código", "N. Int", "N° INT."},
}

// Resolve finds the value for a canonical field in a raw row. It reports
// false only when no candidate header matched at all; a matched header with
// an empty cell still reports true.
func Resolve(row map[string]string, field Field) (string, bool) {
	var keys []string

	for _, candidate := range candidates[field] {
		if value, ok := row[candidate]; ok {
			return value, true
		}

		if keys == nil {
			keys = make([]string, 0, len(row))
			for k := range row {
				keys = append(keys, k)
			}
			sort.Strings(keys)
		}

		target := normalizeHeader(candidate)
		for _, key := range keys {
			if normalizeHeader(key) == target {
				return row[key], true
			}
		}
	}
	return "", false
}

// normalizeHeader lowers, trims and strips periods so "N. Int" and "Nº INT."
// compare equal to their canonical spellings.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, ".", "")
}
