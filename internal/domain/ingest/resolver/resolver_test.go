package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveExactMatch(t *testing.T) {
	row := map[string]string{
		"VALOR":                     "1.200,00",
		"DATA":                      "02/01/2025",
		"COLABORADOR PARA DEPOSITO": "Maria Santos",
		"FINALIDADE":                "Diária de campo",
		"Nº INT.":                   "4711",
	}

	tests := []struct {
		field Field
		want  string
	}{
		{Amount, "1.200,00"},
		{Date, "02/01/2025"},
		{Collaborator, "Maria Santos"},
		{Purpose, "Diária de campo"},
		{InternalID, "4711"},
	}

	for _, tt := range tests {
		t.Run(tt.field.String(), func(t *testing.T) {
			got, ok := Resolve(row, tt.field)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveNormalizedMatch(t *testing.T) {
	// Headers with stray casing, whitespace and periods still resolve.
	row := map[string]string{
		"  valor. ": "950,10",
		"dt":        "10/02/2024",
		"nome ":     "Carlos",
	}

	got, ok := Resolve(row, Amount)
	assert.True(t, ok)
	assert.Equal(t, "950,10", got)

	got, ok = Resolve(row, Date)
	assert.True(t, ok)
	assert.Equal(t, "10/02/2024", got)

	got, ok = Resolve(row, Collaborator)
	assert.True(t, ok)
	assert.Equal(t, "Carlos", got)
}

func TestResolveCandidatePriority(t *testing.T) {
	// "VALOR" outranks "Quantia" when both columns exist.
	row := map[string]string{
		"VALOR":   "100,00",
		"Quantia": "999,99",
	}

	got, ok := Resolve(row, Amount)
	assert.True(t, ok)
	assert.Equal(t, "100,00", got)
}

func TestResolveMiss(t *testing.T) {
	row := map[string]string{"Observação": "sem valor"}

	got, ok := Resolve(row, Amount)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestResolveEmptyCellStillResolves(t *testing.T) {
	// A matched header with a blank cell is "present but empty"; the caller
	// decides how to default it.
	row := map[string]string{"VALOR": ""}

	got, ok := Resolve(row, Amount)
	assert.True(t, ok)
	assert.Empty(t, got)
}
