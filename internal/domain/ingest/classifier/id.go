package classifier

import (
	"math/rand"
	"strings"
)

// IDStrategy decides the final record ID from the resolved internal-number
// cell, synthesizing one when the cell is absent or blank.
type IDStrategy interface {
	RecordID(internalID string) string
}

const (
	syntheticPrefix = "AUTO-"
	syntheticLength = 5
	idAlphabet      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// RandomIDStrategy keeps the source internal number when present and
// otherwise generates "AUTO-" plus five random uppercase alphanumerics.
// Synthesized IDs are not collision-free; the probability is non-zero and
// accepted as a known weakness of the scheme.
type RandomIDStrategy struct{}

func (RandomIDStrategy) RecordID(internalID string) string {
	if id := strings.TrimSpace(internalID); id != "" {
		return id
	}

	var b strings.Builder
	b.WriteString(syntheticPrefix)
	for i := 0; i < syntheticLength; i++ {
		b.WriteByte(idAlphabet[rand.Intn(len(idAlphabet))])
	}
	return b.String()
}
