package journal

import (
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator produces correlation tokens for journaled runs.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator produces time-sortable UUIDv7 tokens, so run tokens
// sort in creation order.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator hands out tokens from a fixed list, for deterministic
// tests and golden output.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator returns a generator that yields the given tokens in
// order.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next token, panicking when the list is exhausted.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("FixedGenerator: all tokens exhausted")
	}

	token := g.tokens[g.idx]
	g.idx++
	return token
}
