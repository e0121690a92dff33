package eventlog

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDPrefix is prepended to every generated event id.
const IDPrefix = "evt_"

// IDGenerator produces unique event identifiers.
// Implemented by UUIDGenerator (production) and SequenceGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// IDGeneratorFunc adapts a plain function to IDGenerator.
type IDGeneratorFunc func() string

// Generate calls f.
func (f IDGeneratorFunc) Generate() string { return f() }

// UUIDGenerator generates time-sortable ids of the form "evt_<uuidv7>".
//
// Thread-safety: UUIDGenerator is stateless and safe for concurrent use.
type UUIDGenerator struct{}

// Generate returns a fresh event id.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDGenerator) Generate() string {
	return IDPrefix + uuid.Must(uuid.NewV7()).String()
}

// SequenceGenerator returns "evt_1", "evt_2", ... in order.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu   sync.Mutex
	next int
}

// NewSequenceGenerator creates a generator whose first id is "evt_1".
func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{next: 1}
}

// Generate returns the next id in the sequence.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.next == 0 {
		g.next = 1
	}
	id := fmt.Sprintf("%s%d", IDPrefix, g.next)
	g.next++
	return id
}
