package idgen

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces unique identifiers with a short domain prefix
// (e.g. "REQ", "LOG"). Injected into services so tests can substitute a
// deterministic sequence.
type Generator interface {
	NewID(prefix string) string
}

// UUID is the production generator.
type UUID struct{}

func NewUUID() UUID {
	return UUID{}
}

// NewID returns ids like "REQ-9f1c2a7e". The first uuid block is enough to
// keep ids readable in the UI while staying collision-safe within a session.
func (UUID) NewID(prefix string) string {
	raw := uuid.NewString()
	short := raw[:strings.Index(raw, "-")]
	if prefix == "" {
		return raw
	}
	return fmt.Sprintf("%s-%s", prefix, short)
}

// Sequence generates predictable ids ("REQ-1", "REQ-2", ...) for tests.
type Sequence struct {
	n atomic.Int64
}

func NewSequence() *Sequence {
	return &Sequence{}
}

func (s *Sequence) NewID(prefix string) string {
	n := s.n.Add(1)
	if prefix == "" {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s-%d", prefix, n)
}
