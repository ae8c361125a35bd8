// Package ident allocates human-legible identifiers for model entities.
//
// Counters are derived, never persisted: Reseed recomputes each counter from the
// highest trailing numeric suffix in a model, so reopening a file with gaps resumes
// numbering above the highest existing id.
package ident

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"threatforge/internal/domain"
)

// Kind selects one of the allocator's counters
type Kind string

const (
	KindElement  Kind = "element"
	KindFlow     Kind = "flow"
	KindBoundary Kind = "boundary"
)

var suffixPattern = regexp.MustCompile(`-(\d+)$`)

// Allocator hands out monotonic ids per entity kind.
// The zero value is ready to use.
type Allocator struct {
	element  int
	flow     int
	boundary int
}

// New creates an allocator with all counters at zero
func New() *Allocator {
	return &Allocator{}
}

// Reseed sets every counter to the maximum numeric suffix found in the model
func (a *Allocator) Reseed(m *domain.ThreatModel) {
	a.element, a.flow, a.boundary = 0, 0, 0
	if m == nil {
		return
	}
	for _, e := range m.Elements {
		a.element = max(a.element, Suffix(e.ID))
	}
	for _, f := range m.DataFlows {
		a.flow = max(a.flow, Suffix(f.ID))
	}
	for _, b := range m.TrustBoundaries {
		a.boundary = max(a.boundary, Suffix(b.ID))
	}
}

// Current returns the last value handed out for a kind
func (a *Allocator) Current(kind Kind) int {
	switch kind {
	case KindFlow:
		return a.flow
	case KindBoundary:
		return a.boundary
	default:
		return a.element
	}
}

// NextElement returns a new element id such as "data-store-7"
func (a *Allocator) NextElement(kind domain.ElementKind) string {
	a.element++
	return format(kind.IDPrefix(), a.element)
}

// NextFlow returns a new data flow id such as "flow-3"
func (a *Allocator) NextFlow() string {
	a.flow++
	return format("flow", a.flow)
}

// NextBoundary returns a new trust boundary id such as "boundary-2"
func (a *Allocator) NextBoundary() string {
	a.boundary++
	return format("boundary", a.boundary)
}

// Suffix extracts the trailing "-<n>" number of an id, or 0 when absent
func Suffix(id string) int {
	m := suffixPattern.FindStringSubmatch(id)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func format(prefix string, n int) string {
	return prefix + "-" + strconv.Itoa(n)
}

// NewThreatID returns a random threat id such as "threat-1a2b3c4d"
func NewThreatID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "threat-" + hex[:8]
}
