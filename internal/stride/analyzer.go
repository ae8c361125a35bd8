// Package stride suggests threats for a model using STRIDE-per-element rules.
// The analyzer only reads the model; accepted suggestions are appended by the
// caller.
package stride

import (
	"slices"
	"strings"

	"threatforge/internal/domain"
	"threatforge/internal/ident"
)

// Analyzer evaluates a rule table against a threat model
type Analyzer struct {
	rules []Rule
	newID func() string
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithRules replaces the built-in rule table
func WithRules(rules []Rule) Option {
	return func(a *Analyzer) {
		a.rules = rules
	}
}

// WithIDFunc overrides threat id generation
func WithIDFunc(fn func() string) Option {
	return func(a *Analyzer) {
		a.newID = fn
	}
}

// New creates an analyzer with the default rules
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		rules: DefaultRules(),
		newID: ident.NewThreatID,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns suggested threats that the model does not already record.
// A suggestion is skipped when a threat with the same target and category
// exists. Flow severities are boosted when the flow crosses a trust boundary.
func (a *Analyzer) Analyze(m *domain.ThreatModel) []domain.Threat {
	if m == nil {
		return nil
	}
	existing := existingKeys(m)
	suggestions := make([]domain.Threat, 0)

	for _, e := range m.Elements {
		for _, r := range a.rules {
			if r.Flow || !slices.Contains(r.Kinds, e.Kind) {
				continue
			}
			if existing[key(e.ID, r.Category)] {
				continue
			}
			fill := strings.NewReplacer("{name}", e.Name)
			suggestions = append(suggestions, domain.Threat{
				ID:          a.newID(),
				Title:       fill.Replace(r.Title),
				Category:    r.Category,
				Element:     e.ID,
				Severity:    r.Severity,
				Description: fill.Replace(r.Description),
			})
		}
	}

	for _, f := range m.DataFlows {
		fill := strings.NewReplacer(
			"{source}", m.ElementName(f.From),
			"{target}", m.ElementName(f.To),
		)
		crosses := CrossesBoundary(m, f.From, f.To)
		for _, r := range a.rules {
			if !r.Flow || existing[key(f.ID, r.Category)] {
				continue
			}
			severity := r.Severity
			if crosses {
				severity = severity.Boost()
			}
			suggestions = append(suggestions, domain.Threat{
				ID:          a.newID(),
				Title:       fill.Replace(r.Title),
				Category:    r.Category,
				Flow:        f.ID,
				Severity:    severity,
				Description: fill.Replace(r.Description),
			})
		}
	}

	return suggestions
}

// CrossesBoundary reports whether two elements sit in different trust zones.
// Each element's zone is the first boundary containing it; elements outside
// every boundary share one implicit zone.
func CrossesBoundary(m *domain.ThreatModel, from, to string) bool {
	return zone(m, from) != zone(m, to)
}

func zone(m *domain.ThreatModel, elementID string) string {
	if b := m.BoundaryOf(elementID); b != nil {
		return b.ID
	}
	return ""
}

func key(ref string, category domain.StrideCategory) string {
	return ref + "::" + string(category)
}

func existingKeys(m *domain.ThreatModel) map[string]bool {
	keys := make(map[string]bool, len(m.Threats))
	for _, t := range m.Threats {
		if ref := t.Ref(); ref != "" {
			keys[key(ref, t.Category)] = true
		}
	}
	return keys
}
