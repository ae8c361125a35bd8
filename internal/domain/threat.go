package domain

// StrideCategory is one of the six STRIDE threat classes
type StrideCategory string

const (
	StrideSpoofing              StrideCategory = "Spoofing"
	StrideTampering             StrideCategory = "Tampering"
	StrideRepudiation           StrideCategory = "Repudiation"
	StrideInformationDisclosure StrideCategory = "Information Disclosure"
	StrideDenialOfService       StrideCategory = "Denial of Service"
	StrideElevationOfPrivilege  StrideCategory = "Elevation of Privilege"
)

// Severity ranks the impact of a threat
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Boost raises medium and low severities by one level
func (s Severity) Boost() Severity {
	switch s {
	case SeverityMedium:
		return SeverityHigh
	case SeverityLow:
		return SeverityMedium
	}
	return s
}

// MitigationStatus tracks remediation progress
type MitigationStatus string

const (
	MitigationNotStarted  MitigationStatus = "not_started"
	MitigationInProgress  MitigationStatus = "in_progress"
	MitigationMitigated   MitigationStatus = "mitigated"
	MitigationAccepted    MitigationStatus = "accepted"
	MitigationTransferred MitigationStatus = "transferred"
)

// Mitigation records how a threat is being handled
type Mitigation struct {
	Status      MitigationStatus `yaml:"status" json:"status"`
	Description string           `yaml:"description" json:"description"`
}

// Threat is a STRIDE finding attached to an element or a data flow
type Threat struct {
	ID          string         `yaml:"id" json:"id"`
	Title       string         `yaml:"title" json:"title"`
	Category    StrideCategory `yaml:"category" json:"category"`
	Element     string         `yaml:"element,omitempty" json:"element,omitempty"`
	Flow        string         `yaml:"flow,omitempty" json:"flow,omitempty"`
	Severity    Severity       `yaml:"severity" json:"severity"`
	Description string         `yaml:"description" json:"description"`
	Mitigation  *Mitigation    `yaml:"mitigation,omitempty" json:"mitigation,omitempty"`
}

// Clone returns a deep copy of the threat
func (t Threat) Clone() Threat {
	if t.Mitigation != nil {
		m := *t.Mitigation
		t.Mitigation = &m
	}
	return t
}

// Ref returns the id of the element or flow the threat targets
func (t Threat) Ref() string {
	if t.Element != "" {
		return t.Element
	}
	return t.Flow
}

// ThreatCounts returns, per element or flow id, how many threats reference it.
// Used for the badge drawn on canvas nodes.
func ThreatCounts(m *ThreatModel) map[string]int {
	counts := make(map[string]int)
	if m == nil {
		return counts
	}
	for _, t := range m.Threats {
		if ref := t.Ref(); ref != "" {
			counts[ref]++
		}
	}
	return counts
}
