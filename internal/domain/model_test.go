package domain

import (
	"testing"
	"time"
)

func TestNewThreatModel(t *testing.T) {
	m := NewThreatModel("Payments", "Alex", time.Date(2026, 4, 9, 15, 0, 0, 0, time.UTC))

	if m.Version != "1.0" {
		t.Errorf("expected version 1.0, got %s", m.Version)
	}
	if m.Metadata.Created != "2026-04-09" || m.Metadata.Modified != "2026-04-09" {
		t.Errorf("unexpected dates %+v", m.Metadata)
	}
	if len(m.Diagrams) != 1 || m.Diagrams[0].ID != DefaultDiagramID {
		t.Fatalf("expected a single %s diagram, got %+v", DefaultDiagramID, m.Diagrams)
	}
	if m.Diagrams[0].LayoutFile != ".threatforge/layouts/main-dfd.json" {
		t.Errorf("unexpected layout file %s", m.Diagrams[0].LayoutFile)
	}
	if m.Elements == nil || m.DataFlows == nil || m.TrustBoundaries == nil || m.Threats == nil {
		t.Error("expected collections to be initialized")
	}
}

func TestNormalize(t *testing.T) {
	m := &ThreatModel{
		Elements:        []Element{{ID: "process-1"}},
		DataFlows:       []DataFlow{{ID: "flow-1"}},
		TrustBoundaries: []TrustBoundary{{ID: "boundary-1"}},
	}
	m.Normalize()

	if m.Elements[0].Technologies == nil {
		t.Error("expected technologies to be initialized")
	}
	if m.DataFlows[0].Data == nil {
		t.Error("expected flow data to be initialized")
	}
	if m.TrustBoundaries[0].Contains == nil {
		t.Error("expected contains to be initialized")
	}
	if m.Threats == nil || m.Diagrams == nil {
		t.Error("expected threats and diagrams to be initialized")
	}
}

func TestThreatModelLookup(t *testing.T) {
	m := &ThreatModel{
		Elements: []Element{{ID: "process-1", Name: "API"}},
		TrustBoundaries: []TrustBoundary{
			{ID: "boundary-1", Contains: []string{"process-1"}},
			{ID: "boundary-2", Contains: []string{"process-1"}},
		},
	}

	if b := m.BoundaryOf("process-1"); b == nil || b.ID != "boundary-1" {
		t.Errorf("expected first boundary to win, got %+v", b)
	}
	if m.BoundaryOf("process-2") != nil {
		t.Error("expected no boundary for uncontained element")
	}
	if m.ElementName("process-1") != "API" {
		t.Error("expected element name")
	}
	if m.ElementName("ghost-3") != "ghost-3" {
		t.Error("expected raw id for dangling reference")
	}
}

func TestThreatModelClone(t *testing.T) {
	var nilModel *ThreatModel
	if nilModel.Clone() != nil {
		t.Error("expected nil clone of nil model")
	}

	m := &ThreatModel{
		TrustBoundaries: []TrustBoundary{{ID: "boundary-1", Contains: []string{"process-1"}}},
		Threats:         []Threat{{ID: "threat-1", Mitigation: &Mitigation{Status: MitigationNotStarted}}},
	}
	c := m.Clone()
	c.TrustBoundaries[0].Contains[0] = "changed"
	c.Threats[0].Mitigation.Status = MitigationMitigated

	if m.TrustBoundaries[0].Contains[0] != "process-1" {
		t.Error("expected contains to be deep copied")
	}
	if m.Threats[0].Mitigation.Status != MitigationNotStarted {
		t.Error("expected mitigation to be deep copied")
	}
}

func TestSeverityBoost(t *testing.T) {
	tests := map[Severity]Severity{
		SeverityCritical: SeverityCritical,
		SeverityHigh:     SeverityHigh,
		SeverityMedium:   SeverityHigh,
		SeverityLow:      SeverityMedium,
		SeverityInfo:     SeverityInfo,
	}
	for in, want := range tests {
		if got := in.Boost(); got != want {
			t.Errorf("%s.Boost() = %s, want %s", in, got, want)
		}
	}
}

func TestThreatCounts(t *testing.T) {
	if len(ThreatCounts(nil)) != 0 {
		t.Error("expected empty counts for nil model")
	}

	m := &ThreatModel{Threats: []Threat{
		{ID: "t1", Element: "process-1"},
		{ID: "t2", Element: "process-1"},
		{ID: "t3", Flow: "flow-1"},
		{ID: "t4"},
	}}
	counts := ThreatCounts(m)
	if counts["process-1"] != 2 || counts["flow-1"] != 1 || len(counts) != 2 {
		t.Errorf("unexpected counts %v", counts)
	}
}
