package domain

import (
	"testing"
)

func TestHandle(t *testing.T) {
	t.Run("builds from side and role", func(t *testing.T) {
		h := NewHandle(SideRight, RoleSource)
		if h != "right-source" {
			t.Errorf("expected 'right-source', got %s", h)
		}
		if h.Side() != SideRight {
			t.Errorf("expected side right, got %s", h.Side())
		}
		if h.Role() != RoleSource {
			t.Errorf("expected role source, got %s", h.Role())
		}
	})

	t.Run("flip keeps the side", func(t *testing.T) {
		tests := map[Handle]Handle{
			"right-source":  "right-target",
			"left-target":   "left-source",
			"top-source":    "top-target",
			"bottom-target": "bottom-source",
			"":              "",
			"custom":        "custom",
		}
		for in, want := range tests {
			if got := in.Flip(); got != want {
				t.Errorf("Flip(%q) = %q, want %q", in, got, want)
			}
		}
	})
}

func TestNewFlowEdge(t *testing.T) {
	t.Run("mirrors the flow", func(t *testing.T) {
		flow := DataFlow{
			ID:            "flow-1",
			Name:          "Login",
			From:          "external-1",
			To:            "process-1",
			Protocol:      "HTTPS",
			Data:          []string{"credentials"},
			Authenticated: true,
		}
		edge := NewFlowEdge(flow)

		if edge.ID != "flow-1" || edge.Source != "external-1" || edge.Target != "process-1" {
			t.Errorf("unexpected endpoints: %+v", edge)
		}
		if edge.SourceHandle != "" || edge.TargetHandle != "" {
			t.Error("expected handles to be unset")
		}
		if !edge.Animated {
			t.Error("expected authenticated flow to be animated")
		}
		if edge.Label.Protocol != "HTTPS" || edge.Label.Name != "Login" {
			t.Errorf("unexpected label: %+v", edge.Label)
		}

		flow.Data[0] = "changed"
		if edge.Label.Data[0] != "credentials" {
			t.Error("expected label data to be copied")
		}
	})

	t.Run("nil data becomes empty", func(t *testing.T) {
		edge := NewFlowEdge(DataFlow{ID: "flow-1"})
		if edge.Label.Data == nil {
			t.Error("expected empty data slice")
		}
	})
}

func TestGraphEdgeConnects(t *testing.T) {
	edge := GraphEdge{ID: "flow-1", Source: "a", Target: "b"}

	if !edge.Connects("a", "b") || !edge.Connects("b", "a") {
		t.Error("expected edge to connect a and b in either order")
	}
	if edge.Connects("a", "c") {
		t.Error("expected edge not to connect a and c")
	}
	if !edge.Touches("b") || edge.Touches("c") {
		t.Error("unexpected Touches result")
	}
}
