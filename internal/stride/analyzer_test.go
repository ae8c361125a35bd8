package stride

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threatforge/internal/domain"
)

func testModel() *domain.ThreatModel {
	return &domain.ThreatModel{
		Elements: []domain.Element{
			{ID: "process-1", Kind: domain.ElementProcess, Name: "API"},
			{ID: "data-store-1", Kind: domain.ElementDataStore, Name: "Ledger"},
			{ID: "external-1", Kind: domain.ElementExternalEntity, Name: "Customer"},
		},
		DataFlows: []domain.DataFlow{
			{ID: "flow-1", From: "external-1", To: "process-1"},
			{ID: "flow-2", From: "process-1", To: "data-store-1"},
		},
		TrustBoundaries: []domain.TrustBoundary{
			{ID: "boundary-1", Name: "Internal", Contains: []string{"process-1", "data-store-1"}},
		},
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("threat-%08d", n)
	}
}

func find(threats []domain.Threat, ref string, category domain.StrideCategory) *domain.Threat {
	for i := range threats {
		if threats[i].Ref() == ref && threats[i].Category == category {
			return &threats[i]
		}
	}
	return nil
}

func TestAnalyze(t *testing.T) {
	t.Run("one suggestion per applicable rule", func(t *testing.T) {
		threats := New(WithIDFunc(sequentialIDs())).Analyze(testModel())
		// process 6 + data store 3 + external 2 + two flows x 3
		assert.Len(t, threats, 17)

		counts := make(map[string]int)
		for _, th := range threats {
			counts[th.Ref()]++
		}
		assert.Equal(t, map[string]int{
			"process-1":    6,
			"data-store-1": 3,
			"external-1":   2,
			"flow-1":       3,
			"flow-2":       3,
		}, counts)
	})

	t.Run("templates are filled", func(t *testing.T) {
		threats := New().Analyze(testModel())

		s := find(threats, "process-1", domain.StrideSpoofing)
		require.NotNil(t, s)
		assert.Equal(t, "Spoofing of API", s.Title)
		assert.Contains(t, s.Description, "impersonate API")
		assert.Equal(t, "process-1", s.Element)
		assert.Empty(t, s.Flow)

		f := find(threats, "flow-1", domain.StrideTampering)
		require.NotNil(t, f)
		assert.Equal(t, "Tampering with data flow between Customer and API", f.Title)
		assert.Equal(t, "flow-1", f.Flow)
	})

	t.Run("existing threats are skipped", func(t *testing.T) {
		m := testModel()
		m.Threats = []domain.Threat{
			{ID: "threat-aaaaaaaa", Element: "process-1", Category: domain.StrideSpoofing},
			{ID: "threat-bbbbbbbb", Flow: "flow-2", Category: domain.StrideDenialOfService},
		}
		threats := New().Analyze(m)

		assert.Len(t, threats, 15)
		assert.Nil(t, find(threats, "process-1", domain.StrideSpoofing))
		assert.Nil(t, find(threats, "flow-2", domain.StrideDenialOfService))
		assert.NotNil(t, find(threats, "external-1", domain.StrideSpoofing))
	})

	t.Run("boundary crossing boosts flow severity", func(t *testing.T) {
		threats := New().Analyze(testModel())

		crossing := find(threats, "flow-1", domain.StrideDenialOfService)
		require.NotNil(t, crossing)
		assert.Equal(t, domain.SeverityHigh, crossing.Severity)

		internal := find(threats, "flow-2", domain.StrideDenialOfService)
		require.NotNil(t, internal)
		assert.Equal(t, domain.SeverityMedium, internal.Severity)

		tampering := find(threats, "flow-1", domain.StrideTampering)
		require.NotNil(t, tampering)
		assert.Equal(t, domain.SeverityHigh, tampering.Severity)
	})

	t.Run("dangling flow endpoints use the raw id", func(t *testing.T) {
		m := testModel()
		m.DataFlows = []domain.DataFlow{{ID: "flow-9", From: "process-1", To: "ghost-1"}}
		threats := New().Analyze(m)

		f := find(threats, "flow-9", domain.StrideTampering)
		require.NotNil(t, f)
		assert.Equal(t, "Tampering with data flow between API and ghost-1", f.Title)
	})

	t.Run("generated ids", func(t *testing.T) {
		pattern := regexp.MustCompile(`^threat-[0-9a-f]{8}$`)
		for _, th := range New().Analyze(testModel()) {
			assert.Regexp(t, pattern, th.ID)
		}
	})

	t.Run("nil model", func(t *testing.T) {
		assert.Nil(t, New().Analyze(nil))
	})

	t.Run("custom rules", func(t *testing.T) {
		rules := []Rule{{
			Category: domain.StrideRepudiation,
			Flow:     true,
			Title:    "{source} -> {target}",
			Severity: domain.SeverityLow,
		}}
		threats := New(WithRules(rules)).Analyze(testModel())
		require.Len(t, threats, 2)
		assert.Equal(t, domain.SeverityMedium, threats[0].Severity)
		assert.Equal(t, domain.SeverityLow, threats[1].Severity)
		assert.Equal(t, "API -> Ledger", threats[1].Title)
	})
}

func TestCrossesBoundary(t *testing.T) {
	m := testModel()
	assert.True(t, CrossesBoundary(m, "external-1", "process-1"))
	assert.False(t, CrossesBoundary(m, "process-1", "data-store-1"))
	assert.False(t, CrossesBoundary(m, "external-1", "ghost-1"))
}
