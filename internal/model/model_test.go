package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobType_Classification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		jobType JobType
		known   bool
		action  bool
	}{
		{JobTypeSEOScan, true, false},
		{JobTypeExperimentPropose, true, false},
		{JobTypeContentDraft, true, false},
		{JobTypeExperimentRun, true, true},
		{JobTypePublishContent, true, true},
		{"autopilot.growth.delete_site", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.jobType), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.known, tt.jobType.IsKnown())
			assert.Equal(t, tt.action, tt.jobType.IsAction())
		})
	}
}

func TestActionJobTypes_AreKnown(t *testing.T) {
	t.Parallel()
	for _, jt := range ActionJobTypes() {
		assert.True(t, jt.IsKnown(), jt)
	}
	assert.Len(t, KnownJobTypes(), 5)
}

func TestAnalyzeInput_Sections(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		in := &AnalyzeInput{TenantID: "acme"}
		assert.Empty(t, in.Sections())
	})

	t.Run("sorted", func(t *testing.T) {
		t.Parallel()
		in := &AnalyzeInput{
			SEOScan:             &SEOScanRequest{SourcePath: "site"},
			ContentDraft:        &ContentDraftRequest{Profile: "acme"},
			FunnelMetrics:       &FunnelMetrics{},
			ExperimentProposals: &ExperimentProposalsRequest{},
		}
		assert.Equal(t, []string{"content_draft", "experiment_proposals", "funnel_metrics", "seo_scan"}, in.Sections())
	})
}

func TestFormatTime(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("EST", -5*60*60)
	ts := time.Date(2024, 5, 1, 7, 30, 0, 123456789, loc)
	assert.Equal(t, "2024-05-01T12:30:00.123Z", FormatTime(ts))
}

func TestFunnelMetrics_Step(t *testing.T) {
	t.Parallel()
	m := &FunnelMetrics{Steps: []FunnelStep{{Name: "visit", Users: 10}, {Name: "signup", Users: 4}}}

	s := m.Step("signup")
	require.NotNil(t, s)
	assert.Equal(t, 4, s.Users)
	assert.Nil(t, m.Step("purchase"))
}

func TestSEOAudit_HasCritical(t *testing.T) {
	t.Parallel()
	a := &SEOAudit{Findings: []SEOFinding{{Severity: AuditWarning}, {Severity: AuditInfo}}}
	assert.False(t, a.HasCritical())

	a.Findings = append(a.Findings, SEOFinding{Severity: AuditCritical})
	assert.True(t, a.HasCritical())
}
