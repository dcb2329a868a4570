package experiment

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/growth-cli/internal/model"
	"github.com/sells-group/growth-cli/internal/schema"
)

var tenant = model.TenantContext{TenantID: "acme", ProjectID: "web"}

func metrics() *model.FunnelMetrics {
	return &model.FunnelMetrics{
		TenantID:   "acme",
		ProjectID:  "web",
		FunnelName: "checkout",
		ComputedAt: "2024-02-01T00:00:00.000Z",
		TotalUsers: 100,
		Steps: []model.FunnelStep{
			{Name: "visit", Users: 100, ConversionRate: 1},
			{Name: "signup", Users: 50, ConversionRate: 0.5, DropOffCount: 50, DropOffRate: 0.5},
			{Name: "checkout", Users: 40, ConversionRate: 0.4, DropOffCount: 10, DropOffRate: 0.2},
			{Name: "purchase", Users: 30, ConversionRate: 0.3, DropOffCount: 10, DropOffRate: 0.25},
		},
		OverallConversionRate: 0.3,
		PeriodStart:           "2024-01-01T00:00:00.000Z",
		PeriodEnd:             "2024-01-03T00:00:00.000Z",
	}
}

func TestProposeExperiments_RanksByDropOff(t *testing.T) {
	got := ProposeExperiments(Options{Tenant: tenant, FunnelMetrics: metrics()})

	require.Len(t, got, DefaultMaxProposals)
	assert.Equal(t, []string{"signup", "purchase", "checkout"}, []string{got[0].TargetStep, got[1].TargetStep, got[2].TargetStep})

	first := got[0]
	assert.Equal(t, "Shorter signup form", first.Name)
	assert.Equal(t, "signup_completion_rate", first.PrimaryMetric)
	assert.Contains(t, first.Hypothesis, "50.0%")
	assert.InDelta(t, 0.5, first.BaselineRate, 1e-9)
	assert.Equal(t, 1600, first.SampleSizePerVariant)
	require.NotNil(t, first.EstimatedDurationDays)
	assert.Equal(t, 64, *first.EstimatedDurationDays)
	assert.Equal(t, "control", first.Variants[0].Name)
	assert.Equal(t, "acme", first.TenantID)

	assert.Equal(t, "purchase_conversion_rate", got[1].PrimaryMetric)
	assert.Equal(t, 400, got[2].SampleSizePerVariant)

	for _, p := range got {
		assert.NoError(t, schema.ValidateExperimentProposal(p), p.ProposalID)
		assert.Regexp(t, `^exp-[0-9a-f]{12}$`, p.ProposalID)
	}
	assert.NotEqual(t, got[0].ProposalID, got[1].ProposalID)
}

func TestProposeExperiments_Deterministic(t *testing.T) {
	a := ProposeExperiments(Options{Tenant: tenant, FunnelMetrics: metrics(), MaxProposals: 2})
	b := ProposeExperiments(Options{Tenant: tenant, FunnelMetrics: metrics(), MaxProposals: 2})
	require.Len(t, a, 2)
	assert.Equal(t, a, b)
}

func TestProposeExperiments_FallbackWithoutDropOff(t *testing.T) {
	m := &model.FunnelMetrics{
		FunnelName:            "flat",
		Steps:                 []model.FunnelStep{{Name: "a", Users: 10, ConversionRate: 1}, {Name: "b", Users: 10, ConversionRate: 1}},
		OverallConversionRate: 1,
	}

	got := ProposeExperiments(Options{Tenant: tenant, FunnelMetrics: m})
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].TargetStep)
	assert.Equal(t, "step_conversion_rate", got[0].PrimaryMetric)
	assert.InDelta(t, 0.99, got[0].BaselineRate, 1e-9)
	assert.Nil(t, got[0].EstimatedDurationDays)
	assert.NoError(t, schema.ValidateExperimentProposal(got[0]))
}

func TestProposeExperiments_NilMetricsStillProposes(t *testing.T) {
	got := ProposeExperiments(Options{Tenant: tenant})
	require.Len(t, got, 1)
	assert.Equal(t, "entry", got[0].TargetStep)
}

func TestProposeExperiments_CapsMaxProposals(t *testing.T) {
	m := &model.FunnelMetrics{FunnelName: "long"}
	users := 1000
	for i := 0; i < 15; i++ {
		s := model.FunnelStep{Name: fmt.Sprintf("step_%02d", i), Users: users}
		if i > 0 {
			s.DropOffRate = 0.1
		}
		m.Steps = append(m.Steps, s)
		users -= 10
	}

	got := ProposeExperiments(Options{Tenant: tenant, FunnelMetrics: m, MaxProposals: 50})
	assert.Len(t, got, MaxProposals)
	assert.Equal(t, "step_01", got[0].TargetStep, "ties keep step order")
}

func TestProposer_Defaults(t *testing.T) {
	p := NewProposer(1, 0.2)
	got := p.ProposeExperiments(Options{Tenant: tenant, FunnelMetrics: metrics()})
	require.Len(t, got, 1)
	assert.InDelta(t, 0.2, got[0].MinimumDetectableEffect, 1e-9)
	assert.Equal(t, 400, got[0].SampleSizePerVariant)
}

func TestSampleSize(t *testing.T) {
	assert.Equal(t, 1600, SampleSize(0.5, 0.1))
	assert.Equal(t, 400, SampleSize(0.5, 0.2))
	assert.Equal(t, 4800, SampleSize(0.25, 0.1))
	assert.Equal(t, SampleSize(0.01, 0.1), SampleSize(0, 0.1), "baseline is clamped")
}

func TestMatch(t *testing.T) {
	tests := map[string]string{
		"SignUp_Complete":  "signup_form",
		"checkout":         "checkout_trust",
		"view_pricing":     "pricing_clarity",
		"onboarding_done":  "guided_onboarding",
		"add_to_cart":      "cart_reminder",
		"newsletter_click": "cta_emphasis",
	}
	for step, key := range tests {
		assert.Equal(t, key, match(step).key, step)
	}
}
