// Package experiment proposes A/B tests from funnel metrics.
package experiment

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sells-group/growth-cli/internal/canonical"
	"github.com/sells-group/growth-cli/internal/model"
)

// Proposal limits.
const (
	DefaultMaxProposals = 3
	MaxProposals        = model.MaxExperimentProposals
	DefaultMDE          = 0.1
)

// Options configures one proposal run.
type Options struct {
	Tenant        model.TenantContext
	FunnelMetrics *model.FunnelMetrics
	MaxProposals  int
	// MDE is the relative minimum detectable effect, e.g. 0.1 for a 10% lift.
	MDE float64
}

// Proposer generates experiment proposals.
type Proposer struct {
	defaultMax int
	mde        float64
}

// NewProposer creates a Proposer. Zero values use the package defaults.
func NewProposer(defaultMax int, mde float64) *Proposer {
	if defaultMax <= 0 {
		defaultMax = DefaultMaxProposals
	}
	if mde <= 0 || mde >= 1 {
		mde = DefaultMDE
	}
	return &Proposer{defaultMax: defaultMax, mde: mde}
}

// ProposeExperiments implements the package function with the proposer's
// defaults filled in.
func (p *Proposer) ProposeExperiments(opts Options) []model.ExperimentProposal {
	if opts.MaxProposals <= 0 {
		opts.MaxProposals = p.defaultMax
	}
	if opts.MDE <= 0 {
		opts.MDE = p.mde
	}
	return ProposeExperiments(opts)
}

type candidate struct {
	index int
	step  model.FunnelStep
}

// ProposeExperiments never fails: steps that lose users are proposed in
// order of drop-off rate, and a funnel without drop-off gets one fallback
// proposal for its first step.
func ProposeExperiments(opts Options) []model.ExperimentProposal {
	limit := opts.MaxProposals
	if limit <= 0 {
		limit = DefaultMaxProposals
	}
	if limit > MaxProposals {
		limit = MaxProposals
	}
	mde := opts.MDE
	if mde <= 0 || mde >= 1 {
		mde = DefaultMDE
	}

	m := opts.FunnelMetrics
	if m == nil {
		m = &model.FunnelMetrics{}
	}

	var cands []candidate
	for i, s := range m.Steps {
		if s.DropOffRate > 0 {
			cands = append(cands, candidate{index: i, step: s})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].step.DropOffRate > cands[j].step.DropOffRate
	})

	out := make([]model.ExperimentProposal, 0, limit)
	for _, c := range cands {
		if len(out) == limit {
			break
		}
		baseline := 1 - c.step.DropOffRate
		out = append(out, build(opts.Tenant, m, c.index, match(c.step.Name), baseline, mde))
	}
	if len(out) == 0 {
		baseline := m.OverallConversionRate
		out = append(out, build(opts.Tenant, m, 0, genericTemplate, baseline, mde))
	}
	return out
}

func build(tc model.TenantContext, m *model.FunnelMetrics, index int, t template, baseline, mde float64) model.ExperimentProposal {
	step := model.FunnelStep{Name: "entry"}
	if index < len(m.Steps) {
		step = m.Steps[index]
	}
	baseline = clamp(baseline)
	name, hypothesis := t.render(step.Name, step.DropOffRate)
	sample := SampleSize(baseline, mde)

	p := model.ExperimentProposal{
		TenantID:                tc.TenantID,
		ProjectID:               tc.ProjectID,
		ProposalID:              proposalID(m.FunnelName, step.Name, t.key),
		Name:                    name,
		Hypothesis:              hypothesis,
		TargetStep:              step.Name,
		PrimaryMetric:           t.metric,
		Variants:                []model.ExperimentVariant{control, t.treatment},
		BaselineRate:            round4(baseline),
		MinimumDetectableEffect: mde,
		SampleSizePerVariant:    sample,
		Evidence: []model.EvidenceLink{
			{
				Type:        model.EvidenceJSONPath,
				Path:        fmt.Sprintf("steps[%d].drop_off_rate", index),
				Description: "drop-off rate at " + step.Name,
				Value:       step.DropOffRate,
			},
			{
				Type:        model.EvidenceCalculation,
				Path:        "sample_size_per_variant",
				Description: "ceil(16 * p * (1 - p) / (p * mde)^2)",
				Value:       sample,
			},
			{
				Type:        model.EvidenceAssumption,
				Path:        "minimum_detectable_effect",
				Description: "relative lift the test is powered to detect",
				Value:       mde,
			},
		},
	}
	if index > 0 && index < len(m.Steps) {
		p.EstimatedDurationDays = durationDays(m, m.Steps[index-1].Users, sample)
	}
	return p
}

// SampleSize is the per-variant sample for baseline rate p and relative
// minimum detectable effect mde (80% power, 5% significance).
func SampleSize(p, mde float64) int {
	p = clamp(p)
	delta := p * mde
	return int(math.Ceil(16 * p * (1 - p) / (delta * delta)))
}

// durationDays estimates how long two variants take to collect sample
// users each, given the traffic entering the step over the metrics period.
func durationDays(m *model.FunnelMetrics, users, sample int) *int {
	if m.PeriodStart == "" || m.PeriodEnd == "" || users <= 0 {
		return nil
	}
	start, err1 := time.Parse(time.RFC3339Nano, m.PeriodStart)
	end, err2 := time.Parse(time.RFC3339Nano, m.PeriodEnd)
	if err1 != nil || err2 != nil || end.Before(start) {
		return nil
	}
	days := math.Max(1, math.Ceil(end.Sub(start).Hours()/24))
	daily := float64(users) / days
	d := int(math.Ceil(float64(2*sample) / daily))
	if d < 1 {
		d = 1
	}
	return &d
}

func proposalID(funnel, step, key string) string {
	// A map of strings always encodes.
	h, _ := canonical.StableHash(map[string]any{
		"funnel_name": funnel,
		"target_step": step,
		"template":    key,
	})
	return "exp-" + h[:12]
}

func clamp(p float64) float64 {
	if math.IsNaN(p) || p < 0.01 {
		return 0.01
	}
	if p > 0.99 {
		return 0.99
	}
	return p
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
