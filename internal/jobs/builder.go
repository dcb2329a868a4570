// Package jobs builds job request envelopes for the external job system.
// Every request it builds has auto_execute=false and require_approval=true.
// Payloads carry no timestamps or random ids, so idempotency keys depend
// only on what was analyzed.
package jobs

import (
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/growth-cli/internal/cost"
	"github.com/sells-group/growth-cli/internal/model"
)

// Config configures a Builder.
type Config struct {
	Rates           cost.Rates
	DefaultPriority model.Priority
	DeadlineHours   int
	Now             func() time.Time
	NewID           func() string
}

// Builder constructs job requests.
type Builder struct {
	costs    *cost.Calculator
	priority model.Priority
	deadline time.Duration
	now      func() time.Time
	newID    func() string
}

// NewBuilder creates a Builder. Zero-valued fields fall back to defaults.
func NewBuilder(cfg Config) *Builder {
	b := &Builder{
		costs:    cost.NewCalculator(cfg.Rates),
		priority: cfg.DefaultPriority,
		deadline: time.Duration(cfg.DeadlineHours) * time.Hour,
		now:      cfg.Now,
		newID:    cfg.NewID,
	}
	if cfg.Rates.Jobs == nil {
		b.costs = cost.NewCalculator(cost.DefaultRates())
	}
	if b.priority == "" {
		b.priority = model.PriorityNormal
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.newID == nil {
		b.newID = func() string { return "job-" + uuid.NewString() }
	}
	return b
}

func (b *Builder) base(tc model.TenantContext, jobType model.JobType, units int, payload map[string]any, jctx model.JobContext) model.JobRequest {
	now := b.now()
	maxCost := b.costs.Cap(string(jobType), units)
	r := model.JobRequest{
		TenantID:  tc.TenantID,
		ProjectID: tc.ProjectID,
		ID:        b.newID(),
		CreatedAt: model.FormatTime(now),
		JobType:   jobType,
		Payload:   payload,
		Priority:  b.priority,
		Context:   jctx,
		Constraints: model.JobConstraints{
			AutoExecute:     false,
			RequireApproval: true,
			MaxCostUSD:      &maxCost,
		},
	}
	if b.deadline > 0 {
		r.Constraints.Deadline = model.FormatTime(now.Add(b.deadline))
	}
	return r
}

// SEOScan builds a request to re-run the site scan. audit may be nil when
// the scan has not run locally.
func (b *Builder) SEOScan(tc model.TenantContext, req model.SEOScanRequest, audit *model.SEOAudit, triggeredBy string) model.JobRequest {
	payload := map[string]any{
		"source_path": req.SourcePath,
		"source_type": string(req.SourceType),
	}
	jctx := model.JobContext{TriggeredBy: triggeredBy}
	units := 0
	if audit != nil {
		payload["pages_scanned"] = audit.PagesScanned
		payload["findings_total"] = audit.Summary.Total
		payload["critical"] = audit.Summary.Critical
		jctx.RelatedAuditID = audit.AuditID
		units = audit.PagesScanned
	}
	r := b.base(tc, model.JobTypeSEOScan, units, payload, jctx)
	if audit != nil && audit.HasCritical() {
		r.Priority = model.PriorityHigh
	}
	return r
}

// ExperimentPropose builds a request to generate experiment proposals from
// funnel metrics.
func (b *Builder) ExperimentPropose(tc model.TenantContext, m *model.FunnelMetrics, triggeredBy string) model.JobRequest {
	steps := make([]string, len(m.Steps))
	for i, s := range m.Steps {
		steps[i] = s.Name
	}
	var biggest any
	if m.BiggestDropOffStep != nil {
		biggest = *m.BiggestDropOffStep
	}
	payload := map[string]any{
		"funnel_name":             m.FunnelName,
		"steps":                   steps,
		"biggest_drop_off_step":   biggest,
		"overall_conversion_rate": m.OverallConversionRate,
		"total_users":             m.TotalUsers,
	}
	return b.base(tc, model.JobTypeExperimentPropose, len(m.Steps), payload, model.JobContext{TriggeredBy: triggeredBy})
}

// ContentDraft builds a request to draft copy with the same parameters.
func (b *Builder) ContentDraft(tc model.TenantContext, req model.ContentDraftRequest, triggeredBy string) model.JobRequest {
	keywords := req.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	payload := map[string]any{
		"profile":       req.Profile,
		"content_type":  string(req.ContentType),
		"goal":          req.Goal,
		"keywords":      keywords,
		"variant_count": req.VariantCount,
		"llm_provider":  req.LLMProvider,
	}
	return b.base(tc, model.JobTypeContentDraft, req.VariantCount, payload, model.JobContext{TriggeredBy: triggeredBy})
}

// ExperimentRun builds an action request to launch a proposed experiment.
// Executing it requires a policy token.
func (b *Builder) ExperimentRun(tc model.TenantContext, p model.ExperimentProposal, triggeredBy string) model.JobRequest {
	variants := make([]string, len(p.Variants))
	for i, v := range p.Variants {
		variants[i] = v.Name
	}
	payload := map[string]any{
		"proposal_id":             p.ProposalID,
		"name":                    p.Name,
		"target_step":             p.TargetStep,
		"primary_metric":          p.PrimaryMetric,
		"variants":                variants,
		"sample_size_per_variant": p.SampleSizePerVariant,
	}
	return b.base(tc, model.JobTypeExperimentRun, 0, payload, model.JobContext{
		TriggeredBy: triggeredBy,
		Notes:       "action job: execution requires a policy token",
	})
}

// PublishContent builds an action request to publish a drafted piece.
// Executing it requires a policy token.
func (b *Builder) PublishContent(tc model.TenantContext, d model.ContentDraft, triggeredBy string) model.JobRequest {
	ids := make([]string, len(d.Variants))
	for i, v := range d.Variants {
		ids[i] = v.VariantID
	}
	payload := map[string]any{
		"draft_id":     d.DraftID,
		"profile":      d.ProfileName,
		"content_type": string(d.ContentType),
		"variant_ids":  ids,
	}
	return b.base(tc, model.JobTypePublishContent, len(d.Variants), payload, model.JobContext{
		TriggeredBy: triggeredBy,
		Notes:       "action job: execution requires a policy token",
	})
}
