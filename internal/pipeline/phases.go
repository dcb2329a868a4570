package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/growth-cli/internal/apperr"
	"github.com/sells-group/growth-cli/internal/content"
	"github.com/sells-group/growth-cli/internal/experiment"
	"github.com/sells-group/growth-cli/internal/funnel"
	"github.com/sells-group/growth-cli/internal/model"
	"github.com/sells-group/growth-cli/internal/schema"
)

// TriggeredBy is the context.triggered_by of requests built by Analyze.
const TriggeredBy = "analyze"

const (
	maxSEOEvidence        = 3
	maxExperimentEvidence = 2
)

// seoPhase uses the supplied audit, or scans the site when only a scan
// request was given. A scan request always yields a seo_scan job.
func (p *Pipeline) seoPhase(ctx context.Context, r *run, in model.AnalyzeInput, st State) (State, error) {
	if in.SEOAudit == nil && in.SEOScan == nil {
		return st, nil
	}

	var audit *model.SEOAudit
	if in.SEOAudit != nil {
		if err := r.checkOwner("seo_audit", in.SEOAudit.TenantID, in.SEOAudit.ProjectID); err != nil {
			return st, err
		}
		a := *in.SEOAudit
		audit = &a
	} else {
		scanned, err := p.scanner.ScanSite(ctx, r.tenant, in.SEOScan.SourceType, r.resolve(in.SEOScan.SourcePath))
		if err != nil {
			return st, err
		}
		audit = scanned
	}
	st.Audit = audit

	related := []model.JobType{}
	if in.SEOScan != nil {
		related = append(related, model.JobTypeSEOScan)
	}

	severity := model.SeverityWarning
	if audit.HasCritical() {
		severity = model.SeverityCritical
	}
	sum := seoCounts(audit.Findings)
	st = st.withFinding(r, model.Finding{
		Title:           fmt.Sprintf("SEO audit found %d issues across %d pages", len(audit.Findings), audit.PagesScanned),
		Description:     fmt.Sprintf("%d critical, %d warning and %d info issues in %s.", sum.Critical, sum.Warning, sum.Info, audit.SourcePath),
		Severity:        severity,
		Evidence:        seoEvidence(audit.Findings),
		RelatedJobTypes: related,
	})

	if in.SEOScan != nil {
		st = st.withRequest(r, r.builder.SEOScan(r.tenant, *in.SEOScan, audit, TriggeredBy))
	}
	return st, nil
}

// checkOwner rejects a supplied artifact that belongs to another
// tenant or project than the run.
func (r *run) checkOwner(path, tenantID, projectID string) error {
	if tenantID == r.tenant.TenantID && projectID == r.tenant.ProjectID {
		return nil
	}
	return apperr.Validation("input belongs to another tenant", apperr.Issue{
		Path: path,
		Message: fmt.Sprintf("artifact is for %s/%s, run is for %s/%s",
			tenantID, projectID, r.tenant.TenantID, r.tenant.ProjectID),
	})
}

func seoCounts(findings []model.SEOFinding) model.SEOSummary {
	var s model.SEOSummary
	for _, f := range findings {
		switch f.Severity {
		case model.AuditCritical:
			s.Critical++
		case model.AuditWarning:
			s.Warning++
		default:
			s.Info++
		}
	}
	s.Total = len(findings)
	return s
}

var auditRank = map[model.AuditSeverity]int{
	model.AuditCritical: 0,
	model.AuditWarning:  1,
	model.AuditInfo:     2,
}

// seoEvidence samples the most severe issues, keeping audit order within a
// severity.
func seoEvidence(findings []model.SEOFinding) []model.EvidenceLink {
	sorted := make([]model.SEOFinding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return auditRank[sorted[i].Severity] < auditRank[sorted[j].Severity]
	})
	if len(sorted) > maxSEOEvidence {
		sorted = sorted[:maxSEOEvidence]
	}
	out := make([]model.EvidenceLink, 0, len(sorted))
	for _, f := range sorted {
		path := f.Page
		if f.Element != "" {
			path = f.Page + " " + f.Element
		}
		out = append(out, model.EvidenceLink{
			Type:        model.EvidenceHTMLElement,
			Path:        path,
			Description: f.Message,
			Value:       f.Rule,
		})
	}
	return out
}

// funnelPhase uses the supplied metrics or computes them from events, then
// asks for experiment proposals. The metrics stay in the state for the
// experiments phase.
func (p *Pipeline) funnelPhase(ctx context.Context, r *run, in model.AnalyzeInput, st State) (State, error) {
	if in.FunnelMetrics == nil && in.FunnelAnalysis == nil {
		return st, nil
	}

	var m *model.FunnelMetrics
	if in.FunnelMetrics != nil {
		if err := r.checkOwner("funnel_metrics", in.FunnelMetrics.TenantID, in.FunnelMetrics.ProjectID); err != nil {
			return st, err
		}
		cp := *in.FunnelMetrics
		m = &cp
	} else {
		fa := in.FunnelAnalysis
		computed, err := p.funnel.AnalyzeFunnel(ctx, r.tenant, r.resolve(fa.SourceFile), fa.FunnelName, fa.Steps)
		if err != nil {
			return st, err
		}
		m = computed
	}
	if m.BiggestDropOffStep == nil {
		m.BiggestDropOffStep = funnel.BiggestDropOff(m.Steps)
	}
	st.Metrics = m

	st = st.withFinding(r, funnelFinding(m))
	st = st.withRequest(r, r.builder.ExperimentPropose(r.tenant, m, TriggeredBy))
	return st, nil
}

func funnelFinding(m *model.FunnelMetrics) model.Finding {
	overall := model.EvidenceLink{
		Type:        model.EvidenceCalculation,
		Path:        "overall_conversion_rate",
		Description: fmt.Sprintf("%d users entered funnel %q", m.TotalUsers, m.FunnelName),
		Value:       m.OverallConversionRate,
	}
	related := []model.JobType{model.JobTypeExperimentPropose}

	if m.BiggestDropOffStep == nil {
		return model.Finding{
			Title:           "No significant funnel drop-off",
			Description:     fmt.Sprintf("No step of funnel %q loses users; overall conversion is %.1f%%.", m.FunnelName, m.OverallConversionRate*100),
			Severity:        model.SeverityInfo,
			Evidence:        []model.EvidenceLink{overall},
			RelatedJobTypes: related,
		}
	}

	name := *m.BiggestDropOffStep
	var step model.FunnelStep
	idx := -1
	for i, s := range m.Steps {
		if s.Name == name {
			step, idx = s, i
			break
		}
	}
	ev := []model.EvidenceLink{}
	if idx >= 0 {
		ev = append(ev, model.EvidenceLink{
			Type:        model.EvidenceJSONPath,
			Path:        fmt.Sprintf("steps[%d].drop_off_rate", idx),
			Description: fmt.Sprintf("%d users dropped before %q", step.DropOffCount, name),
			Value:       step.DropOffRate,
		})
	}
	ev = append(ev, overall)
	return model.Finding{
		Title:           fmt.Sprintf("Biggest funnel drop-off at %q (%.1f%%)", name, step.DropOffRate*100),
		Description:     fmt.Sprintf("%d users (%.1f%%) are lost before step %q of funnel %q.", step.DropOffCount, step.DropOffRate*100, name, m.FunnelName),
		Severity:        model.SeverityWarning,
		Evidence:        ev,
		RelatedJobTypes: related,
	}
}

// experimentsPhase proposes experiments from a metrics file, or from the
// funnel phase when no file is named. It emits no job: experiment_run
// requests are built by callers holding a proposal.
func (p *Pipeline) experimentsPhase(_ context.Context, r *run, in model.AnalyzeInput, st State) (State, error) {
	req := in.ExperimentProposals
	if req == nil {
		return st, nil
	}

	m := st.Metrics
	if req.FunnelMetricsPath != "" {
		path := r.resolve(req.FunnelMetricsPath)
		data, err := p.readFile(path)
		if err != nil {
			return st, apperr.Dependency(eris.Wrapf(err, "pipeline: read funnel metrics %s", req.FunnelMetricsPath), path)
		}
		parsed, err := schema.ParseFunnelMetrics(data)
		if err != nil {
			return st, err
		}
		if err := r.checkOwner("experiment_proposals.funnel_metrics_path", parsed.TenantID, parsed.ProjectID); err != nil {
			return st, err
		}
		m = parsed
	}
	if m == nil {
		return st, nil
	}

	limit := req.MaxProposals
	if limit == 0 {
		limit = r.maxProp
	}
	proposals := p.proposer.ProposeExperiments(experiment.Options{
		Tenant:        r.tenant,
		FunnelMetrics: m,
		MaxProposals:  limit,
	})
	if len(proposals) == 0 {
		return st, nil
	}
	st.Proposals = proposals

	ev := make([]model.EvidenceLink, 0, maxExperimentEvidence)
	for i, prop := range proposals {
		if i == maxExperimentEvidence {
			break
		}
		ev = append(ev, model.EvidenceLink{
			Type:        model.EvidenceJSONPath,
			Path:        fmt.Sprintf("experiment_proposals[%d]", i),
			Description: prop.Hypothesis,
			Value:       prop.ProposalID,
		})
	}
	st = st.withFinding(r, model.Finding{
		Title:           fmt.Sprintf("%d experiment proposals for funnel %q", len(proposals), m.FunnelName),
		Description:     fmt.Sprintf("Top proposal %q targets step %q with %d users per variant.", proposals[0].Name, proposals[0].TargetStep, proposals[0].SampleSizePerVariant),
		Severity:        model.SeverityOpportunity,
		Evidence:        ev,
		RelatedJobTypes: []model.JobType{model.JobTypeExperimentRun},
	})
	return st, nil
}

// contentPhase drafts copy and asks for the same draft as a job.
func (p *Pipeline) contentPhase(ctx context.Context, r *run, in model.AnalyzeInput, st State) (State, error) {
	req := in.ContentDraft
	if req == nil {
		return st, nil
	}

	draft, err := p.drafter.DraftContent(ctx, content.Options{
		Tenant:         r.tenant,
		ProfileName:    req.Profile,
		ContentType:    req.ContentType,
		Goal:           req.Goal,
		Keywords:       req.Keywords,
		Features:       req.Features,
		TargetAudience: req.TargetAudience,
		LLMProvider:    req.LLMProvider,
		VariantCount:   req.VariantCount,
	})
	if err != nil {
		return st, err
	}
	st.Draft = draft

	st = st.withFinding(r, model.Finding{
		Title:       fmt.Sprintf("Drafted %d %s variants with profile %q", len(draft.Variants), draft.ContentType, draft.ProfileName),
		Description: fmt.Sprintf("Templated copy for goal %q is ready for review.", draft.Goal),
		Severity:    model.SeverityInfo,
		Evidence: []model.EvidenceLink{{
			Type:        model.EvidenceJSONPath,
			Path:        "content_draft.variants",
			Description: fmt.Sprintf("draft %s", draft.DraftID),
			Value:       len(draft.Variants),
		}},
		RelatedJobTypes: []model.JobType{model.JobTypeContentDraft, model.JobTypePublishContent},
	})
	// The job asks for the provider the draft actually used.
	jobReq := *req
	jobReq.LLMProvider = draft.LLMProvider
	st = st.withRequest(r, r.builder.ContentDraft(r.tenant, jobReq, TriggeredBy))
	return st, nil
}

// Recommend adds one recommendation per request, in request order.
func Recommend(r *run, st State) State {
	recs := make([]model.Recommendation, 0, len(st.Requests))
	for _, req := range st.Requests {
		title, desc := describeRequest(req)
		recs = append(recs, model.Recommendation{
			ID:                  "recommendation-" + r.newID(),
			Title:               title,
			Description:         desc,
			JobType:             req.JobType,
			RequiresPolicyToken: req.JobType.IsAction(),
		})
	}
	st.Recommendations = recs
	return st
}

func describeRequest(req model.JobRequest) (title, description string) {
	pl := req.Payload
	switch req.JobType {
	case model.JobTypeSEOScan:
		return "Re-scan the site after fixes",
			fmt.Sprintf("Submit a SEO scan of %v to confirm the reported issues are resolved.", pl["source_path"])
	case model.JobTypeExperimentPropose:
		return "Generate experiment proposals",
			fmt.Sprintf("Submit an experiment proposal job for funnel %v.", pl["funnel_name"])
	case model.JobTypeContentDraft:
		return "Draft content for review",
			fmt.Sprintf("Submit a %v draft with profile %v for approval.", pl["content_type"], pl["profile"])
	case model.JobTypeExperimentRun:
		return "Launch the proposed experiment",
			fmt.Sprintf("Run experiment %v once a policy token is granted.", pl["name"])
	case model.JobTypePublishContent:
		return "Publish the drafted content",
			fmt.Sprintf("Publish draft %v once a policy token is granted.", pl["draft_id"])
	}
	return string(req.JobType), "Submit the job for approval."
}
