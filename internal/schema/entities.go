package schema

import (
	"github.com/sells-group/growth-cli/internal/model"
)

// ValidateTenantContext checks both ids are present and well formed.
func ValidateTenantContext(tc model.TenantContext) error {
	var c checker
	c.tenant("", tc)
	return c.err("invalid tenant context")
}

// ValidateEvidenceLink checks a single evidence link.
func ValidateEvidenceLink(e model.EvidenceLink) error {
	var c checker
	c.evidence("", e)
	return c.err("invalid evidence link")
}

func (c *checker) finding(prefix string, f model.Finding) {
	c.required(join(prefix, "id"), f.ID)
	c.required(join(prefix, "title"), f.Title)
	c.required(join(prefix, "description"), f.Description)
	oneOf(c, join(prefix, "severity"), f.Severity, model.Severities())
	c.evidenceList(join(prefix, "evidence"), f.Evidence)
	for i, jt := range f.RelatedJobTypes {
		if !jobTypePattern.MatchString(string(jt)) {
			c.add(idx(join(prefix, "related_job_types"), i), "invalid job type %q", string(jt))
		}
	}
}

// ValidateFinding checks a report finding.
func ValidateFinding(f model.Finding) error {
	var c checker
	c.finding("", f)
	return c.err("invalid finding")
}

func (c *checker) recommendation(prefix string, r model.Recommendation) {
	c.required(join(prefix, "id"), r.ID)
	c.required(join(prefix, "title"), r.Title)
	c.required(join(prefix, "description"), r.Description)
	if r.JobType != "" && !jobTypePattern.MatchString(string(r.JobType)) {
		c.add(join(prefix, "job_type"), "invalid job type %q", string(r.JobType))
	}
	if r.JobType.IsAction() && !r.RequiresPolicyToken {
		c.add(join(prefix, "requires_policy_token"), "must be true for action job type %s", r.JobType)
	}
}

// ValidateRecommendation checks a report recommendation.
func ValidateRecommendation(r model.Recommendation) error {
	var c checker
	c.recommendation("", r)
	return c.err("invalid recommendation")
}

func (c *checker) seoAudit(prefix string, a model.SEOAudit) {
	c.tenant(prefix, model.TenantContext{TenantID: a.TenantID, ProjectID: a.ProjectID})
	c.required(join(prefix, "audit_id"), a.AuditID)
	c.timestamp(join(prefix, "scanned_at"), a.ScannedAt)
	oneOf(c, join(prefix, "source_type"), a.SourceType, model.SEOSourceTypes())
	c.required(join(prefix, "source_path"), a.SourcePath)
	c.nonNegative(join(prefix, "pages_scanned"), a.PagesScanned)

	var counts model.SEOSummary
	for i, f := range a.Findings {
		p := idx(join(prefix, "findings"), i)
		c.required(join(p, "id"), f.ID)
		c.required(join(p, "rule"), f.Rule)
		c.required(join(p, "page"), f.Page)
		c.required(join(p, "message"), f.Message)
		oneOf(c, join(p, "severity"), f.Severity, []model.AuditSeverity{model.AuditCritical, model.AuditWarning, model.AuditInfo})
		switch f.Severity {
		case model.AuditCritical:
			counts.Critical++
		case model.AuditWarning:
			counts.Warning++
		case model.AuditInfo:
			counts.Info++
		}
	}
	counts.Total = len(a.Findings)
	if a.Summary != counts {
		c.add(join(prefix, "summary"), "counts %+v do not match findings %+v", a.Summary, counts)
	}
}

// ValidateSEOAudit checks a scanner result, including that the summary
// counts agree with the findings.
func ValidateSEOAudit(a model.SEOAudit) error {
	var c checker
	c.seoAudit("", a)
	return c.err("invalid seo audit")
}

func (c *checker) funnelMetrics(prefix string, m model.FunnelMetrics) {
	c.tenant(prefix, model.TenantContext{TenantID: m.TenantID, ProjectID: m.ProjectID})
	c.required(join(prefix, "funnel_name"), m.FunnelName)
	c.timestamp(join(prefix, "computed_at"), m.ComputedAt)
	c.nonNegative(join(prefix, "total_users"), m.TotalUsers)
	c.rate(join(prefix, "overall_conversion_rate"), m.OverallConversionRate)
	if len(m.Steps) == 0 {
		c.add(join(prefix, "steps"), "must contain at least one step")
	}
	seen := make(map[string]bool, len(m.Steps))
	for i, s := range m.Steps {
		p := idx(join(prefix, "steps"), i)
		if c.required(join(p, "name"), s.Name) {
			if seen[s.Name] {
				c.add(join(p, "name"), "duplicate step %q", s.Name)
			}
			seen[s.Name] = true
		}
		c.nonNegative(join(p, "users"), s.Users)
		c.nonNegative(join(p, "drop_off_count"), s.DropOffCount)
		c.rate(join(p, "conversion_rate"), s.ConversionRate)
		c.rate(join(p, "drop_off_rate"), s.DropOffRate)
	}
	if m.BiggestDropOffStep != nil && !seen[*m.BiggestDropOffStep] {
		c.add(join(prefix, "biggest_drop_off_step"), "names unknown step %q", *m.BiggestDropOffStep)
	}
	c.evidenceList(join(prefix, "evidence"), m.Evidence)
}

// ValidateFunnelMetrics checks funnel calculator output.
func ValidateFunnelMetrics(m model.FunnelMetrics) error {
	var c checker
	c.funnelMetrics("", m)
	return c.err("invalid funnel metrics")
}

func (c *checker) experimentProposal(prefix string, p model.ExperimentProposal) {
	c.tenant(prefix, model.TenantContext{TenantID: p.TenantID, ProjectID: p.ProjectID})
	c.required(join(prefix, "proposal_id"), p.ProposalID)
	c.required(join(prefix, "name"), p.Name)
	c.required(join(prefix, "hypothesis"), p.Hypothesis)
	c.required(join(prefix, "target_step"), p.TargetStep)
	c.required(join(prefix, "primary_metric"), p.PrimaryMetric)
	if len(p.Variants) < 2 {
		c.add(join(prefix, "variants"), "must contain a control and at least one treatment")
	}
	for i, v := range p.Variants {
		vp := idx(join(prefix, "variants"), i)
		c.required(join(vp, "name"), v.Name)
		c.required(join(vp, "description"), v.Description)
	}
	c.rate(join(prefix, "baseline_rate"), p.BaselineRate)
	if p.MinimumDetectableEffect <= 0 {
		c.add(join(prefix, "minimum_detectable_effect"), "must be > 0")
	}
	if p.SampleSizePerVariant <= 0 {
		c.add(join(prefix, "sample_size_per_variant"), "must be > 0")
	}
	if p.EstimatedDurationDays != nil && *p.EstimatedDurationDays <= 0 {
		c.add(join(prefix, "estimated_duration_days"), "must be > 0")
	}
	c.evidenceList(join(prefix, "evidence"), p.Evidence)
}

// ValidateExperimentProposal checks one proposal.
func ValidateExperimentProposal(p model.ExperimentProposal) error {
	var c checker
	c.experimentProposal("", p)
	return c.err("invalid experiment proposal")
}

func (c *checker) contentDraft(prefix string, d model.ContentDraft) {
	c.tenant(prefix, model.TenantContext{TenantID: d.TenantID, ProjectID: d.ProjectID})
	c.required(join(prefix, "draft_id"), d.DraftID)
	c.timestamp(join(prefix, "created_at"), d.CreatedAt)
	c.required(join(prefix, "profile_name"), d.ProfileName)
	oneOf(c, join(prefix, "content_type"), d.ContentType, model.ContentTypes())
	c.required(join(prefix, "goal"), d.Goal)
	c.required(join(prefix, "llm_provider"), d.LLMProvider)
	if len(d.Variants) == 0 {
		c.add(join(prefix, "variants"), "must contain at least one variant")
	}
	for i, v := range d.Variants {
		vp := idx(join(prefix, "variants"), i)
		c.required(join(vp, "variant_id"), v.VariantID)
		c.required(join(vp, "headline"), v.Headline)
		c.required(join(vp, "body"), v.Body)
		c.required(join(vp, "cta"), v.CTA)
	}
	c.evidenceList(join(prefix, "evidence"), d.Evidence)
}

// ValidateContentDraft checks drafter output.
func ValidateContentDraft(d model.ContentDraft) error {
	var c checker
	c.contentDraft("", d)
	return c.err("invalid content draft")
}

func (c *checker) jobRequest(prefix string, r model.JobRequest) {
	c.tenant(prefix, model.TenantContext{TenantID: r.TenantID, ProjectID: r.ProjectID})
	c.required(join(prefix, "id"), r.ID)
	c.timestamp(join(prefix, "created_at"), r.CreatedAt)
	if c.required(join(prefix, "job_type"), string(r.JobType)) && !jobTypePattern.MatchString(string(r.JobType)) {
		c.add(join(prefix, "job_type"), "invalid job type %q", string(r.JobType))
	}
	if r.Payload == nil {
		c.add(join(prefix, "payload"), "is required")
	}
	oneOf(c, join(prefix, "priority"), r.Priority, model.Priorities())
	c.required(join(prefix, "context.triggered_by"), r.Context.TriggeredBy)
	if r.Constraints.AutoExecute {
		c.add(join(prefix, "constraints.auto_execute"), "must be false")
	}
	if !r.Constraints.RequireApproval {
		c.add(join(prefix, "constraints.require_approval"), "must be true")
	}
	if r.Constraints.Deadline != "" {
		c.timestamp(join(prefix, "constraints.deadline"), r.Constraints.Deadline)
	}
	if r.Constraints.MaxCostUSD != nil && *r.Constraints.MaxCostUSD < 0 {
		c.add(join(prefix, "constraints.max_cost_usd"), "must be >= 0")
	}
}

// ValidateJobRequest checks a job request envelope, including the hard
// safety constraints auto_execute=false and require_approval=true.
func ValidateJobRequest(r model.JobRequest) error {
	var c checker
	c.jobRequest("", r)
	return c.err("invalid job request")
}

func (c *checker) envelopeHash(hash, algorithm, canonicalization string) {
	c.hash("canonical_hash", hash)
	if algorithm != model.HashAlgorithmSHA256 {
		c.add("canonical_hash_algorithm", "must be %q", model.HashAlgorithmSHA256)
	}
	if canonicalization != model.CanonicalizationSortedKeys {
		c.add("canonicalization", "must be %q", model.CanonicalizationSortedKeys)
	}
}

func (c *checker) bundle(b model.JobRequestBundle) {
	c.required("schema_version", b.SchemaVersion)
	c.required("module_id", b.ModuleID)
	c.required("bundle_id", b.BundleID)
	c.tenant("", model.TenantContext{TenantID: b.TenantID, ProjectID: b.ProjectID})
	c.required("trace_id", b.TraceID)
	c.timestamp("created_at", b.CreatedAt)
	if b.Requests == nil {
		c.add("requests", "is required")
	}
	for i, e := range b.Requests {
		p := idx("requests", i)
		oneOf(c, join(p, "job_type_status"), e.JobTypeStatus, []model.JobTypeStatus{model.JobTypeAvailable, model.JobTypeUnavailable})
		c.jobRequest(join(p, "request"), e.Request)
	}
	c.envelopeHash(b.CanonicalHash, b.CanonicalHashAlgorithm, b.Canonicalization)
}

// ValidateBundle checks bundle structure. Cross-field policy checks live
// in the bundle package.
func ValidateBundle(b model.JobRequestBundle) error {
	var c checker
	c.bundle(b)
	return c.err("invalid job request bundle")
}

// ValidateReport checks a report envelope.
func ValidateReport(r model.ReportEnvelope) error {
	var c checker
	if r.SchemaVersion != model.SchemaVersion {
		c.add("schema_version", "must be %q", model.SchemaVersion)
	}
	c.required("module_id", r.ModuleID)
	c.required("report_id", r.ReportID)
	c.tenant("", model.TenantContext{TenantID: r.TenantID, ProjectID: r.ProjectID})
	c.required("trace_id", r.TraceID)
	c.timestamp("created_at", r.CreatedAt)
	c.required("report_type", r.ReportType)
	if r.Summary == nil {
		c.add("summary", "is required")
	}
	for i, f := range r.Findings {
		c.finding(idx("findings", i), f)
	}
	for i, rec := range r.Recommendations {
		c.recommendation(idx("recommendations", i), rec)
	}
	c.envelopeHash(r.CanonicalHash, r.CanonicalHashAlgorithm, r.Canonicalization)
	return c.err("invalid report")
}
