package schema

import (
	"github.com/sells-group/growth-cli/internal/model"
)

// MaxVariants caps variant_count on content requests.
const MaxVariants = 10

// ParseAnalyzeInput decodes an inputs document, applies defaults, and
// validates the result. Unknown fields are rejected so typos surface.
func ParseAnalyzeInput(data []byte) (*model.AnalyzeInput, error) {
	var in model.AnalyzeInput
	if err := decode(data, &in, true, "analysis input"); err != nil {
		return nil, err
	}
	out := ApplyInputDefaults(in)
	if err := ValidateAnalyzeInput(out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApplyInputDefaults returns a copy of in with defaults filled in. It never
// mutates its argument.
func ApplyInputDefaults(in model.AnalyzeInput) model.AnalyzeInput {
	out := in
	if in.SEOScan != nil {
		s := *in.SEOScan
		if s.SourceType == "" {
			s.SourceType = model.SourceHTMLExport
		}
		out.SEOScan = &s
	}
	if in.ContentDraft != nil {
		d := *in.ContentDraft
		if d.ContentType == "" {
			d.ContentType = model.ContentLandingPage
		}
		if d.VariantCount == 0 {
			d.VariantCount = 1
		}
		out.ContentDraft = &d
	}
	return out
}

// ValidateAnalyzeInput checks every provided section of an inputs document.
func ValidateAnalyzeInput(in model.AnalyzeInput) error {
	var c checker
	if in.TenantID != "" {
		c.identifier("tenant_id", in.TenantID)
	}
	if in.ProjectID != "" {
		c.identifier("project_id", in.ProjectID)
	}

	if in.SEOAudit != nil {
		c.seoAudit("seo_audit", *in.SEOAudit)
	}
	if s := in.SEOScan; s != nil {
		c.required("seo_scan.source_path", s.SourcePath)
		oneOf(&c, "seo_scan.source_type", s.SourceType, model.SEOSourceTypes())
	}

	if in.FunnelMetrics != nil {
		c.funnelMetrics("funnel_metrics", *in.FunnelMetrics)
	}
	if f := in.FunnelAnalysis; f != nil {
		c.required("funnel_analysis.source_file", f.SourceFile)
		c.required("funnel_analysis.funnel_name", f.FunnelName)
		if len(f.Steps) < 2 {
			c.add("funnel_analysis.steps", "must list at least two steps")
		}
		seen := make(map[string]bool, len(f.Steps))
		for i, s := range f.Steps {
			p := idx("funnel_analysis.steps", i)
			if c.required(p, s) {
				if seen[s] {
					c.add(p, "duplicate step %q", s)
				}
				seen[s] = true
			}
		}
	}

	if e := in.ExperimentProposals; e != nil {
		if e.MaxProposals < 0 || e.MaxProposals > model.MaxExperimentProposals {
			c.add("experiment_proposals.max_proposals", "must be between 0 and %d", model.MaxExperimentProposals)
		}
		if e.FunnelMetricsPath == "" && in.FunnelMetrics == nil && in.FunnelAnalysis == nil {
			c.add("experiment_proposals.funnel_metrics_path", "is required when no funnel_metrics or funnel_analysis is given")
		}
	}

	if d := in.ContentDraft; d != nil {
		c.required("content_draft.profile", d.Profile)
		oneOf(&c, "content_draft.content_type", d.ContentType, model.ContentTypes())
		c.required("content_draft.goal", d.Goal)
		// An empty provider takes the drafter's configured default.
		if d.LLMProvider != "" {
			oneOf(&c, "content_draft.llm_provider", d.LLMProvider, model.LLMProviders())
		}
		if d.VariantCount < 1 || d.VariantCount > MaxVariants {
			c.add("content_draft.variant_count", "must be between 1 and %d", MaxVariants)
		}
		for i, k := range d.Keywords {
			c.required(idx("content_draft.keywords", i), k)
		}
	}
	return c.err("invalid analysis input")
}
