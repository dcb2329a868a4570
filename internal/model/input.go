package model

// SEOScanRequest asks the orchestrator to scan a static site.
type SEOScanRequest struct {
	SourcePath string        `json:"source_path"`
	SourceType SEOSourceType `json:"source_type"`
}

// FunnelAnalysisRequest asks the orchestrator to compute funnel metrics.
type FunnelAnalysisRequest struct {
	SourceFile string   `json:"source_file"`
	FunnelName string   `json:"funnel_name"`
	Steps      []string `json:"steps"`
}

// ExperimentProposalsRequest asks for experiment proposals, either from a
// metrics file or from the funnel phase of the same run.
type ExperimentProposalsRequest struct {
	FunnelMetricsPath string `json:"funnel_metrics_path,omitempty"`
	MaxProposals      int    `json:"max_proposals,omitempty"`
}

// ContentDraftRequest asks for templated marketing copy.
type ContentDraftRequest struct {
	Profile        string      `json:"profile"`
	ContentType    ContentType `json:"content_type"`
	Goal           string      `json:"goal"`
	Keywords       []string    `json:"keywords,omitempty"`
	Features       []string    `json:"features,omitempty"`
	TargetAudience string      `json:"target_audience,omitempty"`
	LLMProvider    string      `json:"llm_provider,omitempty"`
	VariantCount   int         `json:"variant_count,omitempty"`
}

// AnalyzeInput is the orchestrator's input document. Every section is optional.
type AnalyzeInput struct {
	TenantID            string                      `json:"tenant_id,omitempty"`
	ProjectID           string                      `json:"project_id,omitempty"`
	TraceID             string                      `json:"trace_id,omitempty"`
	StableOutput        bool                        `json:"stable_output,omitempty"`
	SEOAudit            *SEOAudit                   `json:"seo_audit,omitempty"`
	SEOScan             *SEOScanRequest             `json:"seo_scan,omitempty"`
	FunnelMetrics       *FunnelMetrics              `json:"funnel_metrics,omitempty"`
	FunnelAnalysis      *FunnelAnalysisRequest      `json:"funnel_analysis,omitempty"`
	ExperimentProposals *ExperimentProposalsRequest `json:"experiment_proposals,omitempty"`
	ContentDraft        *ContentDraftRequest        `json:"content_draft,omitempty"`
}

// Sections returns the names of the provided input sections in sorted order.
func (in *AnalyzeInput) Sections() []string {
	var out []string
	if in.ContentDraft != nil {
		out = append(out, "content_draft")
	}
	if in.ExperimentProposals != nil {
		out = append(out, "experiment_proposals")
	}
	if in.FunnelAnalysis != nil {
		out = append(out, "funnel_analysis")
	}
	if in.FunnelMetrics != nil {
		out = append(out, "funnel_metrics")
	}
	if in.SEOAudit != nil {
		out = append(out, "seo_audit")
	}
	if in.SEOScan != nil {
		out = append(out, "seo_scan")
	}
	return out
}
