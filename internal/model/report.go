package model

// ReportTypeAnalysis is the report_type of orchestrated analysis reports.
const ReportTypeAnalysis = "growth_analysis"

// ReportEnvelope is the canonical, hash-verified analysis report.
type ReportEnvelope struct {
	SchemaVersion          string           `json:"schema_version"`
	ModuleID               string           `json:"module_id"`
	ReportID               string           `json:"report_id"`
	TenantID               string           `json:"tenant_id"`
	ProjectID              string           `json:"project_id"`
	TraceID                string           `json:"trace_id"`
	CreatedAt              string           `json:"created_at"`
	ReportType             string           `json:"report_type"`
	Summary                map[string]any   `json:"summary"`
	Findings               []Finding        `json:"findings"`
	Recommendations        []Recommendation `json:"recommendations"`
	Inputs                 map[string]any   `json:"inputs,omitempty"`
	CanonicalHash          string           `json:"canonical_hash"`
	CanonicalHashAlgorithm string           `json:"canonical_hash_algorithm"`
	Canonicalization       string           `json:"canonicalization"`
}
