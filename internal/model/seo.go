package model

// SEOSourceType describes how the scanned site was exported.
type SEOSourceType string

const (
	SourceHTMLExport   SEOSourceType = "html_export"
	SourceNextJSExport SEOSourceType = "nextjs_export"
)

// SEOSourceTypes returns every valid source type.
func SEOSourceTypes() []SEOSourceType {
	return []SEOSourceType{SourceHTMLExport, SourceNextJSExport}
}

// AuditSeverity ranks a single SEO issue.
type AuditSeverity string

const (
	AuditCritical AuditSeverity = "critical"
	AuditWarning  AuditSeverity = "warning"
	AuditInfo     AuditSeverity = "info"
)

// SEOFinding is one rule violation on one page.
type SEOFinding struct {
	ID             string        `json:"id"`
	Rule           string        `json:"rule"`
	Severity       AuditSeverity `json:"severity"`
	Page           string        `json:"page"`
	Message        string        `json:"message"`
	Element        string        `json:"element,omitempty"`
	Recommendation string        `json:"recommendation"`
}

// SEOSummary counts findings by severity.
type SEOSummary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Info     int `json:"info"`
}

// SEOAudit is the scanner's result for one static site.
type SEOAudit struct {
	TenantID     string        `json:"tenant_id"`
	ProjectID    string        `json:"project_id"`
	AuditID      string        `json:"audit_id"`
	ScannedAt    string        `json:"scanned_at"`
	SourceType   SEOSourceType `json:"source_type"`
	SourcePath   string        `json:"source_path"`
	PagesScanned int           `json:"pages_scanned"`
	Findings     []SEOFinding  `json:"findings"`
	Summary      SEOSummary    `json:"summary"`
}

// HasCritical reports whether any finding is critical.
func (a *SEOAudit) HasCritical() bool {
	for _, f := range a.Findings {
		if f.Severity == AuditCritical {
			return true
		}
	}
	return false
}
