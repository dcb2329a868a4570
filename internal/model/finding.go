package model

// Severity ranks a report finding.
type Severity string

const (
	SeverityCritical    Severity = "critical"
	SeverityWarning     Severity = "warning"
	SeverityInfo        Severity = "info"
	SeverityOpportunity Severity = "opportunity"
)

// Severities returns every valid finding severity.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityWarning, SeverityInfo, SeverityOpportunity}
}

// Finding is one summarized result of an analysis phase.
type Finding struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Severity        Severity       `json:"severity"`
	Evidence        []EvidenceLink `json:"evidence"`
	RelatedJobTypes []JobType      `json:"related_job_types"`
}

// Recommendation mirrors one emitted job request in human terms.
type Recommendation struct {
	ID                  string  `json:"id"`
	Title               string  `json:"title"`
	Description         string  `json:"description"`
	JobType             JobType `json:"job_type,omitempty"`
	RequiresPolicyToken bool    `json:"requires_policy_token,omitempty"`
}
