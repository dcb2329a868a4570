package model

// EvidenceType classifies the source signal behind a claim.
type EvidenceType string

const (
	EvidenceHTMLElement EvidenceType = "html_element"
	EvidenceJSONPath    EvidenceType = "json_path"
	EvidenceURL         EvidenceType = "url"
	EvidenceEventCount  EvidenceType = "event_count"
	EvidenceCalculation EvidenceType = "calculation"
	EvidenceAssumption  EvidenceType = "assumption"
)

// EvidenceTypes returns every valid evidence type.
func EvidenceTypes() []EvidenceType {
	return []EvidenceType{
		EvidenceHTMLElement,
		EvidenceJSONPath,
		EvidenceURL,
		EvidenceEventCount,
		EvidenceCalculation,
		EvidenceAssumption,
	}
}

// EvidenceLink points from a finding, proposal or draft back to its data.
type EvidenceLink struct {
	Type        EvidenceType `json:"type"`
	Path        string       `json:"path"`
	Description string       `json:"description"`
	Value       any          `json:"value,omitempty"`
}
