package model

// FunnelStep holds per-step conversion numbers.
type FunnelStep struct {
	Name           string  `json:"name"`
	Users          int     `json:"users"`
	ConversionRate float64 `json:"conversion_rate"`
	DropOffCount   int     `json:"drop_off_count"`
	DropOffRate    float64 `json:"drop_off_rate"`
}

// FunnelMetrics is the funnel calculator's result.
type FunnelMetrics struct {
	TenantID              string         `json:"tenant_id"`
	ProjectID             string         `json:"project_id"`
	FunnelName            string         `json:"funnel_name"`
	SourceFile            string         `json:"source_file,omitempty"`
	ComputedAt            string         `json:"computed_at"`
	TotalUsers            int            `json:"total_users"`
	Steps                 []FunnelStep   `json:"steps"`
	OverallConversionRate float64        `json:"overall_conversion_rate"`
	BiggestDropOffStep    *string        `json:"biggest_drop_off_step,omitempty"`
	PeriodStart           string         `json:"period_start,omitempty"`
	PeriodEnd             string         `json:"period_end,omitempty"`
	Evidence              []EvidenceLink `json:"evidence"`
}

// Step returns the named step, or nil.
func (m *FunnelMetrics) Step(name string) *FunnelStep {
	for i := range m.Steps {
		if m.Steps[i].Name == name {
			return &m.Steps[i]
		}
	}
	return nil
}
