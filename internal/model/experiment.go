package model

// MaxExperimentProposals caps the proposals asked for in one request.
const MaxExperimentProposals = 10

// ExperimentVariant is one arm of a proposed test.
type ExperimentVariant struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ExperimentProposal is a proposed A/B test targeting one funnel step.
type ExperimentProposal struct {
	TenantID                string              `json:"tenant_id"`
	ProjectID               string              `json:"project_id"`
	ProposalID              string              `json:"proposal_id"`
	Name                    string              `json:"name"`
	Hypothesis              string              `json:"hypothesis"`
	TargetStep              string              `json:"target_step"`
	PrimaryMetric           string              `json:"primary_metric"`
	Variants                []ExperimentVariant `json:"variants"`
	BaselineRate            float64             `json:"baseline_rate"`
	MinimumDetectableEffect float64             `json:"minimum_detectable_effect"`
	SampleSizePerVariant    int                 `json:"sample_size_per_variant"`
	EstimatedDurationDays   *int                `json:"estimated_duration_days,omitempty"`
	Evidence                []EvidenceLink      `json:"evidence"`
}
