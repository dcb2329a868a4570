package model

// JobType names a job the external execution system knows how to run.
type JobType string

const (
	JobTypeSEOScan           JobType = "autopilot.growth.seo_scan"
	JobTypeExperimentPropose JobType = "autopilot.growth.experiment_propose"
	JobTypeContentDraft      JobType = "autopilot.growth.content_draft"
	JobTypeExperimentRun     JobType = "autopilot.growth.experiment_run"
	JobTypePublishContent    JobType = "autopilot.growth.publish_content"
)

// KnownJobTypes returns the closed set of job types.
func KnownJobTypes() []JobType {
	return []JobType{
		JobTypeSEOScan,
		JobTypeExperimentPropose,
		JobTypeContentDraft,
		JobTypeExperimentRun,
		JobTypePublishContent,
	}
}

// ActionJobTypes returns the job types with real-world side effects.
// Requests of these types must carry a policy token to execute.
func ActionJobTypes() []JobType {
	return []JobType{JobTypeExperimentRun, JobTypePublishContent}
}

// IsKnown reports whether t is in the closed job type set.
func (t JobType) IsKnown() bool {
	for _, k := range KnownJobTypes() {
		if t == k {
			return true
		}
	}
	return false
}

// IsAction reports whether t is an action job type.
func (t JobType) IsAction() bool {
	for _, k := range ActionJobTypes() {
		if t == k {
			return true
		}
	}
	return false
}

// Priority is the scheduling hint attached to a job request.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Priorities returns every valid priority.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical}
}

// JobContext records why a job request exists.
type JobContext struct {
	TriggeredBy    string `json:"triggered_by"`
	CorrelationID  string `json:"correlation_id,omitempty"`
	RelatedAuditID string `json:"related_audit_id,omitempty"`
	Notes          string `json:"notes,omitempty"`
	TraceID        string `json:"trace_id,omitempty"`
}

// JobConstraints gates execution. AutoExecute is always false and
// RequireApproval always true for requests built by this module.
type JobConstraints struct {
	AutoExecute     bool     `json:"auto_execute"`
	RequireApproval bool     `json:"require_approval"`
	Deadline        string   `json:"deadline,omitempty"`
	MaxCostUSD      *float64 `json:"max_cost_usd,omitempty"`
}

// JobRequest is the envelope handed to the job execution system.
type JobRequest struct {
	TenantID    string         `json:"tenant_id"`
	ProjectID   string         `json:"project_id"`
	ID          string         `json:"id"`
	CreatedAt   string         `json:"created_at"`
	JobType     JobType        `json:"job_type"`
	Payload     map[string]any `json:"payload"`
	Priority    Priority       `json:"priority"`
	Context     JobContext     `json:"context"`
	Constraints JobConstraints `json:"constraints"`
}
