package model

import "time"

// SchemaVersion is the pinned contract version carried by every emitted artifact.
const SchemaVersion = "2024-09-01"

// ModuleID identifies this toolkit in report and bundle envelopes.
const ModuleID = "growth"

// TimeLayout is the timestamp layout used by all artifacts (UTC, millisecond precision).
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in the artifact timestamp layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// TenantContext scopes every artifact to one tenant and project.
type TenantContext struct {
	TenantID  string `json:"tenant_id"`
	ProjectID string `json:"project_id"`
}
