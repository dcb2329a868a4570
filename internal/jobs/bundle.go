package jobs

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/growth-cli/internal/canonical"
	"github.com/sells-group/growth-cli/internal/model"
)

// IdempotencyKey hashes the fields that identify a request logically:
// tenant, project, job type and payload. Ids, timestamps and trace ids
// are excluded so retried submissions dedupe.
func IdempotencyKey(r model.JobRequest) (string, error) {
	key, err := canonical.StableHash(map[string]any{
		"tenant_id":  r.TenantID,
		"project_id": r.ProjectID,
		"job_type":   string(r.JobType),
		"payload":    r.Payload,
	})
	if err != nil {
		return "", eris.Wrap(err, "jobs: idempotency key")
	}
	return key, nil
}

// Entry wraps r for a bundle: computes its idempotency key, marks unknown
// job types unavailable and flags action job types for a policy token.
func Entry(r model.JobRequest) (model.BundleEntry, error) {
	key, err := IdempotencyKey(r)
	if err != nil {
		return model.BundleEntry{}, err
	}
	status := model.JobTypeAvailable
	if !r.JobType.IsKnown() {
		status = model.JobTypeUnavailable
	}
	return model.BundleEntry{
		IdempotencyKey:      key,
		Request:             r,
		JobTypeStatus:       status,
		RequiresPolicyToken: r.JobType.IsAction(),
	}, nil
}

// SortEntries orders entries by (job_type, idempotency_key).
func SortEntries(entries []model.BundleEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Less(entries[i], entries[j])
	})
}

// Less is the bundle ordering.
func Less(a, b model.BundleEntry) bool {
	if a.Request.JobType != b.Request.JobType {
		return a.Request.JobType < b.Request.JobType
	}
	return a.IdempotencyKey < b.IdempotencyKey
}

// IsSorted reports whether entries follow the bundle ordering.
func IsSorted(entries []model.BundleEntry) bool {
	return sort.SliceIsSorted(entries, func(i, j int) bool {
		return Less(entries[i], entries[j])
	})
}
