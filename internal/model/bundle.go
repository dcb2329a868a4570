package model

// JobTypeStatus tells the receiver whether a request's job type is runnable.
type JobTypeStatus string

const (
	JobTypeAvailable   JobTypeStatus = "available"
	JobTypeUnavailable JobTypeStatus = "unavailable"
)

// HashAlgorithmSHA256 and CanonicalizationSortedKeys describe how canonical
// hashes on reports and bundles were computed.
const (
	HashAlgorithmSHA256        = "sha256"
	CanonicalizationSortedKeys = "sorted_keys"
)

// BundleEntry wraps one request with its idempotency key and gating flags.
type BundleEntry struct {
	IdempotencyKey      string        `json:"idempotency_key"`
	Request             JobRequest    `json:"request"`
	JobTypeStatus       JobTypeStatus `json:"job_type_status"`
	RequiresPolicyToken bool          `json:"requires_policy_token,omitempty"`
}

// JobRequestBundle is the deterministic, hash-verified set of requests
// produced by one analysis.
type JobRequestBundle struct {
	SchemaVersion          string        `json:"schema_version"`
	ModuleID               string        `json:"module_id"`
	BundleID               string        `json:"bundle_id"`
	TenantID               string        `json:"tenant_id"`
	ProjectID              string        `json:"project_id"`
	TraceID                string        `json:"trace_id"`
	CreatedAt              string        `json:"created_at"`
	Requests               []BundleEntry `json:"requests"`
	CanonicalHash          string        `json:"canonical_hash"`
	CanonicalHashAlgorithm string        `json:"canonical_hash_algorithm"`
	Canonicalization       string        `json:"canonicalization"`
}
