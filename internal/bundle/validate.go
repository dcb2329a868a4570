// Package bundle re-verifies a job request bundle's structural and policy
// invariants independent of how it was built. A receiving system can run
// it on any bundle document.
package bundle

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sells-group/growth-cli/internal/apperr"
	"github.com/sells-group/growth-cli/internal/canonical"
	"github.com/sells-group/growth-cli/internal/jobs"
	"github.com/sells-group/growth-cli/internal/model"
	"github.com/sells-group/growth-cli/internal/schema"
)

// Result is the outcome of a validation. Errors lists every violation.
type Result struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors,omitempty"`
}

// Options enables checks beyond the policy invariants.
type Options struct {
	// VerifyIntegrity recomputes idempotency keys and the canonical hash
	// and checks request ordering.
	VerifyIntegrity bool
}

// Validate runs the policy checks on candidate, which may be raw JSON
// ([]byte, json.RawMessage, string), a generic map, or a bundle value.
func Validate(candidate any) Result {
	return ValidateWithOptions(candidate, Options{})
}

// ValidateWithOptions runs the checks in order and accumulates every
// violation. It never panics on malformed data; structural problems are
// reported as errors.
func ValidateWithOptions(candidate any, opts Options) Result {
	var errs []string

	// A bundle with wrongly typed fields still decodes partly; the type
	// errors are reported together with the policy checks below.
	b, raw, err := load(candidate)
	if b == nil {
		return Result{Success: false, Errors: describe(err)}
	}
	if err != nil {
		errs = append(errs, describe(err)...)
	}

	// 1. Structure.
	if err := schema.ValidateBundle(*b); err != nil {
		errs = append(errs, describe(err)...)
	}

	// 2. Pinned schema version.
	if b.SchemaVersion != model.SchemaVersion {
		errs = append(errs, fmt.Sprintf("schema_version: expected %q, got %q", model.SchemaVersion, b.SchemaVersion))
	}

	for i, e := range b.Requests {
		p := fmt.Sprintf("requests[%d]", i)

		// 3. Tenant isolation.
		if e.Request.TenantID != b.TenantID || e.Request.ProjectID != b.ProjectID {
			errs = append(errs, fmt.Sprintf("%s: tenant/project mismatch: request is %s/%s, bundle is %s/%s",
				p, e.Request.TenantID, e.Request.ProjectID, b.TenantID, b.ProjectID))
		}

		// 4. Idempotency key present.
		if e.IdempotencyKey == "" {
			errs = append(errs, p+": idempotency_key is required")
		}

		// 5. Unknown job types must be marked unavailable.
		if !e.Request.JobType.IsKnown() && e.JobTypeStatus != model.JobTypeUnavailable {
			errs = append(errs, fmt.Sprintf("%s: unknown job_type %q must be marked job_type_status %q",
				p, e.Request.JobType, model.JobTypeUnavailable))
		}

		// 6. Action jobs need the policy token gate.
		if e.Request.JobType.IsAction() && !e.RequiresPolicyToken {
			errs = append(errs, fmt.Sprintf("%s: action job_type %q must set requires_policy_token=true",
				p, e.Request.JobType))
		}
	}

	if opts.VerifyIntegrity {
		errs = append(errs, integrity(b, raw)...)
	}

	return Result{Success: len(errs) == 0, Errors: errs}
}

func integrity(b *model.JobRequestBundle, raw any) []string {
	var errs []string
	for i, e := range b.Requests {
		want, err := jobs.IdempotencyKey(e.Request)
		if err != nil {
			errs = append(errs, fmt.Sprintf("requests[%d]: %v", i, err))
			continue
		}
		if e.IdempotencyKey != "" && e.IdempotencyKey != want {
			errs = append(errs, fmt.Sprintf("requests[%d]: idempotency_key does not match tenant/project/job_type/payload", i))
		}
	}
	if !jobs.IsSorted(b.Requests) {
		errs = append(errs, "requests: must be sorted by (job_type, idempotency_key)")
	}

	hash, err := canonical.HashWithout(raw, "canonical_hash")
	if err != nil {
		errs = append(errs, fmt.Sprintf("canonical_hash: %v", err))
	} else if hash != b.CanonicalHash {
		errs = append(errs, "canonical_hash: does not match bundle content")
	}
	return errs
}

// load decodes candidate. raw is the value the canonical hash is
// recomputed over: the original document when one was given. A non-nil
// bundle may come back with a type error from a partial decode.
func load(candidate any) (*model.JobRequestBundle, any, error) {
	var data []byte
	switch c := candidate.(type) {
	case nil:
		return nil, nil, apperr.Validation("invalid job request bundle", apperr.Issue{Message: "bundle is null"})
	case *model.JobRequestBundle:
		if c == nil {
			return nil, nil, apperr.Validation("invalid job request bundle", apperr.Issue{Message: "bundle is null"})
		}
		return c, c, nil
	case model.JobRequestBundle:
		return &c, c, nil
	case []byte:
		data = c
	case json.RawMessage:
		data = c
	case string:
		data = []byte(c)
	default:
		var err error
		data, err = json.Marshal(c)
		if err != nil {
			return nil, nil, apperr.Validation("invalid job request bundle", apperr.Issue{Message: err.Error()})
		}
	}

	b, err := schema.DecodeBundle(data)
	if b == nil {
		return nil, nil, err
	}
	var raw any
	if jerr := json.Unmarshal(data, &raw); jerr != nil {
		raw = b
	}
	return b, raw, err
}

func describe(err error) []string {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) && len(ve.Issues) > 0 {
		out := make([]string, len(ve.Issues))
		for i, is := range ve.Issues {
			out[i] = is.String()
		}
		return out
	}
	return []string{err.Error()}
}
