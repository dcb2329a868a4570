package pipeline

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/growth-cli/internal/apperr"
	"github.com/sells-group/growth-cli/internal/bundle"
	"github.com/sells-group/growth-cli/internal/canonical"
	"github.com/sells-group/growth-cli/internal/jobs"
	"github.com/sells-group/growth-cli/internal/model"
	"github.com/sells-group/growth-cli/internal/schema"
)

// Stable-mode placeholders.
const (
	StableTimestamp = "2000-01-01T00:00:00.000Z"
	StableTraceID   = "trace-stable"
	StableReportID  = "report-stable"
	StableBundleID  = "bundle-stable"
)

// Normalize replaces wall-clock timestamps with StableTimestamp and
// generated ids with sequence numbers. Values, counts and order are kept.
func Normalize(st State) State {
	st.ReportID = StableReportID
	st.BundleID = StableBundleID
	st.CreatedAt = StableTimestamp

	st.Findings = slices.Clone(st.Findings)
	for i := range st.Findings {
		st.Findings[i].ID = fmt.Sprintf("finding-%d", i+1)
	}
	st.Recommendations = slices.Clone(st.Recommendations)
	for i := range st.Recommendations {
		st.Recommendations[i].ID = fmt.Sprintf("recommendation-%d", i+1)
	}
	st.Requests = slices.Clone(st.Requests)
	for i := range st.Requests {
		req := &st.Requests[i]
		req.ID = fmt.Sprintf("job-%d", i+1)
		req.CreatedAt = StableTimestamp
		if req.Constraints.Deadline != "" {
			req.Constraints.Deadline = StableTimestamp
		}
		req.Context.CorrelationID = fmt.Sprintf("correlation-%d", i+1)
	}

	if st.Audit != nil {
		a := *st.Audit
		a.ScannedAt = StableTimestamp
		st.Audit = &a
	}
	if st.Metrics != nil {
		m := *st.Metrics
		m.ComputedAt = StableTimestamp
		st.Metrics = &m
	}
	if st.Draft != nil {
		d := *st.Draft
		d.CreatedAt = StableTimestamp
		st.Draft = &d
	}
	return st
}

// Summary is the report summary object.
func Summary(st State) map[string]any {
	seoFindings := 0
	if st.Audit != nil {
		seoFindings = len(st.Audit.Findings)
	}
	var biggest any
	if st.Metrics != nil && st.Metrics.BiggestDropOffStep != nil {
		biggest = *st.Metrics.BiggestDropOffStep
	}
	drafts := 0
	if st.Draft != nil {
		drafts = 1
	}
	return map[string]any{
		"seo_findings":                 seoFindings,
		"funnel_biggest_drop_off_step": biggest,
		"experiment_proposals":         len(st.Proposals),
		"content_drafts":               drafts,
	}
}

// finalize stamps trace ids, keys and sorts the requests, hashes both
// envelopes and checks them. A failed check is a defect, since the input
// was validated up front.
func finalize(r *run, in model.AnalyzeInput, st State) (*model.ReportEnvelope, *model.JobRequestBundle, error) {
	entries := make([]model.BundleEntry, 0, len(st.Requests))
	for _, req := range st.Requests {
		req.Context.TraceID = r.traceID
		e, err := jobs.Entry(req)
		if err != nil {
			return nil, nil, apperr.Unexpected(err, "pipeline: build bundle entry")
		}
		entries = append(entries, e)
	}
	jobs.SortEntries(entries)

	report := &model.ReportEnvelope{
		SchemaVersion:   model.SchemaVersion,
		ModuleID:        model.ModuleID,
		ReportID:        st.ReportID,
		TenantID:        r.tenant.TenantID,
		ProjectID:       r.tenant.ProjectID,
		TraceID:         r.traceID,
		CreatedAt:       st.CreatedAt,
		ReportType:      model.ReportTypeAnalysis,
		Summary:         Summary(st),
		Findings:        st.Findings,
		Recommendations: st.Recommendations,
		Inputs: map[string]any{
			"sections":      inputSections(&in),
			"stable_output": r.stable,
		},
		CanonicalHashAlgorithm: model.HashAlgorithmSHA256,
		Canonicalization:       model.CanonicalizationSortedKeys,
	}
	hash, err := canonical.HashWithout(report, "canonical_hash")
	if err != nil {
		return nil, nil, apperr.Unexpected(err, "pipeline: hash report")
	}
	report.CanonicalHash = hash

	b := &model.JobRequestBundle{
		SchemaVersion:          model.SchemaVersion,
		ModuleID:               model.ModuleID,
		BundleID:               st.BundleID,
		TenantID:               r.tenant.TenantID,
		ProjectID:              r.tenant.ProjectID,
		TraceID:                r.traceID,
		CreatedAt:              st.CreatedAt,
		Requests:               entries,
		CanonicalHashAlgorithm: model.HashAlgorithmSHA256,
		Canonicalization:       model.CanonicalizationSortedKeys,
	}
	hash, err = canonical.HashWithout(b, "canonical_hash")
	if err != nil {
		return nil, nil, apperr.Unexpected(err, "pipeline: hash bundle")
	}
	b.CanonicalHash = hash

	if err := schema.ValidateReport(*report); err != nil {
		return nil, nil, apperr.Unexpected(err, "pipeline: report failed validation")
	}
	if res := bundle.ValidateWithOptions(b, bundle.Options{VerifyIntegrity: true}); !res.Success {
		return nil, nil, apperr.Unexpected(eris.New(strings.Join(res.Errors, "; ")), "pipeline: bundle failed validation")
	}
	return report, b, nil
}
