package pipeline

import (
	"slices"

	"github.com/sells-group/growth-cli/internal/model"
)

// State accumulates one analysis. Phase functions take a State and return
// the updated copy; they never share slices with the value they received.
type State struct {
	ReportID  string
	BundleID  string
	CreatedAt string

	Findings        []model.Finding
	Recommendations []model.Recommendation
	Requests        []model.JobRequest

	Audit     *model.SEOAudit
	Metrics   *model.FunnelMetrics
	Proposals []model.ExperimentProposal
	Draft     *model.ContentDraft
}

func newState(r *run) State {
	return State{
		ReportID:        "report-" + r.newID(),
		BundleID:        "bundle-" + r.newID(),
		CreatedAt:       model.FormatTime(r.now),
		Findings:        []model.Finding{},
		Recommendations: []model.Recommendation{},
		Requests:        []model.JobRequest{},
	}
}

func (s State) withFinding(r *run, f model.Finding) State {
	f.ID = "finding-" + r.newID()
	if f.Evidence == nil {
		f.Evidence = []model.EvidenceLink{}
	}
	if f.RelatedJobTypes == nil {
		f.RelatedJobTypes = []model.JobType{}
	}
	s.Findings = append(slices.Clone(s.Findings), f)
	return s
}

func (s State) withRequest(r *run, req model.JobRequest) State {
	req.Context.CorrelationID = "correlation-" + r.newID()
	s.Requests = append(slices.Clone(s.Requests), req)
	return s
}
