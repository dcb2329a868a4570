// Package pipeline runs the analysis phases and assembles the report and
// job request bundle. It never executes a job: every request it emits is
// gated on approval.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/growth-cli/internal/apperr"
	"github.com/sells-group/growth-cli/internal/config"
	"github.com/sells-group/growth-cli/internal/content"
	"github.com/sells-group/growth-cli/internal/experiment"
	"github.com/sells-group/growth-cli/internal/funnel"
	"github.com/sells-group/growth-cli/internal/jobs"
	"github.com/sells-group/growth-cli/internal/model"
	"github.com/sells-group/growth-cli/internal/schema"
	"github.com/sells-group/growth-cli/internal/seo"
)

// Scanner audits a static site export.
type Scanner interface {
	ScanSite(ctx context.Context, tc model.TenantContext, sourceType model.SEOSourceType, sourcePath string) (*model.SEOAudit, error)
}

// FunnelAnalyzer computes funnel metrics from an event file.
type FunnelAnalyzer interface {
	AnalyzeFunnel(ctx context.Context, tc model.TenantContext, sourceFile, funnelName string, steps []string) (*model.FunnelMetrics, error)
}

// Proposer generates experiment proposals. It never fails.
type Proposer interface {
	ProposeExperiments(opts experiment.Options) []model.ExperimentProposal
}

// Drafter renders marketing copy from a brand profile.
type Drafter interface {
	DraftContent(ctx context.Context, opts content.Options) (*model.ContentDraft, error)
}

// ReadFileFunc reads a whole file.
type ReadFileFunc func(path string) ([]byte, error)

// Collaborators are the phase producers. Nil fields get the built-in
// implementations.
type Collaborators struct {
	Scanner  Scanner
	Funnel   FunnelAnalyzer
	Proposer Proposer
	Drafter  Drafter
	ReadFile ReadFileFunc
}

// Pipeline orchestrates the analysis phases.
type Pipeline struct {
	cfg      *config.Config
	scanner  Scanner
	funnel   FunnelAnalyzer
	proposer Proposer
	drafter  Drafter
	readFile ReadFileFunc
}

// New creates a Pipeline. cfg is read once here and on each Analyze; the
// pipeline never consults the environment.
func New(cfg *config.Config, c Collaborators) *Pipeline {
	if cfg == nil {
		cfg = &config.Config{}
	}
	p := &Pipeline{
		cfg:      cfg,
		scanner:  c.Scanner,
		funnel:   c.Funnel,
		proposer: c.Proposer,
		drafter:  c.Drafter,
		readFile: c.ReadFile,
	}
	if p.scanner == nil {
		p.scanner = seo.NewScanner(cfg.SEO)
	}
	if p.funnel == nil {
		p.funnel = funnel.NewCalculator()
	}
	if p.proposer == nil {
		p.proposer = experiment.NewProposer(cfg.Experiments.MaxProposals, cfg.Experiments.BaselineMDE)
	}
	if p.drafter == nil {
		p.drafter = content.NewDrafter(cfg.Profiles, cfg.Content)
	}
	if p.readFile == nil {
		p.readFile = os.ReadFile
	}
	return p
}

// Options control one Analyze call.
type Options struct {
	// Tenant overrides the input document's tenant fields when set.
	Tenant  *model.TenantContext
	TraceID string
	// StableOutput forces stable mode even when the input does not ask for it.
	StableOutput bool
	// BaseDir resolves relative paths in the input, usually the directory
	// of the inputs file.
	BaseDir string
	Now     func() time.Time
	NewID   func() string
}

// Result is one finished analysis. The collaborator outputs are kept for
// callers that write them as separate artifacts.
type Result struct {
	Report    *model.ReportEnvelope
	Bundle    *model.JobRequestBundle
	Audit     *model.SEOAudit
	Metrics   *model.FunnelMetrics
	Proposals []model.ExperimentProposal
	Draft     *model.ContentDraft
}

// AnalyzeBytes parses an inputs document and runs Analyze on it.
func (p *Pipeline) AnalyzeBytes(ctx context.Context, data []byte, opts Options) (*Result, error) {
	in, err := schema.ParseAnalyzeInput(data)
	if err != nil {
		return nil, err
	}
	return p.Analyze(ctx, *in, opts)
}

// Analyze runs every phase the input asks for and returns a validated
// report and bundle. No partial result is returned on error.
func (p *Pipeline) Analyze(ctx context.Context, in model.AnalyzeInput, opts Options) (*Result, error) {
	in = schema.ApplyInputDefaults(in)
	if err := schema.ValidateAnalyzeInput(in); err != nil {
		return nil, err
	}

	r, err := p.newRun(in, opts)
	if err != nil {
		return nil, err
	}
	log := zap.L().With(
		zap.String("tenant_id", r.tenant.TenantID),
		zap.String("project_id", r.tenant.ProjectID),
		zap.String("trace_id", r.traceID),
		zap.Bool("stable_output", r.stable),
	)
	log.Info("pipeline: starting analysis", zap.Strings("sections", inputSections(&in)))

	st := newState(r)
	phases := []struct {
		name string
		fn   func(context.Context, *run, model.AnalyzeInput, State) (State, error)
	}{
		{"seo", p.seoPhase},
		{"funnel", p.funnelPhase},
		{"experiments", p.experimentsPhase},
		{"content", p.contentPhase},
	}
	for _, ph := range phases {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "pipeline: cancelled")
		}
		next, err := trackPhase(log, ph.name, func() (State, error) {
			return ph.fn(ctx, r, in, st)
		})
		if err != nil {
			return nil, err
		}
		st = next
	}

	st = Recommend(r, st)
	if r.stable {
		st = Normalize(st)
	}

	report, bundle, err := finalize(r, in, st)
	if err != nil {
		return nil, err
	}

	log.Info("pipeline: analysis complete",
		zap.Int("findings", len(report.Findings)),
		zap.Int("requests", len(bundle.Requests)),
		zap.String("report_hash", report.CanonicalHash),
		zap.String("bundle_hash", bundle.CanonicalHash),
	)

	return &Result{
		Report:    report,
		Bundle:    bundle,
		Audit:     st.Audit,
		Metrics:   st.Metrics,
		Proposals: st.Proposals,
		Draft:     st.Draft,
	}, nil
}

// trackPhase runs fn and logs its duration.
func trackPhase(log *zap.Logger, name string, fn func() (State, error)) (State, error) {
	start := time.Now()
	st, err := fn()
	duration := time.Since(start).Milliseconds()
	if err != nil {
		log.Error("pipeline: phase failed",
			zap.String("phase", name),
			zap.String("code", string(apperr.Classify(err))),
			zap.Int64("duration_ms", duration),
			apperr.ZapError(err),
		)
		return st, err
	}
	log.Info("pipeline: phase complete",
		zap.String("phase", name),
		zap.Int64("duration_ms", duration),
	)
	return st, nil
}

// run holds the per-call settings shared by every phase. Nothing in it
// outlives the call, so concurrent Analyze calls do not interact.
type run struct {
	tenant  model.TenantContext
	traceID string
	stable  bool
	baseDir string
	now     time.Time
	newID   func() string
	builder *jobs.Builder
	maxProp int
}

func (p *Pipeline) newRun(in model.AnalyzeInput, opts Options) (*run, error) {
	tc := model.TenantContext{TenantID: in.TenantID, ProjectID: in.ProjectID}
	if opts.Tenant != nil {
		tc = *opts.Tenant
	}
	if err := schema.ValidateTenantContext(tc); err != nil {
		return nil, err
	}

	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	clock := opts.Now
	if clock == nil {
		clock = time.Now
	}
	stable := opts.StableOutput || in.StableOutput

	traceID := firstNonEmpty(opts.TraceID, in.TraceID)
	if traceID == "" {
		if stable {
			traceID = StableTraceID
		} else {
			traceID = newID()
		}
	}

	now := clock().UTC()
	builder := jobs.NewBuilder(jobs.Config{
		Rates:           p.cfg.Jobs.Rates(),
		DefaultPriority: model.Priority(p.cfg.Jobs.DefaultPriority),
		DeadlineHours:   p.cfg.Jobs.DeadlineHours,
		Now:             func() time.Time { return now },
		NewID:           func() string { return "job-" + newID() },
	})

	return &run{
		tenant:  tc,
		traceID: traceID,
		stable:  stable,
		baseDir: opts.BaseDir,
		now:     now,
		newID:   newID,
		builder: builder,
		maxProp: p.cfg.Experiments.MaxProposals,
	}, nil
}

// resolve makes a relative input path relative to the base directory.
func (r *run) resolve(path string) string {
	if path == "" || r.baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.baseDir, path)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func inputSections(in *model.AnalyzeInput) []string {
	s := in.Sections()
	if s == nil {
		return []string{}
	}
	return s
}
