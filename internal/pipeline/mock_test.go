package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/growth-cli/internal/content"
	"github.com/sells-group/growth-cli/internal/experiment"
	"github.com/sells-group/growth-cli/internal/model"
)

// --- Scanner Mock ---

type mockScanner struct {
	mock.Mock
}

func (m *mockScanner) ScanSite(ctx context.Context, tc model.TenantContext, sourceType model.SEOSourceType, sourcePath string) (*model.SEOAudit, error) {
	args := m.Called(ctx, tc, sourceType, sourcePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SEOAudit), args.Error(1)
}

// --- Funnel Mock ---

type mockFunnel struct {
	mock.Mock
}

func (m *mockFunnel) AnalyzeFunnel(ctx context.Context, tc model.TenantContext, sourceFile, funnelName string, steps []string) (*model.FunnelMetrics, error) {
	args := m.Called(ctx, tc, sourceFile, funnelName, steps)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FunnelMetrics), args.Error(1)
}

// --- Proposer Mock ---

type mockProposer struct {
	mock.Mock
}

func (m *mockProposer) ProposeExperiments(opts experiment.Options) []model.ExperimentProposal {
	args := m.Called(opts)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.ExperimentProposal)
}

// --- Drafter Mock ---

type mockDrafter struct {
	mock.Mock
}

func (m *mockDrafter) DraftContent(ctx context.Context, opts content.Options) (*model.ContentDraft, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContentDraft), args.Error(1)
}

// --- ReadFile Mock ---

type mockReader struct {
	mock.Mock
}

func (m *mockReader) ReadFile(path string) ([]byte, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
