package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/growth-cli/internal/model"
)

func TestParseAnalyzeInput_AppliesDefaults(t *testing.T) {
	in, err := ParseAnalyzeInput([]byte(`{
		// comments are allowed
		"seo_scan": {"source_path": "./site"},
		"content_draft": {"profile": "default", "goal": "more signups"},
	}`))
	require.NoError(t, err)

	assert.Equal(t, model.SourceHTMLExport, in.SEOScan.SourceType)
	assert.Equal(t, model.ContentLandingPage, in.ContentDraft.ContentType)
	assert.Empty(t, in.ContentDraft.LLMProvider, "the drafter applies the configured provider")
	assert.Equal(t, 1, in.ContentDraft.VariantCount)
}

func TestParseAnalyzeInput_ListsEveryViolation(t *testing.T) {
	_, err := ParseAnalyzeInput([]byte(`{
		"tenant_id": "Not Valid",
		"seo_scan": {"source_type": "wordpress"},
		"funnel_analysis": {"source_file": "events.json", "steps": ["visit"]},
		"content_draft": {"profile": "default", "goal": "g", "variant_count": 50}
	}`))
	issues := issuesOf(t, err)
	assert.ElementsMatch(t, []string{
		"tenant_id",
		"seo_scan.source_path",
		"seo_scan.source_type",
		"funnel_analysis.funnel_name",
		"funnel_analysis.steps",
		"content_draft.variant_count",
	}, paths(issues))
}

func TestParseAnalyzeInput_SharedLimits(t *testing.T) {
	for _, p := range model.LLMProviders() {
		_, err := ParseAnalyzeInput([]byte(`{"content_draft": {"profile": "p", "goal": "g", "llm_provider": "` + p + `"}}`))
		assert.NoError(t, err, p)
	}

	_, err := ParseAnalyzeInput([]byte(`{
		"content_draft": {"profile": "p", "goal": "g", "llm_provider": "gpt"},
		"funnel_analysis": {"source_file": "e.jsonl", "funnel_name": "f", "steps": ["a", "b"]},
		"experiment_proposals": {"max_proposals": 11}
	}`))
	assert.ElementsMatch(t, []string{
		"content_draft.llm_provider",
		"experiment_proposals.max_proposals",
	}, paths(issuesOf(t, err)))
}

func TestParseAnalyzeInput_UnknownField(t *testing.T) {
	_, err := ParseAnalyzeInput([]byte(`{"seo_scna": {}}`))
	issues := issuesOf(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "seo_scna", issues[0].Path)
	assert.Equal(t, "unknown field", issues[0].Message)
}

func TestParseAnalyzeInput_TypeMismatch(t *testing.T) {
	_, err := ParseAnalyzeInput([]byte(`{"stable_output": "yes"}`))
	issues := issuesOf(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "stable_output", issues[0].Path)
}

func TestParseAnalyzeInput_Malformed(t *testing.T) {
	_, err := ParseAnalyzeInput([]byte(`{"seo_scan": `))
	assert.Error(t, err)
}

func TestParseAnalyzeInput_ExperimentsNeedMetricsSource(t *testing.T) {
	_, err := ParseAnalyzeInput([]byte(`{"experiment_proposals": {"max_proposals": 2}}`))
	issues := issuesOf(t, err)
	assert.Equal(t, []string{"experiment_proposals.funnel_metrics_path"}, paths(issues))

	in, err := ParseAnalyzeInput([]byte(`{
		"funnel_analysis": {"source_file": "e.json", "funnel_name": "f", "steps": ["a", "b"]},
		"experiment_proposals": {}
	}`))
	require.NoError(t, err)
	assert.NotNil(t, in.ExperimentProposals)
}

func TestApplyInputDefaults_DoesNotMutate(t *testing.T) {
	in := model.AnalyzeInput{SEOScan: &model.SEOScanRequest{SourcePath: "./site"}}
	out := ApplyInputDefaults(in)
	assert.Equal(t, model.SEOSourceType(""), in.SEOScan.SourceType)
	assert.Equal(t, model.SourceHTMLExport, out.SEOScan.SourceType)
}

func TestParseFunnelMetrics(t *testing.T) {
	m, err := ParseFunnelMetrics([]byte(`{
		"tenant_id": "acme", "project_id": "web", "funnel_name": "f",
		"computed_at": "2024-09-01T00:00:00Z", "total_users": 2,
		"steps": [{"name": "a", "users": 2, "conversion_rate": 1}, {"name": "b", "users": 2, "conversion_rate": 1}],
		"overall_conversion_rate": 1, "evidence": []
	}`))
	require.NoError(t, err)
	assert.Nil(t, m.BiggestDropOffStep)

	_, err = ParseFunnelMetrics([]byte(`{"funnel_name": "f"}`))
	assert.Error(t, err)
}
