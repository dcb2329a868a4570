package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/growth-cli/internal/cost"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "profiles", cfg.Profiles.Dir)
	assert.True(t, cfg.Profiles.Cache)
	assert.Equal(t, []string{"/_next/*", "/node_modules/*"}, cfg.SEO.ExcludePaths)
	assert.Equal(t, 8, cfg.SEO.MaxWorkers)
	assert.Equal(t, 10, cfg.SEO.TitleMinLength)
	assert.Equal(t, 60, cfg.SEO.TitleMaxLength)
	assert.Equal(t, 50, cfg.SEO.DescriptionMinLength)
	assert.Equal(t, 160, cfg.SEO.DescriptionMaxLength)
	assert.Equal(t, 3, cfg.Experiments.MaxProposals)
	assert.InDelta(t, 0.1, cfg.Experiments.BaselineMDE, 0.0001)
	assert.Equal(t, 5, cfg.Content.MaxVariants)
	assert.Equal(t, "none", cfg.Content.DefaultLLMProvider)
	assert.Equal(t, "normal", cfg.Jobs.DefaultPriority)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Empty(t, cfg.Tenant.TenantID)
	assert.False(t, cfg.Debug)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
  format: console
tenant:
  tenant_id: acme
  project_id: web
seo:
  max_workers: 2
jobs:
  cost_caps:
    seo_scan:
      base_usd: 1
      max_usd: 4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "acme", cfg.Tenant.TenantID)
	assert.Equal(t, "web", cfg.Tenant.ProjectID)
	assert.Equal(t, 2, cfg.SEO.MaxWorkers)
	// Defaults still apply for unset values
	assert.Equal(t, 60, cfg.SEO.TitleMaxLength)

	rates := cfg.Jobs.Rates()
	assert.Equal(t, cost.JobRate{BaseUSD: 1, MaxUSD: 4}, rates.Jobs["autopilot.growth.seo_scan"])
	assert.Equal(t, cost.DefaultRates().Jobs["autopilot.growth.content_draft"], rates.Jobs["autopilot.growth.content_draft"])
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
profiles:
  dir: brand
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("GROWTH_PROFILES_DIR", "/etc/growth/profiles")
	t.Setenv("GROWTH_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "/etc/growth/profiles", cfg.Profiles.Dir)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("GROWTH_TENANT_TENANT_ID", "fromenv")
	t.Setenv("GROWTH_SEO_MAX_WORKERS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "fromenv", cfg.Tenant.TenantID)
	assert.Equal(t, 3, cfg.SEO.MaxWorkers)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Log = LogConfig{Level: "info", Format: "json"}
	cfg.Profiles.Dir = "profiles"
	cfg.SEO = SEOConfig{MaxWorkers: 8, TitleMinLength: 10, TitleMaxLength: 60, DescriptionMinLength: 50, DescriptionMaxLength: 160}
	cfg.Experiments = ExperimentConfig{MaxProposals: 3, BaselineMDE: 0.1}
	cfg.Content = ContentConfig{MaxVariants: 5, DefaultLLMProvider: "none"}
	cfg.Jobs.DefaultPriority = "normal"
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, validDefaults().Validate())
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := validDefaults()
	cfg.Log.Level = "loud"
	cfg.SEO.MaxWorkers = 0
	cfg.Experiments.MaxProposals = 11
	cfg.Jobs.DefaultPriority = "urgent"
	cfg.Jobs.CostCaps = map[string]cost.JobRate{"seo_scan": {MaxUSD: -1}}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `log.level "loud" is invalid`)
	assert.Contains(t, err.Error(), "seo.max_workers must be between 1 and 64")
	assert.Contains(t, err.Error(), "experiments.max_proposals must be between 1 and 10")
	assert.Contains(t, err.Error(), `jobs.default_priority "urgent" is invalid`)
	assert.Contains(t, err.Error(), "jobs.cost_caps.seo_scan must not be negative")
}

func TestValidate_LengthBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.SEO.TitleMaxLength = 5

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seo.title_max_length")

	cfg = validDefaults()
	cfg.Experiments.BaselineMDE = 1
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "experiments.baseline_mde")
}

func TestJobsConfig_RatesWithoutOverrides(t *testing.T) {
	assert.Equal(t, cost.DefaultRates(), JobsConfig{}.Rates())
}

func TestLoadFile_Explicit(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "growth.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  dir: artifacts\n"), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "artifacts", cfg.Output.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFile_MissingIsError(t *testing.T) {
	dir := chdirTemp(t)

	_, err := LoadFile(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}
