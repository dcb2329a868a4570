package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/growth-cli/internal/cost"
	"github.com/sells-group/growth-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Log         LogConfig        `yaml:"log" mapstructure:"log"`
	Tenant      TenantConfig     `yaml:"tenant" mapstructure:"tenant"`
	Profiles    ProfilesConfig   `yaml:"profiles" mapstructure:"profiles"`
	SEO         SEOConfig        `yaml:"seo" mapstructure:"seo"`
	Experiments ExperimentConfig `yaml:"experiments" mapstructure:"experiments"`
	Content     ContentConfig    `yaml:"content" mapstructure:"content"`
	Jobs        JobsConfig       `yaml:"jobs" mapstructure:"jobs"`
	Output      OutputConfig     `yaml:"output" mapstructure:"output"`
	Debug       bool             `yaml:"debug" mapstructure:"debug"`
}

// TenantConfig supplies fallback tenant ids when neither flags nor the
// inputs file set them.
type TenantConfig struct {
	TenantID  string `yaml:"tenant_id" mapstructure:"tenant_id"`
	ProjectID string `yaml:"project_id" mapstructure:"project_id"`
}

// ProfilesConfig locates brand profiles for the content drafter.
type ProfilesConfig struct {
	Dir   string `yaml:"dir" mapstructure:"dir"`
	Cache bool   `yaml:"cache" mapstructure:"cache"`
}

// SEOConfig configures the static site scanner.
type SEOConfig struct {
	ExcludePaths         []string `yaml:"exclude_paths" mapstructure:"exclude_paths"`
	MaxWorkers           int      `yaml:"max_workers" mapstructure:"max_workers"`
	TitleMinLength       int      `yaml:"title_min_length" mapstructure:"title_min_length"`
	TitleMaxLength       int      `yaml:"title_max_length" mapstructure:"title_max_length"`
	DescriptionMinLength int      `yaml:"description_min_length" mapstructure:"description_min_length"`
	DescriptionMaxLength int      `yaml:"description_max_length" mapstructure:"description_max_length"`
}

// ExperimentConfig configures proposal generation.
type ExperimentConfig struct {
	MaxProposals int     `yaml:"max_proposals" mapstructure:"max_proposals"`
	BaselineMDE  float64 `yaml:"baseline_mde" mapstructure:"baseline_mde"`
}

// ContentConfig configures the content drafter.
type ContentConfig struct {
	MaxVariants        int    `yaml:"max_variants" mapstructure:"max_variants"`
	DefaultLLMProvider string `yaml:"default_llm_provider" mapstructure:"default_llm_provider"`
}

// JobsConfig configures job request construction.
type JobsConfig struct {
	DefaultPriority string                  `yaml:"default_priority" mapstructure:"default_priority"`
	DeadlineHours   int                     `yaml:"deadline_hours" mapstructure:"deadline_hours"`
	CostCaps        map[string]cost.JobRate `yaml:"cost_caps" mapstructure:"cost_caps"`
	DefaultCostCap  cost.JobRate            `yaml:"default_cost_cap" mapstructure:"default_cost_cap"`
}

// Rates converts the configured caps for the cost calculator. Unset caps
// keep the built-in rates. Cap keys are short job names (seo_scan) since
// viper splits keys on dots.
func (j JobsConfig) Rates() cost.Rates {
	rates := cost.DefaultRates()
	for name, rate := range j.CostCaps {
		rates.Jobs[jobTypePrefix+name] = rate
	}
	if j.DefaultCostCap != (cost.JobRate{}) {
		rates.Default = j.DefaultCostCap
	}
	return rates
}

const jobTypePrefix = "autopilot.growth."

// OutputConfig configures where artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from an optional ./config.yaml and environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file, which must exist.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("GROWTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("tenant.tenant_id", "")
	v.SetDefault("tenant.project_id", "")
	v.SetDefault("profiles.dir", "profiles")
	v.SetDefault("profiles.cache", true)
	v.SetDefault("seo.exclude_paths", []string{"/_next/*", "/node_modules/*"})
	v.SetDefault("seo.max_workers", 8)
	v.SetDefault("seo.title_min_length", 10)
	v.SetDefault("seo.title_max_length", 60)
	v.SetDefault("seo.description_min_length", 50)
	v.SetDefault("seo.description_max_length", 160)
	v.SetDefault("experiments.max_proposals", 3)
	v.SetDefault("experiments.baseline_mde", 0.1)
	v.SetDefault("content.max_variants", 5)
	v.SetDefault("content.default_llm_provider", "none")
	v.SetDefault("jobs.default_priority", string(model.PriorityNormal))
	v.SetDefault("jobs.deadline_hours", 0)
	v.SetDefault("output.dir", "out")
	v.SetDefault("debug", false)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks value ranges. All problems are reported together.
func (c *Config) Validate() error {
	var problems []string

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("log.level %q is invalid", c.Log.Level))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		problems = append(problems, "log.format must be json or console")
	}
	if c.SEO.MaxWorkers < 1 || c.SEO.MaxWorkers > 64 {
		problems = append(problems, "seo.max_workers must be between 1 and 64")
	}
	if c.SEO.TitleMinLength < 0 || c.SEO.TitleMaxLength < c.SEO.TitleMinLength {
		problems = append(problems, "seo.title_max_length must be >= seo.title_min_length >= 0")
	}
	if c.SEO.DescriptionMinLength < 0 || c.SEO.DescriptionMaxLength < c.SEO.DescriptionMinLength {
		problems = append(problems, "seo.description_max_length must be >= seo.description_min_length >= 0")
	}
	if c.Experiments.MaxProposals < 1 || c.Experiments.MaxProposals > 10 {
		problems = append(problems, "experiments.max_proposals must be between 1 and 10")
	}
	if c.Experiments.BaselineMDE <= 0 || c.Experiments.BaselineMDE >= 1 {
		problems = append(problems, "experiments.baseline_mde must be between 0 and 1 (exclusive)")
	}
	if c.Content.MaxVariants < 1 || c.Content.MaxVariants > 10 {
		problems = append(problems, "content.max_variants must be between 1 and 10")
	}
	if c.Profiles.Dir == "" {
		problems = append(problems, "profiles.dir is required")
	}
	if !validPriority(c.Jobs.DefaultPriority) {
		problems = append(problems, fmt.Sprintf("jobs.default_priority %q is invalid", c.Jobs.DefaultPriority))
	}
	if c.Jobs.DeadlineHours < 0 {
		problems = append(problems, "jobs.deadline_hours must be >= 0")
	}
	for jobType, rate := range c.Jobs.CostCaps {
		if rate.BaseUSD < 0 || rate.PerUnitUSD < 0 || rate.MaxUSD < 0 {
			problems = append(problems, fmt.Sprintf("jobs.cost_caps.%s must not be negative", jobType))
		}
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func validPriority(p string) bool {
	for _, v := range model.Priorities() {
		if string(v) == p {
			return true
		}
	}
	return false
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
