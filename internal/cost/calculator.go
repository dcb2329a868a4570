package cost

import "math"

// JobRate prices one job type: a flat base plus a per-unit charge (pages
// scanned, proposals, variants), capped at Max.
type JobRate struct {
	BaseUSD    float64 `yaml:"base_usd" mapstructure:"base_usd"`
	PerUnitUSD float64 `yaml:"per_unit_usd" mapstructure:"per_unit_usd"`
	MaxUSD     float64 `yaml:"max_usd" mapstructure:"max_usd"`
}

// Rates holds per-job-type pricing keyed by job type.
type Rates struct {
	Jobs    map[string]JobRate `yaml:"jobs" mapstructure:"jobs"`
	Default JobRate            `yaml:"default" mapstructure:"default"`
}

// Calculator computes max_cost_usd caps for job requests.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Rate returns the rate for jobType, falling back to the default rate.
func (c *Calculator) Rate(jobType string) JobRate {
	if r, ok := c.rates.Jobs[jobType]; ok {
		return r
	}
	return c.rates.Default
}

// Cap returns the cost cap in USD for a job of jobType covering units of
// work, rounded to cents. A zero MaxUSD means uncapped.
func (c *Calculator) Cap(jobType string, units int) float64 {
	r := c.Rate(jobType)
	if units < 0 {
		units = 0
	}
	v := r.BaseUSD + r.PerUnitUSD*float64(units)
	if r.MaxUSD > 0 && v > r.MaxUSD {
		v = r.MaxUSD
	}
	return math.Round(v*100) / 100
}

// DefaultRates returns the default job pricing.
func DefaultRates() Rates {
	return Rates{
		Jobs: map[string]JobRate{
			"autopilot.growth.seo_scan":           {BaseUSD: 0.50, PerUnitUSD: 0.01, MaxUSD: 5.00},
			"autopilot.growth.experiment_propose": {BaseUSD: 0.25, PerUnitUSD: 0.05, MaxUSD: 2.00},
			"autopilot.growth.content_draft":      {BaseUSD: 0.50, PerUnitUSD: 0.10, MaxUSD: 3.00},
			"autopilot.growth.experiment_run":     {BaseUSD: 5.00, PerUnitUSD: 0, MaxUSD: 50.00},
			"autopilot.growth.publish_content":    {BaseUSD: 1.00, PerUnitUSD: 0.25, MaxUSD: 10.00},
		},
		Default: JobRate{BaseUSD: 1.00, MaxUSD: 10.00},
	}
}
