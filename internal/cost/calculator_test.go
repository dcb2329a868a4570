package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testRates() Rates {
	return Rates{
		Jobs: map[string]JobRate{
			"scan":  {BaseUSD: 0.50, PerUnitUSD: 0.01, MaxUSD: 1.00},
			"draft": {BaseUSD: 0.25, PerUnitUSD: 0.10},
		},
		Default: JobRate{BaseUSD: 2.00, MaxUSD: 3.00},
	}
}

func TestCap(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(testRates())

	tests := []struct {
		name    string
		jobType string
		units   int
		want    float64
	}{
		{name: "base only", jobType: "scan", units: 0, want: 0.50},
		{name: "per unit", jobType: "scan", units: 20, want: 0.70},
		{name: "capped", jobType: "scan", units: 500, want: 1.00},
		{name: "uncapped", jobType: "draft", units: 30, want: 3.25},
		{name: "negative units clamp", jobType: "draft", units: -4, want: 0.25},
		{name: "default rate", jobType: "unknown", units: 10, want: 2.00},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, calc.Cap(tt.jobType, tt.units), 0.0001)
		})
	}
}

func TestDefaultRates_CoverKnownJobTypes(t *testing.T) {
	t.Parallel()
	rates := DefaultRates()
	for _, jt := range []string{
		"autopilot.growth.seo_scan",
		"autopilot.growth.experiment_propose",
		"autopilot.growth.content_draft",
		"autopilot.growth.experiment_run",
		"autopilot.growth.publish_content",
	} {
		r, ok := rates.Jobs[jt]
		assert.True(t, ok, jt)
		assert.Greater(t, r.MaxUSD, 0.0, jt)
	}
}
