// Package funnel computes ordered conversion funnels from event logs.
package funnel

import (
	"context"
	"math"
	"os"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/growth-cli/internal/apperr"
	"github.com/sells-group/growth-cli/internal/model"
)

// Calculator reads event files and aggregates funnel metrics.
type Calculator struct {
	now func() time.Time
}

// NewCalculator creates a Calculator using the wall clock.
func NewCalculator() *Calculator {
	return &Calculator{now: time.Now}
}

// WithClock replaces the clock used for computed_at.
func (c *Calculator) WithClock(now func() time.Time) *Calculator {
	c.now = now
	return c
}

// AnalyzeFunnel reads sourceFile and computes metrics for the ordered steps.
func (c *Calculator) AnalyzeFunnel(ctx context.Context, tc model.TenantContext, sourceFile, funnelName string, steps []string) (*model.FunnelMetrics, error) {
	if err := checkSteps(funnelName, steps); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(sourceFile)
	if err != nil {
		return nil, apperr.Dependency(eris.Wrap(err, "funnel: read event file"), sourceFile)
	}
	events, err := ParseEvents(data)
	if err != nil {
		return nil, err
	}

	m := Compute(events, steps)
	m.TenantID = tc.TenantID
	m.ProjectID = tc.ProjectID
	m.FunnelName = funnelName
	m.SourceFile = sourceFile
	m.ComputedAt = model.FormatTime(c.now())
	for i := range m.Evidence {
		m.Evidence[i].Path = sourceFile + m.Evidence[i].Path
	}

	zap.L().Info("funnel: analysis complete",
		zap.String("funnel", funnelName),
		zap.Int("events", len(events)),
		zap.Int("total_users", m.TotalUsers))
	return m, nil
}

func checkSteps(funnelName string, steps []string) error {
	var issues []apperr.Issue
	if funnelName == "" {
		issues = append(issues, apperr.Issue{Path: "funnel_name", Message: "is required"})
	}
	if len(steps) < 2 {
		issues = append(issues, apperr.Issue{Path: "steps", Message: "must contain at least 2 steps"})
	}
	seen := make(map[string]bool, len(steps))
	for _, s := range steps {
		if s == "" {
			issues = append(issues, apperr.Issue{Path: "steps", Message: "step names must not be empty"})
		} else if seen[s] {
			issues = append(issues, apperr.Issue{Path: "steps", Message: "duplicate step " + s})
		}
		seen[s] = true
	}
	if len(issues) > 0 {
		return apperr.Validation("invalid funnel analysis request", issues...)
	}
	return nil
}

// Compute aggregates events into per-step numbers. A user reaches step i
// once they have fired steps 0..i in order; each user's events are
// ordered by timestamp, then by position in the file. Identity and
// timestamp fields of the result are left for the caller.
func Compute(events []Event, steps []string) *model.FunnelMetrics {
	byUser := make(map[string][]Event)
	var first, last time.Time
	for _, e := range events {
		byUser[e.UserID] = append(byUser[e.UserID], e)
		if e.at.IsZero() {
			continue
		}
		if first.IsZero() || e.at.Before(first) {
			first = e.at
		}
		if e.at.After(last) {
			last = e.at
		}
	}

	reached := make([]int, len(steps))
	for _, evs := range byUser {
		sort.SliceStable(evs, func(i, j int) bool {
			if !evs[i].at.Equal(evs[j].at) {
				return evs[i].at.Before(evs[j].at)
			}
			return evs[i].seq < evs[j].seq
		})
		k := 0
		for _, e := range evs {
			if k < len(steps) && e.name == steps[k] {
				reached[k]++
				k++
			}
		}
	}

	m := &model.FunnelMetrics{
		Steps:    make([]model.FunnelStep, len(steps)),
		Evidence: make([]model.EvidenceLink, 0, len(steps)+1),
	}
	if len(steps) > 0 {
		m.TotalUsers = reached[0]
	}
	for i, name := range steps {
		s := model.FunnelStep{Name: name, Users: reached[i]}
		s.ConversionRate = ratio(reached[i], m.TotalUsers)
		if i > 0 {
			s.DropOffCount = reached[i-1] - reached[i]
			s.DropOffRate = ratio(s.DropOffCount, reached[i-1])
		}
		m.Steps[i] = s
		m.Evidence = append(m.Evidence, model.EvidenceLink{
			Type:        model.EvidenceEventCount,
			Path:        "#" + name,
			Description: "users reaching " + name,
			Value:       reached[i],
		})
	}
	if len(steps) > 0 {
		m.OverallConversionRate = ratio(reached[len(steps)-1], m.TotalUsers)
	}
	m.BiggestDropOffStep = BiggestDropOff(m.Steps)
	m.Evidence = append(m.Evidence, model.EvidenceLink{
		Type:        model.EvidenceCalculation,
		Path:        "#overall_conversion_rate",
		Description: "users completing the funnel / users entering it",
		Value:       m.OverallConversionRate,
	})
	if !first.IsZero() {
		m.PeriodStart = model.FormatTime(first)
		m.PeriodEnd = model.FormatTime(last)
	}
	return m
}

// BiggestDropOff returns the step with the largest positive drop-off rate,
// the earliest one on ties, or nil when no step loses users.
func BiggestDropOff(steps []model.FunnelStep) *string {
	best := -1
	for i, s := range steps {
		if s.DropOffRate > 0 && (best < 0 || s.DropOffRate > steps[best].DropOffRate) {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	name := steps[best].Name
	return &name
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return Round4(float64(n) / float64(d))
}

// Round4 rounds to 4 decimal places.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
