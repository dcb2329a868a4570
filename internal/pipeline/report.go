package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/growth-cli/internal/model"
)

// SafetyNotice closes every markdown report.
const SafetyNotice = "This toolkit is runnerless: it never executes jobs. Every job request has auto_execute=false and require_approval=true, and action jobs (experiment_run, publish_content) additionally require a policy token."

// FormatReport renders a report as markdown.
func FormatReport(r *model.ReportEnvelope) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Growth Analysis Report: %s\n", r.ReportID)
	fmt.Fprintf(&b, "Tenant: %s\n", r.TenantID)
	fmt.Fprintf(&b, "Project: %s\n", r.ProjectID)
	fmt.Fprintf(&b, "Trace: %s\n", r.TraceID)
	fmt.Fprintf(&b, "Created: %s\n\n", r.CreatedAt)

	b.WriteString("## Summary\n")
	keys := make([]string, 0, len(r.Summary))
	for k := range r.Summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := r.Summary[k]
		if v == nil {
			v = "none"
		}
		fmt.Fprintf(&b, "- %s: %v\n", k, v)
	}
	b.WriteString("\n")

	b.WriteString("## Findings\n")
	if len(r.Findings) == 0 {
		b.WriteString("No findings.\n")
	}
	for _, f := range r.Findings {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", f.Severity, f.Title, f.Description)
	}
	b.WriteString("\n")

	b.WriteString("## Recommendations\n")
	if len(r.Recommendations) == 0 {
		b.WriteString("No recommendations.\n")
	}
	for _, rec := range r.Recommendations {
		fmt.Fprintf(&b, "- %s: %s", rec.Title, rec.Description)
		if rec.JobType != "" {
			fmt.Fprintf(&b, " (`%s`)", rec.JobType)
		}
		if rec.RequiresPolicyToken {
			b.WriteString(" (requires policy token)")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("## Safety\n")
	b.WriteString(SafetyNotice + "\n")

	return b.String()
}
