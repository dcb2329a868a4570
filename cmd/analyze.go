package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/growth-cli/internal/artifact"
	"github.com/sells-group/growth-cli/internal/model"
	"github.com/sells-group/growth-cli/internal/pipeline"
	"github.com/sells-group/growth-cli/internal/schema"
)

var (
	analyzeInputs string
	analyzeStable bool
	analyzeJSON   bool
)

var analyzeCmd = &cobra.Command{
	Use:     "analyze",
	Aliases: []string{"plan", "run"},
	Short:   "Run every requested analysis and write report + job request bundle",
	Long: `Reads an inputs document (JSON, comments allowed) with any of seo_audit,
seo_scan, funnel_metrics, funnel_analysis, experiment_proposals and
content_draft, runs the matching phases and writes report.json,
request-bundle.json and report.md.

Relative paths inside the inputs document are resolved against its directory.

Examples:
  growth-cli analyze --inputs inputs.json --out out
  growth-cli plan --inputs inputs.json --tenant acme --project web --stable-output`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeInputs, "inputs", "", "path to the inputs document (required)")
	f.String("trace", "", "trace id (default from inputs, or generated)")
	f.String("out", "", "output directory (default from config)")
	f.BoolVar(&analyzeStable, "stable-output", false, "replace timestamps and generated ids with fixed placeholders")
	f.BoolVar(&analyzeJSON, "json", false, "print the report and bundle as JSON")
	addTenantFlags(analyzeCmd)

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	data, err := readInput(analyzeInputs, "--inputs")
	if err != nil {
		return err
	}
	in, err := schema.ParseAnalyzeInput(data)
	if err != nil {
		return err
	}
	tc, err := resolveTenant(cmd, model.TenantContext{TenantID: in.TenantID, ProjectID: in.ProjectID})
	if err != nil {
		return err
	}
	trace, _ := cmd.Flags().GetString("trace")

	log := zap.L().With(zap.String("command", "analyze"), zap.String("inputs", analyzeInputs))
	log.Info("analyze: starting")

	p := pipeline.New(cfg, pipeline.Collaborators{})
	res, err := p.Analyze(ctx, *in, pipeline.Options{
		Tenant:       &tc,
		TraceID:      trace,
		StableOutput: analyzeStable,
		BaseDir:      filepath.Dir(analyzeInputs),
	})
	if err != nil {
		return err
	}

	dir := outDir(cmd)
	paths, err := artifact.WriteAnalysis(dir, res)
	if err != nil {
		return err
	}
	log.Info("analyze: complete", zap.String("out", dir), zap.String("report_hash", res.Report.CanonicalHash))

	w := cmd.OutOrStdout()
	if analyzeJSON {
		return printJSON(w, map[string]any{
			"report": res.Report,
			"bundle": res.Bundle,
			"files":  paths,
		})
	}

	fmt.Fprintf(w, "Report %s (tenant %s, project %s, trace %s)\n", res.Report.ReportID, tc.TenantID, tc.ProjectID, res.Report.TraceID)
	findings := newTable(w, "#", "Severity", "Finding")
	for i, f := range res.Report.Findings {
		findings.AppendRow([]any{i + 1, f.Severity, f.Title})
	}
	findings.Render()

	requests := newTable(w, "Job type", "Idempotency key", "Status", "Policy token")
	for _, e := range res.Bundle.Requests {
		token := ""
		if e.RequiresPolicyToken {
			token = "required"
		}
		requests.AppendRow([]any{e.Request.JobType, shortKey(e.IdempotencyKey), e.JobTypeStatus, token})
	}
	requests.Render()

	printFiles(w, paths)
	return nil
}

func shortKey(k string) string {
	if len(k) > 12 {
		return k[:12]
	}
	return k
}
