package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/growth-cli/internal/apperr"
	"github.com/sells-group/growth-cli/internal/artifact"
	"github.com/sells-group/growth-cli/internal/experiment"
	"github.com/sells-group/growth-cli/internal/model"
	"github.com/sells-group/growth-cli/internal/schema"
)

var experimentsCmd = &cobra.Command{
	Use:   "experiments",
	Short: "Experiment proposals from funnel metrics",
}

var (
	experimentsMetrics string
	experimentsMax     int
	experimentsJSON    bool
)

var experimentsProposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Propose A/B tests for the leakiest funnel steps",
	Long: `Reads funnel-metrics.json and writes experiment-proposals.json plus one
experiment_run job request per proposal. Experiment runs are action jobs:
they require approval and a policy token before anything executes.`,
	RunE: runExperimentsPropose,
}

func init() {
	f := experimentsProposeCmd.Flags()
	f.StringVar(&experimentsMetrics, "metrics", "", "funnel metrics file (required)")
	f.IntVar(&experimentsMax, "max", 0, "maximum proposals (default from config)")
	f.String("out", "", "output directory (default from config)")
	f.String("trace", "", "trace id (default generated)")
	f.BoolVar(&experimentsJSON, "json", false, "print the proposals as JSON")
	addTenantFlags(experimentsProposeCmd)

	experimentsCmd.AddCommand(experimentsProposeCmd)
	rootCmd.AddCommand(experimentsCmd)
}

func runExperimentsPropose(cmd *cobra.Command, _ []string) error {
	if experimentsMax < 0 || experimentsMax > experiment.MaxProposals {
		return apperr.Validation("invalid flags", apperr.Issue{Path: "--max", Message: fmt.Sprintf("must be between 0 and %d", experiment.MaxProposals)})
	}
	data, err := readInput(experimentsMetrics, "--metrics")
	if err != nil {
		return err
	}
	m, err := schema.ParseFunnelMetrics(data)
	if err != nil {
		return err
	}
	tc, err := resolveTenant(cmd, model.TenantContext{TenantID: m.TenantID, ProjectID: m.ProjectID})
	if err != nil {
		return err
	}

	proposals := experiment.NewProposer(cfg.Experiments.MaxProposals, cfg.Experiments.BaselineMDE).
		ProposeExperiments(experiment.Options{Tenant: tc, FunnelMetrics: m, MaxProposals: experimentsMax})

	dir := outDir(cmd)
	paths := []string{filepath.Join(dir, "experiment-proposals.json")}
	if err := artifact.WriteJSON(paths[0], proposals); err != nil {
		return err
	}
	builder, trace := newBuilder(), traceID(cmd)
	for i, p := range proposals {
		path, err := writeJob(dir, fmt.Sprintf("experiment-run-%d.json", i+1), builder.ExperimentRun(tc, p, "experiments propose"), trace)
		if err != nil {
			return err
		}
		paths = append(paths, path)
	}
	zap.L().Info("experiments: proposals written", zap.Int("proposals", len(proposals)), zap.String("funnel", m.FunnelName))

	w := cmd.OutOrStdout()
	if experimentsJSON {
		return printJSON(w, proposals)
	}
	tw := newTable(w, "Proposal", "Target step", "Baseline", "Sample/variant", "Days")
	for _, p := range proposals {
		days := "-"
		if p.EstimatedDurationDays != nil {
			days = fmt.Sprint(*p.EstimatedDurationDays)
		}
		tw.AppendRow([]any{p.Name, p.TargetStep, pct(p.BaselineRate), p.SampleSizePerVariant, days})
	}
	tw.Render()
	fmt.Fprintln(w, "experiment_run jobs require approval and a policy token")
	printFiles(w, paths)
	return nil
}
