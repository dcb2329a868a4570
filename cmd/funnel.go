package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/growth-cli/internal/artifact"
	"github.com/sells-group/growth-cli/internal/funnel"
	"github.com/sells-group/growth-cli/internal/model"
)

var funnelCmd = &cobra.Command{
	Use:   "funnel",
	Short: "Funnel conversion analysis",
}

var (
	funnelEvents string
	funnelName   string
	funnelSteps  []string
	funnelJSON   bool
)

var funnelAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute step conversion from an event file and write funnel-metrics.json",
	Long: `Reads events as a JSON array or JSON lines ({"event_name", "user_id",
"timestamp"}) and counts, per user, how far through the ordered steps they got.

Examples:
  growth-cli funnel analyze --events events.jsonl --name signup --steps visit,signup,purchase`,
	RunE: runFunnelAnalyze,
}

func init() {
	f := funnelAnalyzeCmd.Flags()
	f.StringVar(&funnelEvents, "events", "", "event file (required)")
	f.StringVar(&funnelName, "name", "", "funnel name (required)")
	f.StringSliceVar(&funnelSteps, "steps", nil, "ordered, comma-separated step event names (required)")
	f.String("out", "", "output directory (default from config)")
	f.BoolVar(&funnelJSON, "json", false, "print the metrics as JSON")
	addTenantFlags(funnelAnalyzeCmd)

	funnelCmd.AddCommand(funnelAnalyzeCmd)
	rootCmd.AddCommand(funnelCmd)
}

func runFunnelAnalyze(cmd *cobra.Command, _ []string) error {
	tc, err := resolveTenant(cmd, model.TenantContext{})
	if err != nil {
		return err
	}

	m, err := funnel.NewCalculator().AnalyzeFunnel(cmd.Context(), tc, funnelEvents, funnelName, funnelSteps)
	if err != nil {
		return err
	}

	path := filepath.Join(outDir(cmd), "funnel-metrics.json")
	if err := artifact.WriteJSON(path, m); err != nil {
		return err
	}
	zap.L().Info("funnel: metrics written",
		zap.String("funnel", m.FunnelName),
		zap.Int("total_users", m.TotalUsers),
		zap.String("path", path),
	)

	w := cmd.OutOrStdout()
	if funnelJSON {
		return printJSON(w, m)
	}
	tw := newTable(w, "Step", "Users", "Conversion", "Drop-off", "Drop-off rate")
	for _, s := range m.Steps {
		tw.AppendRow([]any{s.Name, s.Users, pct(s.ConversionRate), s.DropOffCount, pct(s.DropOffRate)})
	}
	biggest := "none"
	if m.BiggestDropOffStep != nil {
		biggest = *m.BiggestDropOffStep
	}
	tw.AppendFooter([]any{"overall", m.TotalUsers, pct(m.OverallConversionRate), "biggest", biggest})
	tw.Render()
	printFiles(w, []string{path})
	return nil
}

func pct(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}
