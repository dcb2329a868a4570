package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/growth-cli/internal/artifact"
	"github.com/sells-group/growth-cli/internal/model"
	"github.com/sells-group/growth-cli/internal/seo"
)

var seoCmd = &cobra.Command{
	Use:   "seo",
	Short: "SEO audits of static site exports",
}

var (
	seoPath       string
	seoSourceType string
	seoJSON       bool
)

var seoScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan an HTML or Next.js export and write seo-audit.json",
	Long: `Walks every .html file under --path, checks titles, meta descriptions,
headings, image alt text, canonical links, lang, robots and internal links,
and writes seo-audit.json plus a seo_scan job request.

Examples:
  growth-cli seo scan --path ./site
  growth-cli seo scan --path ./web --source-type nextjs_export --out out`,
	RunE: runSEOScan,
}

func init() {
	f := seoScanCmd.Flags()
	f.StringVar(&seoPath, "path", "", "site export directory (required)")
	f.StringVar(&seoSourceType, "source-type", string(model.SourceHTMLExport), "html_export or nextjs_export")
	f.String("out", "", "output directory (default from config)")
	f.String("trace", "", "trace id (default generated)")
	f.BoolVar(&seoJSON, "json", false, "print the audit as JSON")
	addTenantFlags(seoScanCmd)

	seoCmd.AddCommand(seoScanCmd)
	rootCmd.AddCommand(seoCmd)
}

func runSEOScan(cmd *cobra.Command, _ []string) error {
	tc, err := resolveTenant(cmd, model.TenantContext{})
	if err != nil {
		return err
	}
	log := zap.L().With(zap.String("command", "seo scan"), zap.String("path", seoPath))

	sourceType := model.SEOSourceType(seoSourceType)
	audit, err := seo.NewScanner(cfg.SEO).ScanSite(cmd.Context(), tc, sourceType, seoPath)
	if err != nil {
		return err
	}

	dir := outDir(cmd)
	auditPath := filepath.Join(dir, "seo-audit.json")
	if err := artifact.WriteJSON(auditPath, audit); err != nil {
		return err
	}
	req := newBuilder().SEOScan(tc, model.SEOScanRequest{SourcePath: seoPath, SourceType: sourceType}, audit, "seo scan")
	jobPath, err := writeJob(dir, "seo-scan.json", req, traceID(cmd))
	if err != nil {
		return err
	}
	log.Info("seo: scan written", zap.Int("pages", audit.PagesScanned), zap.Int("findings", audit.Summary.Total))

	w := cmd.OutOrStdout()
	if seoJSON {
		return printJSON(w, audit)
	}
	tw := newTable(w, "Severity", "Rule", "Page", "Message")
	for _, f := range audit.Findings {
		tw.AppendRow([]any{f.Severity, f.Rule, f.Page, f.Message})
	}
	tw.AppendFooter([]any{"", "", fmt.Sprintf("%d pages", audit.PagesScanned), formatSummary(audit.Summary)})
	tw.Render()
	printFiles(w, []string{auditPath, jobPath})
	return nil
}

func formatSummary(s model.SEOSummary) string {
	return fmt.Sprintf("%d issues (%d critical, %d warning, %d info)", s.Total, s.Critical, s.Warning, s.Info)
}
