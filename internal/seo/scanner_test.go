package seo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/growth-cli/internal/apperr"
	"github.com/sells-group/growth-cli/internal/config"
	"github.com/sells-group/growth-cli/internal/model"
	"github.com/sells-group/growth-cli/internal/schema"
)

var tenant = model.TenantContext{TenantID: "acme", ProjectID: "site"}

const description = "Acme builds reliable widgets for teams that ship fast and care about quality."

// goodPage renders a page that passes every rule.
func goodPage(title string, links ...string) string {
	body := ""
	for _, l := range links {
		body += fmt.Sprintf(`<a href="%s">link</a>`, l)
	}
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
<head>
<title>%s</title>
<meta name="description" content="%s">
<link rel="canonical" href="https://acme.test/">
</head>
<body><h1>Widgets</h1><img src="a.png" alt="A widget">%s</body>
</html>`, title, description, body)
}

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func fixedClock(ts string) func() time.Time {
	return func() time.Time {
		t, _ := time.Parse(time.RFC3339, ts)
		return t
	}
}

func newTestScanner() *Scanner {
	return NewScanner(config.SEOConfig{MaxWorkers: 2}).WithClock(fixedClock("2024-05-01T12:00:00Z"))
}

func TestScanSite_FivePagesOneMissingTitle(t *testing.T) {
	root := writeSite(t, map[string]string{
		"index.html":     goodPage("Acme Widgets Home", "about.html", "pricing.html", "blog/post.html", "https://example.com/x.html", "#top"),
		"about.html":     goodPage("About Acme Widgets", "/index.html"),
		"pricing.html":   goodPage("Acme Widgets Pricing", "index.html?ref=nav"),
		"blog/post.html": goodPage("Widget Engineering Blog", "../index.html", "mailto:hi@acme.test"),
		"contact.html":   goodPage(""),
		"_next/x.html":   "<html><body>asset</body></html>",
		"styles.css":     "body{}",
	})

	audit, err := newTestScanner().ScanSite(context.Background(), tenant, model.SourceHTMLExport, root)
	require.NoError(t, err)

	assert.Equal(t, 5, audit.PagesScanned)
	require.Len(t, audit.Findings, 1)
	f := audit.Findings[0]
	assert.Equal(t, RuleMissingTitle, f.Rule)
	assert.Equal(t, model.AuditCritical, f.Severity)
	assert.Equal(t, "contact.html", f.Page)
	assert.Equal(t, model.SEOSummary{Total: 1, Critical: 1}, audit.Summary)
	assert.True(t, audit.HasCritical())
	assert.Equal(t, "2024-05-01T12:00:00.000Z", audit.ScannedAt)
	assert.Equal(t, "acme", audit.TenantID)

	assert.NoError(t, schema.ValidateSEOAudit(*audit))
}

func TestScanSite_BrokenInternalLink(t *testing.T) {
	root := writeSite(t, map[string]string{
		"index.html":      goodPage("Acme Widgets Home", "missing.html", "docs/guide.html", "../outside.html"),
		"docs/guide.html": goodPage("Acme Widgets Guide", "../gone.htm"),
	})

	audit, err := newTestScanner().ScanSite(context.Background(), tenant, model.SourceHTMLExport, root)
	require.NoError(t, err)

	var broken []string
	for _, f := range audit.Findings {
		if f.Rule == RuleBrokenInternalLink {
			assert.Equal(t, model.AuditCritical, f.Severity)
			broken = append(broken, f.Page+" -> "+f.Element)
		}
	}
	assert.Equal(t, []string{
		"docs/guide.html -> ../gone.htm",
		"index.html -> ../outside.html",
		"index.html -> missing.html",
	}, broken)
}

func TestScanSite_FindingsSortedAndIDsStable(t *testing.T) {
	files := map[string]string{
		"b.html": `<html><head><title>x</title></head><body><h1>a</h1><h1>b</h1><img src="x.png"></body></html>`,
		"a.html": `<html><head><meta name="robots" content="NOINDEX, follow"></head><body></body></html>`,
	}
	root := writeSite(t, files)

	first, err := newTestScanner().ScanSite(context.Background(), tenant, model.SourceHTMLExport, root)
	require.NoError(t, err)
	second, err := NewScanner(config.SEOConfig{}).ScanSite(context.Background(), tenant, model.SourceHTMLExport, root)
	require.NoError(t, err)

	assert.Equal(t, first.AuditID, second.AuditID)
	assert.Equal(t, first.Findings, second.Findings)

	for i := 1; i < len(first.Findings); i++ {
		prev, cur := first.Findings[i-1], first.Findings[i]
		if prev.Page == cur.Page {
			assert.LessOrEqual(t, prev.Rule, cur.Rule)
		} else {
			assert.Less(t, prev.Page, cur.Page)
		}
	}

	rules := map[string]bool{}
	for _, f := range first.Findings {
		rules[f.Page+":"+f.Rule] = true
		assert.Regexp(t, `^seo-[0-9a-f]{12}$`, f.ID)
	}
	for _, want := range []string{
		"a.html:missing_title", "a.html:missing_meta_description", "a.html:missing_h1",
		"a.html:noindex", "a.html:missing_canonical", "a.html:missing_lang",
		"b.html:title_too_short", "b.html:multiple_h1", "b.html:img_missing_alt",
	} {
		assert.True(t, rules[want], want)
	}
	assert.NoError(t, schema.ValidateSEOAudit(*first))
}

func TestScanSite_NextJSExportUsesOutDir(t *testing.T) {
	root := writeSite(t, map[string]string{
		"out/index.html":      goodPage("Acme Widgets Home"),
		"src/components.html": "<html></html>",
	})

	audit, err := newTestScanner().ScanSite(context.Background(), tenant, model.SourceNextJSExport, root)
	require.NoError(t, err)
	assert.Equal(t, 1, audit.PagesScanned)
	assert.Empty(t, audit.Findings)
	assert.Equal(t, model.SourceNextJSExport, audit.SourceType)
}

func TestScanSite_NoHTMLFiles(t *testing.T) {
	root := writeSite(t, map[string]string{"readme.txt": "hi"})

	_, err := newTestScanner().ScanSite(context.Background(), tenant, model.SourceHTMLExport, root)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeDependency, apperr.Classify(err))
	assert.Contains(t, err.Error(), "no HTML files found")
}

func TestScanSite_MissingSourcePath(t *testing.T) {
	_, err := newTestScanner().ScanSite(context.Background(), tenant, model.SourceHTMLExport, filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, apperr.CodeDependency, apperr.Classify(err))
	assert.True(t, apperr.IsRetryable(err))
}

func TestScanSite_InvalidSourceType(t *testing.T) {
	_, err := newTestScanner().ScanSite(context.Background(), tenant, "wordpress", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.Classify(err))
}

func TestScanSite_CancelledContext(t *testing.T) {
	root := writeSite(t, map[string]string{"index.html": goodPage("Acme Widgets Home")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScanner().ScanSite(ctx, tenant, model.SourceHTMLExport, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarize(t *testing.T) {
	got := Summarize([]model.SEOFinding{
		{Severity: model.AuditCritical},
		{Severity: model.AuditWarning},
		{Severity: model.AuditWarning},
		{Severity: model.AuditInfo},
	})
	assert.Equal(t, model.SEOSummary{Total: 4, Critical: 1, Warning: 2, Info: 1}, got)
}
