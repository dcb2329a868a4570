// Package seo scans exported static sites for on-page SEO issues.
package seo

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/growth-cli/internal/apperr"
	"github.com/sells-group/growth-cli/internal/canonical"
	"github.com/sells-group/growth-cli/internal/config"
	"github.com/sells-group/growth-cli/internal/model"
)

const defaultMaxWorkers = 8

// Scanner audits a directory of HTML files.
type Scanner struct {
	matcher *PathMatcher
	limits  limits
	workers int
	now     func() time.Time
}

// NewScanner creates a Scanner. Zero-valued settings use defaults.
func NewScanner(cfg config.SEOConfig) *Scanner {
	s := &Scanner{
		matcher: NewPathMatcher(cfg.ExcludePaths),
		limits: limits{
			titleMin: orDefault(cfg.TitleMinLength, 10),
			titleMax: orDefault(cfg.TitleMaxLength, 60),
			descMin:  orDefault(cfg.DescriptionMinLength, 50),
			descMax:  orDefault(cfg.DescriptionMaxLength, 160),
		},
		workers: orDefault(cfg.MaxWorkers, defaultMaxWorkers),
		now:     time.Now,
	}
	return s
}

// WithClock replaces the clock used for scanned_at.
func (s *Scanner) WithClock(now func() time.Time) *Scanner {
	s.now = now
	return s
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// ScanSite audits every HTML file under sourcePath. A nextjs_export whose
// build output lives in out/ is scanned there.
func (s *Scanner) ScanSite(ctx context.Context, tc model.TenantContext, sourceType model.SEOSourceType, sourcePath string) (*model.SEOAudit, error) {
	if !validSourceType(sourceType) {
		return nil, apperr.Validation("invalid seo scan request", apperr.Issue{
			Path:    "source_type",
			Message: "invalid value " + string(sourceType),
		})
	}

	root := sourcePath
	info, err := os.Stat(root)
	if err != nil {
		return nil, apperr.Dependency(eris.Wrap(err, "seo: stat source path"), sourcePath)
	}
	if !info.IsDir() {
		return nil, apperr.Dependency(eris.Errorf("seo: source path %s is not a directory", sourcePath), sourcePath)
	}
	if sourceType == model.SourceNextJSExport {
		if out, err := os.Stat(filepath.Join(root, "out")); err == nil && out.IsDir() {
			root = filepath.Join(root, "out")
		}
	}

	log := zap.L().With(zap.String("source_path", sourcePath), zap.String("source_type", string(sourceType)))

	files, err := s.collect(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, apperr.Dependency(eris.Errorf("seo: no HTML files found in %s", root), sourcePath)
	}
	log.Debug("seo: scanning pages", zap.Int("pages", len(files)))

	exists := func(rel string) bool {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
		return err == nil && !info.IsDir()
	}

	results := make([][]model.SEOFinding, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				return apperr.Dependency(eris.Wrapf(err, "seo: read %s", rel), rel)
			}
			p, err := parsePage(rel, bytes.NewReader(data))
			if err != nil {
				return apperr.Dependency(err, rel)
			}
			results[i] = evaluate(p, s.limits, exists)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	findings := make([]model.SEOFinding, 0)
	for _, r := range results {
		findings = append(findings, r...)
	}
	sortFindings(findings)

	audit := &model.SEOAudit{
		TenantID:     tc.TenantID,
		ProjectID:    tc.ProjectID,
		ScannedAt:    model.FormatTime(s.now()),
		SourceType:   sourceType,
		SourcePath:   sourcePath,
		PagesScanned: len(files),
		Findings:     findings,
	}
	if err := assignIDs(audit, files); err != nil {
		return nil, err
	}
	audit.Summary = Summarize(findings)

	log.Info("seo: scan complete",
		zap.Int("pages", audit.PagesScanned),
		zap.Int("findings", audit.Summary.Total),
		zap.Int("critical", audit.Summary.Critical))
	return audit, nil
}

// collect returns site-relative, slash-separated paths of every HTML
// file under root that is not excluded, in lexical order.
func (s *Scanner) collect(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && s.matcher.IsExcluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(p))
		if (ext == ".html" || ext == ".htm") && !s.matcher.IsExcluded(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Dependency(eris.Wrap(err, "seo: walk source path"), root)
	}
	sort.Strings(files)
	return files, nil
}

func validSourceType(t model.SEOSourceType) bool {
	for _, v := range model.SEOSourceTypes() {
		if t == v {
			return true
		}
	}
	return false
}

func sortFindings(list []model.SEOFinding) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Element < b.Element
	})
}

// assignIDs derives finding and audit ids from content so repeated scans
// of the same site produce the same ids.
func assignIDs(a *model.SEOAudit, pages []string) error {
	ids := make([]string, len(a.Findings))
	for i := range a.Findings {
		f := &a.Findings[i]
		h, err := canonical.StableHash(map[string]any{
			"rule":    f.Rule,
			"page":    f.Page,
			"element": f.Element,
		})
		if err != nil {
			return eris.Wrap(err, "seo: finding id")
		}
		f.ID = "seo-" + h[:12]
		ids[i] = f.ID
	}
	h, err := canonical.StableHash(map[string]any{
		"source_type": string(a.SourceType),
		"pages":       pages,
		"findings":    ids,
	})
	if err != nil {
		return eris.Wrap(err, "seo: audit id")
	}
	a.AuditID = "audit-" + h[:16]
	return nil
}

// Summarize counts findings by severity.
func Summarize(findings []model.SEOFinding) model.SEOSummary {
	s := model.SEOSummary{Total: len(findings)}
	for _, f := range findings {
		switch f.Severity {
		case model.AuditCritical:
			s.Critical++
		case model.AuditWarning:
			s.Warning++
		case model.AuditInfo:
			s.Info++
		}
	}
	return s
}
