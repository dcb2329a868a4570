// Package artifact writes analysis outputs as flat files.
package artifact

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/growth-cli/internal/apperr"
	"github.com/sells-group/growth-cli/internal/canonical"
	"github.com/sells-group/growth-cli/internal/pipeline"
)

// Artifact file names.
const (
	ReportJSON = "report.json"
	BundleJSON = "request-bundle.json"
	ReportMD   = "report.md"
)

// WriteAnalysis writes the report, the bundle and the markdown rendering
// into dir and returns the written paths in that order.
func WriteAnalysis(dir string, res *pipeline.Result) ([]string, error) {
	if res == nil || res.Report == nil || res.Bundle == nil {
		return nil, apperr.Unexpected(eris.New("artifact: incomplete analysis result"), "")
	}
	paths := []string{
		filepath.Join(dir, ReportJSON),
		filepath.Join(dir, BundleJSON),
		filepath.Join(dir, ReportMD),
	}
	if err := WriteJSON(paths[0], res.Report); err != nil {
		return nil, err
	}
	if err := WriteJSON(paths[1], res.Bundle); err != nil {
		return nil, err
	}
	if err := WriteText(paths[2], pipeline.FormatReport(res.Report)); err != nil {
		return nil, err
	}
	return paths, nil
}

// WriteJSON writes v with sorted keys and two-space indentation, so equal
// values always produce identical bytes.
func WriteJSON(path string, v any) error {
	out, err := canonical.SerializeDeterministic(v)
	if err != nil {
		return apperr.Unexpected(err, "artifact: serialize "+filepath.Base(path))
	}
	return WriteText(path, out)
}

// WriteText writes s to path, creating parent directories. A trailing
// newline is added when missing.
func WriteText(path, s string) error {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		s += "\n"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperr.Dependency(eris.Wrapf(err, "artifact: create directory for %s", path), path)
	}
	if err := os.WriteFile(path, []byte(s), 0o644); err != nil {
		return apperr.Dependency(eris.Wrapf(err, "artifact: write %s", path), path)
	}
	zap.L().Debug("artifact: wrote file", zap.String("path", path), zap.Int("bytes", len(s)))
	return nil
}
