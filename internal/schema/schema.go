// Package schema validates every artifact at the boundary. Validators
// accumulate all issues and return them as one *apperr.ValidationError.
package schema

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/sells-group/growth-cli/internal/apperr"
	"github.com/sells-group/growth-cli/internal/model"
)

var (
	idPattern      = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)
	jobTypePattern = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)+$`)
	hashPattern    = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// checker accumulates issues under a path prefix.
type checker struct {
	issues []apperr.Issue
}

func (c *checker) add(path, format string, args ...any) {
	c.issues = append(c.issues, apperr.Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) err(message string) error {
	if len(c.issues) == 0 {
		return nil
	}
	return apperr.Validation(message, c.issues...)
}

func join(prefix, field string) string {
	if prefix == "" {
		return field
	}
	if strings.HasPrefix(field, "[") {
		return prefix + field
	}
	return prefix + "." + field
}

func idx(prefix string, i int) string {
	return fmt.Sprintf("%s[%d]", prefix, i)
}

func (c *checker) required(path, v string) bool {
	if strings.TrimSpace(v) == "" {
		c.add(path, "is required")
		return false
	}
	return true
}

func (c *checker) identifier(path, v string) {
	if !c.required(path, v) {
		return
	}
	if !idPattern.MatchString(v) {
		c.add(path, "must match %s", idPattern.String())
	}
}

func (c *checker) timestamp(path, v string) {
	if !c.required(path, v) {
		return
	}
	if _, err := time.Parse(time.RFC3339Nano, v); err != nil {
		c.add(path, "must be an RFC 3339 timestamp")
	}
}

func (c *checker) rate(path string, v float64) {
	if math.IsNaN(v) || v < 0 || v > 1 {
		c.add(path, "must be between 0 and 1")
	}
}

func (c *checker) nonNegative(path string, v int) {
	if v < 0 {
		c.add(path, "must be >= 0")
	}
}

func (c *checker) hash(path, v string) {
	if !hashPattern.MatchString(v) {
		c.add(path, "must be a 64-character lower-case hex sha256")
	}
}

func oneOf[T ~string](c *checker, path string, v T, allowed []T) {
	for _, a := range allowed {
		if v == a {
			return
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	if v == "" {
		c.add(path, "is required (one of %s)", strings.Join(names, ", "))
		return
	}
	c.add(path, "invalid value %q (one of %s)", string(v), strings.Join(names, ", "))
}

func (c *checker) tenant(prefix string, tc model.TenantContext) {
	c.identifier(join(prefix, "tenant_id"), tc.TenantID)
	c.identifier(join(prefix, "project_id"), tc.ProjectID)
}

func (c *checker) evidence(prefix string, e model.EvidenceLink) {
	oneOf(c, join(prefix, "type"), e.Type, model.EvidenceTypes())
	c.required(join(prefix, "path"), e.Path)
	c.required(join(prefix, "description"), e.Description)
}

func (c *checker) evidenceList(prefix string, list []model.EvidenceLink) {
	for i, e := range list {
		c.evidence(idx(prefix, i), e)
	}
}
