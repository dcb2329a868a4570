package apperr

import (
	"regexp"
	"strings"
)

// Redacted replaces secret values in logs and error context.
const Redacted = "[REDACTED]"

var secretKeys = []string{
	"api_key",
	"apikey",
	"password",
	"passwd",
	"secret",
	"token",
	"authorization",
	"access_key",
	"private_key",
	"client_secret",
	"policy_token",
}

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_\-]{8,}`),
	regexp.MustCompile(`sk-[A-Za-z0-9_\-]{16,}`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`ghp_[A-Za-z0-9]{20,}`),
	regexp.MustCompile(`xox[bpas]-[A-Za-z0-9\-]{10,}`),
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._\-]{8,}`),
}

// IsSecretKey reports whether a context key names a secret.
func IsSecretKey(key string) bool {
	k := strings.ToLower(strings.ReplaceAll(key, "-", "_"))
	for _, s := range secretKeys {
		if k == s || strings.HasSuffix(k, "_"+s) || strings.HasPrefix(k, s+"_") {
			return true
		}
	}
	return false
}

// RedactString masks secret-shaped substrings of s.
func RedactString(s string) string {
	for _, p := range secretPatterns {
		s = p.ReplaceAllString(s, Redacted)
	}
	return s
}

// Redact returns a copy of m with denylisted keys and secret-shaped values
// masked. Nested maps and slices are walked.
func Redact(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if IsSecretKey(k) {
			out[k] = Redacted
			continue
		}
		out[k] = redactValue(v)
	}
	return out
}

func redactValue(v any) any {
	switch t := v.(type) {
	case string:
		return RedactString(t)
	case map[string]any:
		return Redact(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = redactValue(e)
		}
		return out
	case []string:
		out := make([]string, len(t))
		for i, e := range t {
			out[i] = RedactString(e)
		}
		return out
	default:
		return v
	}
}
