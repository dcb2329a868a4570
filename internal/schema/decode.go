package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/sells-group/growth-cli/internal/apperr"
	"github.com/sells-group/growth-cli/internal/model"
)

// decode unmarshals JSON (comments and trailing commas allowed) into v.
// Decode failures become validation issues.
func decode(data []byte, v any, strict bool, what string) error {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return apperr.Validation("invalid "+what, decodeIssue(err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return apperr.Validation("invalid "+what, apperr.Issue{Message: "unexpected data after the top-level value"})
	}
	return nil
}

func decodeIssue(err error) apperr.Issue {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperr.Issue{
			Path:    typeErr.Field,
			Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return apperr.Issue{Message: fmt.Sprintf("malformed JSON at offset %d: %s", syntaxErr.Offset, syntaxErr.Error())}
	}
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, "json: unknown field "); ok {
		if field, uerr := strconv.Unquote(rest); uerr == nil {
			rest = field
		}
		return apperr.Issue{Path: rest, Message: "unknown field"}
	}
	if errors.Is(err, io.EOF) {
		return apperr.Issue{Message: "document is empty"}
	}
	return apperr.Issue{Message: msg}
}

// ParseFunnelMetrics decodes and validates a funnel metrics document.
func ParseFunnelMetrics(data []byte) (*model.FunnelMetrics, error) {
	var m model.FunnelMetrics
	if err := decode(data, &m, false, "funnel metrics"); err != nil {
		return nil, err
	}
	if err := ValidateFunnelMetrics(m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DecodeBundle decodes a bundle document without validating it. Unknown
// fields are ignored so bundles from newer producers still decode. When
// only field types are wrong, the partly decoded bundle is returned along
// with a validation error naming each bad field, so callers can keep
// checking the rest.
func DecodeBundle(data []byte) (*model.JobRequestBundle, error) {
	clean := jsonc.ToJSON(data)
	if len(bytes.TrimSpace(clean)) == 0 {
		return nil, apperr.Validation("invalid job request bundle", apperr.Issue{Message: "document is empty"})
	}

	// Requests are decoded one by one so a type error is reported with
	// its index and does not hide the other entries.
	var shell struct {
		model.JobRequestBundle
		Requests []json.RawMessage `json:"requests"`
	}
	var issues []apperr.Issue
	if err := json.Unmarshal(clean, &shell); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, apperr.Validation("invalid job request bundle", decodeIssue(err))
		}
		issues = append(issues, decodeIssue(err))
	}

	b := shell.JobRequestBundle
	b.Requests = nil
	if shell.Requests != nil {
		b.Requests = make([]model.BundleEntry, len(shell.Requests))
	}
	for i, raw := range shell.Requests {
		if err := json.Unmarshal(raw, &b.Requests[i]); err != nil {
			is := decodeIssue(err)
			if is.Path == "" {
				is.Path = idx("requests", i)
			} else {
				is.Path = join(idx("requests", i), is.Path)
			}
			issues = append(issues, is)
		}
	}
	if len(issues) > 0 {
		return &b, apperr.Validation("invalid job request bundle", issues...)
	}
	return &b, nil
}

// ParseBundle decodes and structurally validates a bundle document.
func ParseBundle(data []byte) (*model.JobRequestBundle, error) {
	b, err := DecodeBundle(data)
	if err != nil {
		return nil, err
	}
	if err := ValidateBundle(*b); err != nil {
		return nil, err
	}
	return b, nil
}
