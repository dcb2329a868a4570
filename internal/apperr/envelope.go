package apperr

import (
	"errors"

	"github.com/rotisserie/eris"
)

// Envelope is the single structured form every surfaced error takes.
type Envelope struct {
	Code        Code           `json:"code"`
	Message     string         `json:"message"`
	UserMessage string         `json:"user_message"`
	Retryable   bool           `json:"retryable"`
	Issues      []Issue        `json:"issues,omitempty"`
	Cause       string         `json:"cause,omitempty"`
	Context     map[string]any `json:"context,omitempty"`
	Stack       string         `json:"stack,omitempty"`
}

// ToEnvelope converts err into an Envelope. ctx is redacted before it is
// attached. The stack trace is included only when debug is set.
func ToEnvelope(err error, debug bool, ctx map[string]any) Envelope {
	code := Classify(err)
	env := Envelope{
		Code:      code,
		Message:   RedactString(err.Error()),
		Retryable: code == CodeDependency,
	}
	if len(ctx) > 0 {
		env.Context = Redact(ctx)
	}

	switch code {
	case CodeValidation:
		var ve *ValidationError
		if errors.As(err, &ve) {
			env.Issues = make([]Issue, len(ve.Issues))
			for i, is := range ve.Issues {
				env.Issues[i] = Issue{Path: is.Path, Message: RedactString(is.Message)}
			}
		}
		env.UserMessage = "The input is invalid. Fix the listed fields and try again."
	case CodeDependency:
		env.UserMessage = "A required file or resource could not be read. This operation is retryable."
	default:
		env.UserMessage = "An unexpected error occurred. Please report this issue."
	}

	if cause := errors.Unwrap(err); cause != nil {
		env.Cause = RedactString(cause.Error())
	}
	if debug {
		env.Stack = RedactString(eris.ToString(err, true))
	}
	return env
}
