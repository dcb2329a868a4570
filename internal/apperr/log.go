package apperr

import "go.uber.org/zap"

// ZapError is zap.Error with secret-shaped substrings of the message
// masked. Use it wherever an error reaches a log.
func ZapError(err error) zap.Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.String("error", RedactString(err.Error()))
}

// ZapContext logs a context map after Redact.
func ZapContext(ctx map[string]any) zap.Field {
	if len(ctx) == 0 {
		return zap.Skip()
	}
	return zap.Any("context", Redact(ctx))
}
