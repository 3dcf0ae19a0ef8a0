package logger

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Field keys attached to every AI log entry.
const (
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"
	// FieldOperation names the HR operation that triggered an AI call.
	FieldOperation = "ai_operation"
)

// WithFields attaches fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	logger = OrNop(logger)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// CommonFields describes the AI provider and model. Blank values are left out.
func CommonFields(provider, model string) []zap.Field {
	return nonBlank(FieldProvider, provider, FieldModel, model)
}

func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}

// OperationFields tags an entry with the HR operation behind an AI call.
func OperationFields(operation string) []zap.Field {
	return nonBlank(FieldOperation, operation)
}

// nonBlank turns alternating keys and values into trimmed string fields,
// skipping pairs whose value is blank.
func nonBlank(kv ...string) []zap.Field {
	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if v := strings.TrimSpace(kv[i+1]); v != "" {
			fields = append(fields, zap.String(kv[i], v))
		}
	}
	return fields
}

// TextPreview describes a prompt or response body with its length and a
// truncated preview under the given key prefix.
func TextPreview(prefix, text string, limit int) []zap.Field {
	return []zap.Field{
		zap.Int(prefix+"_length", utf8.RuneCountInString(text)),
		zap.String(prefix+"_preview", TruncateForLog(text, limit)),
	}
}
