package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the judgment provider name.
	FieldProvider = "judge_provider"
	// FieldModel is the structured log field key for the judgment model identifier.
	FieldModel = "judge_model"
	// FieldCategory is the structured log field key for the role category being judged.
	FieldCategory = "role_category"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// JudgeFields returns standard zap fields describing the judgment provider,
// model and role category. Empty values are ignored to keep log entries
// compact when information is missing.
func JudgeFields(provider, model, category string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
		StringField{Key: FieldCategory, Value: category},
	)
}

// WithJudgeFields attaches the common judgment fields to the provided logger.
// If the logger is nil, a no-op logger is created to avoid panics.
func WithJudgeFields(logger *zap.Logger, provider, model, category string) *zap.Logger {
	fields := JudgeFields(provider, model, category)
	return WithFields(logger, fields...)
}
