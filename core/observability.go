package core

import (
	"context"
	"sort"
	"strings"
	"time"
)

func (e *Executor) observe(
	ctx context.Context,
	startedAt time.Time,
	method string,
	path string,
	target string,
	headers map[string]string,
	payload Payload,
	err error,
) {
	if e == nil {
		return
	}
	outcome := OutcomeOf(err)
	statusCode := payload.StatusCode
	if err != nil {
		statusCode = StatusCodeOf(err)
	}
	duration := time.Since(startedAt)

	fields := map[string]any{
		"method":      method,
		"path":        path,
		"url":         target,
		"outcome":     string(outcome),
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
		"headers":     RedactSensitiveMap(headerFields(headers)),
	}
	if err != nil {
		fields["error"] = err.Error()
		if reason := CancelReasonOf(err); reason != "" {
			fields["reason"] = reason
		}
	}

	e.recordRequest(ctx, requestTags(method, path, outcome, statusCode), duration)

	if err != nil {
		e.logError(ctx, "exolix request failed", fields)
		return
	}
	e.logInfo(ctx, "exolix request succeeded", fields)
}

func (e *Executor) logInfo(ctx context.Context, message string, fields map[string]any) {
	e.logWithLevel(ctx, "info", message, fields)
}

func (e *Executor) logError(ctx context.Context, message string, fields map[string]any) {
	e.logWithLevel(ctx, "error", message, fields)
}

func (e *Executor) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	if e == nil || e.logger == nil {
		return
	}
	logger := e.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func headerFields(headers map[string]string) map[string]any {
	out := make(map[string]any, len(headers))
	for key, value := range headers {
		out[strings.ToLower(key)] = value
	}
	return out
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}
