package errors

import (
	"context"
	"errors"
	"os"
	"strings"

	"codeberg.org/forgeui/server/internal/llm"
	"codeberg.org/forgeui/server/internal/preview"
	"codeberg.org/forgeui/server/internal/sandbox"
	"github.com/google/uuid"
)

// analyzes an error and returns its category and sanitized message
func classifyError(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{CategoryUnknown, ""}
	}

	isProduction := os.Getenv("ENVIRONMENT") == "production"

	// generation service unreachable
	var connErr *llm.ConnectivityError
	if errors.As(err, &connErr) {
		return ErrorInfo{
			category:  CategoryNetwork,
			sanitized: ternary(isProduction, "generation service unavailable", err.Error()),
		}
	}

	// pipeline stage errors describe the generated code, never the host
	if preview.IsPipelineError(err) {
		return ErrorInfo{
			category:  CategoryPipeline,
			sanitized: err.Error(),
		}
	}

	// context errors
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sandbox.ErrTimeout) {
		return ErrorInfo{
			category:  CategoryTimeout,
			sanitized: ternary(isProduction, "request timed out", err.Error()),
		}
	}

	if errors.Is(err, context.Canceled) {
		return ErrorInfo{
			category:  CategoryTimeout,
			sanitized: ternary(isProduction, "request canceled", err.Error()),
		}
	}

	// fallback to string matching for unknown error types
	errMsg := strings.ToLower(err.Error())

	// timeout/deadline
	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline") {
		return ErrorInfo{
			category:  CategoryTimeout,
			sanitized: ternary(isProduction, "request timed out", err.Error()),
		}
	}

	// not found
	if strings.Contains(errMsg, "not found") {
		return ErrorInfo{
			category:  CategoryNotFound,
			sanitized: ternary(isProduction, "resource not found", err.Error()),
		}
	}

	// network
	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dial") {
		return ErrorInfo{
			category:  CategoryNetwork,
			sanitized: ternary(isProduction, "connection error occurred", err.Error()),
		}
	}

	// validation
	if strings.Contains(errMsg, "validation") || strings.Contains(errMsg, "binding") ||
		strings.Contains(errMsg, "invalid") || strings.Contains(errMsg, "required") {
		return ErrorInfo{
			category:  CategoryValidation,
			sanitized: ternary(isProduction, "validation failed", err.Error()),
		}
	}

	// unknown - generic response
	return ErrorInfo{
		category:  CategoryUnknown,
		sanitized: ternary(isProduction, "an error occurred", err.Error()),
	}
}

// sanitizes error messages for production
func sanitizeError(err error) string {
	return classifyError(err).sanitized
}

// ternary helper for cleaner conditional assignment
func ternary(condition bool, trueVal, falseVal string) string {
	if condition {
		return trueVal
	}

	return falseVal
}

// validates a UUID string format
func IsValidUUID(id string) bool {
	if id == "" {
		return false
	}

	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}
