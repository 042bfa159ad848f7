package errors

// represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`             // error code (e.g., "compile_error", "not_found")
	Message string `json:"message"`           // user-friendly message
	Details string `json:"details,omitempty"` // optional details (sanitized in production)
}

type ErrorInfo struct {
	category  string
	sanitized string
}

// standard error codes
const (
	CodeNotFound          = "not_found"
	CodeValidationError   = "validation_error"
	CodeServerError       = "server_error"
	CodeBadRequest        = "bad_request"
	CodeTooManyRequests   = "too_many_requests"
	CodeSessionNotFound   = "session_not_found"
	CodeConnectivityError = "connectivity_error"
	CodeCompileError      = "compile_error"
	CodePreviewError      = "preview_error"
	CodeRenderError       = "render_error"
	CodeTimeout           = "timeout"
	CodeSuperseded        = "superseded"
)

// error categories for classification
const (
	CategoryNetwork    = "network"
	CategoryValidation = "validation"
	CategoryNotFound   = "not_found"
	CategoryTimeout    = "timeout"
	CategoryPipeline   = "pipeline"
	CategoryUnknown    = "unknown"
)
