package errors

import (
	"context"
	"errors"
	"net/http"

	"codeberg.org/forgeui/server/internal/llm"
	"codeberg.org/forgeui/server/internal/logger"
	"codeberg.org/forgeui/server/internal/preview"
	"codeberg.org/forgeui/server/internal/sandbox"
	"github.com/gin-gonic/gin"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Use errors.InternalError(), errors.BadRequest(), etc. for critical errors
//     These functions handle both logging and HTTP response automatically
//   - Use errors.Pipeline() for anything returned by the generation pipeline
//   - Never call both logger.ErrorErr() and errors.InternalError() for the same error
//
// For WebSocket handlers:
//   - Use logger.ErrorErr() + client.SendError() + return err
//
// For internal packages:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//   - Let the caller (handler) decide how to log and respond

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	response := ErrorResponse{
		Error:   CodeBadRequest,
		Message: message,
	}

	// add details if error provided
	if err != nil {
		response.Details = sanitizeError(err)
	}

	c.JSON(http.StatusBadRequest, response)
}

// returns a 400 bad request error for validation failures
func ValidationError(c *gin.Context, err error) {
	message := "validation failed"
	details := ""

	if err != nil {
		details = err.Error()

		if classifyError(err).category == CategoryValidation {
			message = "request validation failed"
		}
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   CodeValidationError,
		Message: message,
		Details: details,
	})
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "an error occurred"
	}

	// log full error server-side with context
	logger.ErrorErr(err, message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)

	// return sanitized error to client
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   CodeServerError,
		Message: message,
		Details: sanitizeError(err),
	})
}

// returns a 429 too many requests error
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "too many requests"
	}

	c.JSON(http.StatusTooManyRequests, ErrorResponse{
		Error:   CodeTooManyRequests,
		Message: message,
	})
}

// returns a 404 error for session not found
func SessionNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeSessionNotFound,
		Message: "session not found",
	})
}

// returns a 409 for a run that a newer request or a cancel replaced
func Superseded(c *gin.Context, reason string) {
	c.JSON(http.StatusConflict, ErrorResponse{
		Error:   CodeSuperseded,
		Message: "generation was superseded",
		Details: reason,
	})
}

// maps an error from the generation pipeline onto its response
func Pipeline(c *gin.Context, err error) {
	status, response := PipelineResponse(err)

	if status >= http.StatusInternalServerError {
		logger.ErrorErr(err, response.Message,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
	}

	c.JSON(status, response)
}

// returns the status and body an error from the generation pipeline maps to
func PipelineResponse(err error) (int, ErrorResponse) {
	var (
		connErr    *llm.ConnectivityError
		compileErr *sandbox.CompileError
		renderErr  *sandbox.RenderError
		previewErr *preview.Error
	)

	switch {
	case errors.As(err, &compileErr):
		if errors.Is(err, sandbox.ErrTimeout) {
			return http.StatusGatewayTimeout, ErrorResponse{
				Error:   CodeTimeout,
				Message: "component execution timed out",
				Details: compileErr.Error(),
			}
		}

		return http.StatusUnprocessableEntity, ErrorResponse{
			Error:   CodeCompileError,
			Message: "generated code could not be compiled",
			Details: compileErr.Error(),
		}
	case errors.As(err, &renderErr):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error:   CodeRenderError,
			Message: "component failed to render",
			Details: renderErr.Error(),
		}
	case errors.As(err, &previewErr):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error:   CodePreviewError,
			Message: "preview could not be built",
			Details: previewErr.Error(),
		}
	case errors.As(err, &connErr):
		return http.StatusBadGateway, ErrorResponse{
			Error:   CodeConnectivityError,
			Message: "failed to reach the generation service",
			Details: sanitizeError(err),
		}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{
			Error:   CodeTimeout,
			Message: "generation timed out",
			Details: sanitizeError(err),
		}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error:   CodeServerError,
		Message: "generation failed",
		Details: sanitizeError(err),
	}
}

// returns the error code for an error without writing a response
func Code(err error) string {
	_, response := PipelineResponse(err)
	return response.Error
}
