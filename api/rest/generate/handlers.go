package generate

import (
	"context"
	"errors"
	"net/http"
	"time"

	apierrors "codeberg.org/forgeui/server/internal/errors"
	"codeberg.org/forgeui/server/internal/extractor"
	"codeberg.org/forgeui/server/internal/generator"
	"codeberg.org/forgeui/server/internal/history"
	"codeberg.org/forgeui/server/internal/logger"
	"codeberg.org/forgeui/server/internal/normalizer"
	"codeberg.org/forgeui/server/internal/preview"
	"codeberg.org/forgeui/server/internal/sessions"
	"codeberg.org/forgeui/server/internal/technology"
	"github.com/gin-gonic/gin"
)

// creates a handler that runs the full pipeline and records the result in
// the session history. a newer request for the same session aborts this one
func Handler(gen *generator.Generator, sessionMgr *sessions.Manager, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request

		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.ValidationError(c, err)
			return
		}

		genReq := generator.Request{
			Prompt:      req.Prompt,
			Technology:  technology.Technology(req.Technology),
			Model:       req.Model,
			Temperature: req.Temperature,
			TopP:        req.TopP,
			MaxTokens:   req.MaxTokens,
		}

		if err := genReq.Normalize(); err != nil {
			apierrors.ValidationError(c, err)
			return
		}

		run(c, sessionMgr, req.SessionID, timeout, func(ctx context.Context) (*generator.Result, error) {
			return gen.Run(ctx, genReq, nil)
		})
	}
}

// creates a handler that asks the generation service to restyle code
func RestyleHandler(gen *generator.Generator, sessionMgr *sessions.Manager, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RestyleRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.ValidationError(c, err)
			return
		}

		if _, err := technology.Parse(req.Technology); err != nil {
			apierrors.ValidationError(c, err)
			return
		}

		run(c, sessionMgr, req.SessionID, timeout, func(ctx context.Context) (*generator.Result, error) {
			return gen.Restyle(ctx, generator.RestyleRequest{
				Code:         req.Code,
				Requirements: req.Requirements,
				Technology:   technology.Technology(req.Technology),
				Model:        req.Model,
			})
		})
	}
}

// extracts and normalizes code from a complete response text
func ExtractHandler(c *gin.Context) {
	var req CodeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	tech, err := technology.Parse(req.Technology)
	if err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	snippet := normalizer.Normalize(extractor.Extract(req.Code, tech))

	c.JSON(http.StatusOK, ExtractResponse{
		Code:       snippet.Text,
		Technology: snippet.Technology,
		Match:      snippet.Match,
		Fallback:   snippet.Fallback(),
	})
}

// builds a preview for code that is already extracted
func PreviewHandler(gen *generator.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CodeRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.ValidationError(c, err)
			return
		}

		tech, err := technology.Parse(req.Technology)
		if err != nil {
			apierrors.ValidationError(c, err)
			return
		}

		p, doc, err := gen.Preview(req.Code, tech)
		if err != nil {
			apierrors.Pipeline(c, err)
			return
		}

		c.JSON(http.StatusOK, previewResponse(p, doc, nil))
	}
}

// builds a preview and serves it as a sandboxed html document. failures are
// served as an error panel so an embedding frame always has something to show
func DocumentHandler(gen *generator.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CodeRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.ValidationError(c, err)
			return
		}

		tech, err := technology.Parse(req.Technology)
		if err != nil {
			apierrors.ValidationError(c, err)
			return
		}

		c.Header("Content-Security-Policy", preview.ContentSecurityPolicy)

		_, doc, err := gen.Preview(req.Code, tech)
		if err != nil {
			status, response := apierrors.PipelineResponse(err)
			if doc == "" {
				doc = preview.ErrorDocument(response.Message, response.Details)
			}

			c.Data(status, "text/html; charset=utf-8", []byte(doc))
			return
		}

		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc))
	}
}

func previewResponse(p *preview.Preview, doc string, previewErr error) PreviewResponse {
	var out PreviewResponse

	if p != nil {
		out.Kind = string(p.Kind)
		if p.Unit != nil {
			out.Component = p.Unit.Name()
		}
	}

	out.Document = doc

	if previewErr != nil {
		_, response := apierrors.PipelineResponse(previewErr)
		out.Error = &response
	}

	return out
}

func response(sessionID string, result *generator.Result) Response {
	return Response{
		SessionID:  sessionID,
		Code:       result.Code,
		Technology: result.Snippet.Technology,
		Match:      result.Snippet.Match,
		Fallback:   result.Snippet.Fallback(),
		Preview:    previewResponse(result.Preview, result.Document, result.PreviewErr),
		Entry:      result.Entry,
	}
}

// resolves the session, runs fn under a supersedable context and writes
// the response. only the current run records history
func run(c *gin.Context, sessionMgr *sessions.Manager, sessionID string, timeout time.Duration, fn func(context.Context) (*generator.Result, error)) {
	session, err := sessionMgr.GetOrCreate(sessionID)
	if err != nil {
		if errors.Is(err, sessions.ErrInvalidID) {
			apierrors.BadRequest(c, "invalid session_id format", nil)
			return
		}

		apierrors.InternalError(c, "failed to resolve session", err)
		return
	}

	ctx, tok, err := sessionMgr.Begin(c.Request.Context(), session.ID, timeout)
	if err != nil {
		apierrors.SessionNotFound(c)
		return
	}

	result, runErr := fn(ctx)

	var entry *history.Entry
	if runErr == nil {
		entry = &result.Entry
	}

	if !sessionMgr.Finish(tok, entry) {
		reason := sessions.Reason(ctx)

		logger.Info("generation superseded",
			"session_id", session.ID,
			"generation", tok.Generation,
			"reason", reason,
		)

		apierrors.Superseded(c, reason)
		return
	}

	if runErr != nil {
		if isValidation(runErr) {
			apierrors.ValidationError(c, runErr)
			return
		}

		apierrors.Pipeline(c, runErr)
		return
	}

	if result.PreviewErr != nil {
		logger.Warn("preview failed",
			"session_id", session.ID,
			"technology", result.Snippet.Technology,
			"error", result.PreviewErr,
		)
	}

	c.JSON(http.StatusOK, response(session.ID, result))
}

func isValidation(err error) bool {
	return errors.Is(err, generator.ErrEmptyPrompt) ||
		errors.Is(err, generator.ErrEmptyCode) ||
		errors.Is(err, generator.ErrPromptTooLong) ||
		errors.Is(err, generator.ErrInvalidTemperature)
}
