package generate

import (
	apierrors "codeberg.org/forgeui/server/internal/errors"
	"codeberg.org/forgeui/server/internal/extractor"
	"codeberg.org/forgeui/server/internal/history"
	"codeberg.org/forgeui/server/internal/technology"
)

// Request represents the request body for component generation
type Request struct {
	SessionID   string  `json:"session_id"`
	Prompt      string  `json:"prompt" binding:"required"`
	Technology  string  `json:"technology"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
}

type RestyleRequest struct {
	SessionID    string `json:"session_id"`
	Code         string `json:"code" binding:"required"`
	Requirements string `json:"requirements" binding:"required"`
	Technology   string `json:"technology"`
	Model        string `json:"model"`
}

// CodeRequest carries code that has already been generated
type CodeRequest struct {
	Code       string `json:"code" binding:"required"`
	Technology string `json:"technology"`
}

// Response represents the result of a generation or restyle
type Response struct {
	SessionID  string                `json:"session_id"`
	Code       string                `json:"code"`
	Technology technology.Technology `json:"technology"`
	Match      extractor.Match       `json:"match"`
	Fallback   bool                  `json:"fallback"`
	Preview    PreviewResponse       `json:"preview"`
	Entry      history.Entry         `json:"entry"`
}

type ExtractResponse struct {
	Code       string                `json:"code"`
	Technology technology.Technology `json:"technology"`
	Match      extractor.Match       `json:"match"`
	Fallback   bool                  `json:"fallback"`
}

// PreviewResponse describes a built preview. Error is set when the code
// reached the caller but could not be previewed
type PreviewResponse struct {
	Kind      string                   `json:"kind,omitempty"`
	Component string                   `json:"component,omitempty"`
	Document  string                   `json:"document,omitempty"`
	Error     *apierrors.ErrorResponse `json:"error,omitempty"`
}
