package generator

import (
	"errors"

	"codeberg.org/forgeui/server/internal/extractor"
	"codeberg.org/forgeui/server/internal/history"
	"codeberg.org/forgeui/server/internal/llm"
	"codeberg.org/forgeui/server/internal/preview"
	"codeberg.org/forgeui/server/internal/technology"
)

const (
	MinTemperature = 0.1
	MaxTemperature = 1.0
	MaxPromptSize  = 8000
)

var (
	ErrEmptyPrompt        = errors.New("prompt cannot be empty")
	ErrPromptTooLong      = errors.New("prompt is too long")
	ErrInvalidTemperature = errors.New("temperature must be between 0.1 and 1.0")
	ErrEmptyCode          = errors.New("code cannot be empty")
)

// a generation request as received from a client
type Request struct {
	Prompt      string                `json:"prompt"`
	Technology  technology.Technology `json:"technology"`
	Model       string                `json:"model,omitempty"`
	Temperature float64               `json:"temperature,omitempty"`
	TopP        float64               `json:"top_p,omitempty"`
	MaxTokens   int                   `json:"max_tokens,omitempty"`
}

// a request to restyle existing code
type RestyleRequest struct {
	Code         string                `json:"code"`
	Requirements string                `json:"requirements"`
	Technology   technology.Technology `json:"technology"`
	Model        string                `json:"model,omitempty"`
}

// the outcome of one pipeline run. stage failures after a successful
// generation land in PreviewErr so the code still reaches the caller
type Result struct {
	Raw        string
	Snippet    extractor.Snippet
	Code       string
	Preview    *preview.Preview
	Document   string
	PreviewErr error
	Entry      history.Entry
}

// runs the generation pipeline against a generation service
type Generator struct {
	client llm.Client
	router *preview.Router
	model  string
}
