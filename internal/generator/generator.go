package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codeberg.org/forgeui/server/internal/extractor"
	"codeberg.org/forgeui/server/internal/history"
	"codeberg.org/forgeui/server/internal/llm"
	"codeberg.org/forgeui/server/internal/normalizer"
	"codeberg.org/forgeui/server/internal/preview"
	"codeberg.org/forgeui/server/internal/technology"
)

// model recorded when neither request nor generator name one
const fallbackModel = llm.DefaultModel

func New(client llm.Client, router *preview.Router, defaultModel string) *Generator {
	if defaultModel == "" {
		defaultModel = fallbackModel
	}

	return &Generator{
		client: client,
		router: router,
		model:  defaultModel,
	}
}

// returns the model used when a request names none
func (g *Generator) DefaultModel() string {
	return g.model
}

// checks and fills a request in place
func (r *Request) Normalize() error {
	r.Prompt = strings.TrimSpace(r.Prompt)
	if r.Prompt == "" {
		return ErrEmptyPrompt
	}

	if len(r.Prompt) > MaxPromptSize {
		return ErrPromptTooLong
	}

	tech, err := technology.Parse(string(r.Technology))
	if err != nil {
		return err
	}

	r.Technology = tech

	if r.Temperature != 0 && (r.Temperature < MinTemperature || r.Temperature > MaxTemperature) {
		return ErrInvalidTemperature
	}

	return nil
}

// streams a component from the generation service and runs it through the
// pipeline. onFragment sees every fragment in arrival order; extraction only
// ever runs on the complete text
func (g *Generator) Run(ctx context.Context, req Request, onFragment func(string)) (*Result, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = g.model
	}

	var raw strings.Builder

	err := g.client.StreamGenerate(ctx, llm.Request{
		Model:        model,
		SystemPrompt: SystemPrompt(req.Technology),
		Prompt:       req.Prompt,
		Temperature:  req.Temperature,
		TopP:         req.TopP,
		MaxTokens:    req.MaxTokens,
	}, func(fragment string) {
		raw.WriteString(fragment)

		if onFragment != nil {
			onFragment(fragment)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate component: %w", err)
	}

	result := g.Process(raw.String(), req.Technology)
	result.Entry = history.NewEntry(req.Prompt, result.Code, req.Technology, model, time.Now())

	return result, nil
}

// asks the generation service to restyle existing code
func (g *Generator) Restyle(ctx context.Context, req RestyleRequest) (*Result, error) {
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		return nil, ErrEmptyCode
	}

	req.Requirements = strings.TrimSpace(req.Requirements)
	if req.Requirements == "" {
		return nil, ErrEmptyPrompt
	}

	tech, err := technology.Parse(string(req.Technology))
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = g.model
	}

	text, err := g.client.Generate(ctx, llm.Request{
		Model:       model,
		Prompt:      RestylePrompt(tech, req.Code, req.Requirements),
		Temperature: restyleTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to restyle component: %w", err)
	}

	result := g.Process(text, tech)
	result.Entry = history.NewEntry(req.Requirements, result.Code, tech, model, time.Now())

	return result, nil
}

// runs extract, normalize and route on complete response text
func (g *Generator) Process(raw string, tech technology.Technology) *Result {
	snippet := normalizer.Normalize(extractor.Extract(raw, tech))

	result := &Result{
		Raw:     raw,
		Snippet: snippet,
		Code:    snippet.Text,
	}

	result.Preview, result.Document, result.PreviewErr = g.Preview(snippet.Text, tech)

	return result
}

// builds the preview and its displayable document for code that is
// already extracted. on a render failure the document is the error panel
func (g *Generator) Preview(code string, tech technology.Technology) (*preview.Preview, string, error) {
	p, err := g.router.Build(code, tech)
	if err != nil {
		return nil, "", err
	}

	doc, err := g.router.Document(p)

	return p, doc, err
}
