package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"codeberg.org/forgeui/server/internal/extractor"
	"codeberg.org/forgeui/server/internal/llm"
	"codeberg.org/forgeui/server/internal/preview"
	"codeberg.org/forgeui/server/internal/sandbox"
	"codeberg.org/forgeui/server/internal/technology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient implements llm.Client with overridable behavior
type fakeClient struct {
	fragments []string
	text      string
	err       error

	lastRequest llm.Request
}

func (f *fakeClient) CheckAvailability(context.Context) bool { return f.err == nil }

func (f *fakeClient) ListModels(context.Context) ([]llm.Model, error) {
	return []llm.Model{{Name: "llama3.1:latest"}}, f.err
}

func (f *fakeClient) StreamGenerate(ctx context.Context, req llm.Request, onFragment func(string)) error {
	f.lastRequest = req

	if f.err != nil {
		return f.err
	}

	for _, fragment := range f.fragments {
		if err := ctx.Err(); err != nil {
			return err
		}

		onFragment(fragment)
	}

	return nil
}

func (f *fakeClient) Generate(_ context.Context, req llm.Request) (string, error) {
	f.lastRequest = req
	return f.text, f.err
}

func (f *fakeClient) Provider() llm.Provider { return llm.ProviderOllama }

func (f *fakeClient) BaseURL() string { return llm.DefaultOllamaURL }

func newTestGenerator(client llm.Client) *Generator {
	return New(client, preview.NewRouter(sandbox.NewCompiler(sandbox.DefaultOptions())), "")
}

func TestRunNativeComponent(t *testing.T) {
	client := &fakeClient{fragments: []string{
		"Here you go:\n```jsx\nconst Pricing",
		"Card = () => <div>Card</div>;\nexport default PricingCard;\n",
		"```\nEnjoy!",
	}}

	var seen []string

	result, err := newTestGenerator(client).Run(context.Background(), Request{
		Prompt:     "  pricing card  ",
		Technology: technology.React,
	}, func(fragment string) {
		seen = append(seen, fragment)
	})
	require.NoError(t, err)

	assert.Equal(t, client.fragments, seen)
	assert.Equal(t, strings.Join(client.fragments, ""), result.Raw)
	assert.Equal(t, extractor.MatchFence, result.Snippet.Match)
	assert.True(t, strings.HasPrefix(result.Code, "import React from 'react';\n"))
	require.NoError(t, result.PreviewErr)

	require.NotNil(t, result.Preview)
	assert.Equal(t, preview.KindUnit, result.Preview.Kind)
	assert.Equal(t, "PricingCard", result.Preview.Unit.Name())

	markup, err := result.Preview.Unit.HTML(nil)
	require.NoError(t, err)
	assert.Equal(t, "<div>Card</div>", markup)
	assert.Contains(t, result.Document, "<div>Card</div>")

	assert.Equal(t, "pricing card", result.Entry.Prompt)
	assert.Equal(t, result.Code, result.Entry.Code)
	assert.Equal(t, llm.DefaultModel, result.Entry.Model)
	assert.Equal(t, "pricing card", client.lastRequest.Prompt)
	assert.Equal(t, reactSystemPrompt, client.lastRequest.SystemPrompt)
}

func TestRunPlainDocument(t *testing.T) {
	client := &fakeClient{fragments: []string{"<p>", "Hi</p>"}}

	result, err := newTestGenerator(client).Run(context.Background(), Request{
		Prompt:     "greeting",
		Technology: technology.HTML,
		Model:      "codellama:7b",
	}, nil)
	require.NoError(t, err)
	require.NoError(t, result.PreviewErr)

	assert.Equal(t, extractor.MatchPassthrough, result.Snippet.Match)
	assert.Equal(t, "<p>Hi</p>", result.Code)
	assert.Equal(t, preview.KindDocument, result.Preview.Kind)
	assert.Contains(t, result.Document, "<p>Hi</p>")
	assert.Contains(t, result.Document, `<script src="https://cdn.tailwindcss.com"></script>`)
	assert.Equal(t, "codellama:7b", result.Entry.Model)
}

func TestRunUnfencedComponent(t *testing.T) {
	client := &fakeClient{fragments: []string{
		"const P",
		"ricingCard = () => <div>Card</div>;\n",
		"export default PricingCard;",
	}}

	result, err := newTestGenerator(client).Run(context.Background(), Request{
		Prompt:     "pricing card",
		Technology: technology.React,
	}, nil)
	require.NoError(t, err)
	require.NoError(t, result.PreviewErr)

	assert.Equal(t, extractor.MatchComponent, result.Snippet.Match)
	assert.Equal(t, "import React from 'react';\nconst PricingCard = () => <div>Card</div>;\nexport default PricingCard;", result.Code)

	markup, err := result.Preview.Unit.HTML(nil)
	require.NoError(t, err)
	assert.Equal(t, "<div>Card</div>", markup)
}

func TestProcessKeepsNamedImports(t *testing.T) {
	raw := "import React, { useState } from 'react';\n" +
		"import { FiCheck } from 'react-icons/fi';\n" +
		"\n" +
		"const PricingCard = () => {\n" +
		"  const [seats] = useState(1);\n" +
		"  return <div><FiCheck /> {seats} seats</div>;\n" +
		"};\n" +
		"\n" +
		"export default PricingCard;\n"

	result := newTestGenerator(&fakeClient{}).Process(raw, technology.React)
	require.NoError(t, result.PreviewErr)

	assert.Equal(t, extractor.MatchComponent, result.Snippet.Match)
	assert.Contains(t, result.Code, "import { FiCheck } from 'react-icons/fi';")
	assert.Contains(t, result.Code, "useState } from 'react';")
	assert.Contains(t, result.Document, `data-icon="FiCheck"`)
	assert.Contains(t, result.Document, "1 seats")
}

func TestRunCompileErrorKeepsCode(t *testing.T) {
	client := &fakeClient{fragments: []string{"const Broken = () => <div>;\nexport default Broken;"}}

	result, err := newTestGenerator(client).Run(context.Background(), Request{Prompt: "x"}, nil)
	require.NoError(t, err)

	var compileErr *sandbox.CompileError
	require.ErrorAs(t, result.PreviewErr, &compileErr)
	assert.Nil(t, result.Preview)
	assert.NotEmpty(t, result.Code)
	assert.Equal(t, result.Code, result.Entry.Code)
}

func TestRunConnectivityError(t *testing.T) {
	client := &fakeClient{err: &llm.ConnectivityError{Op: "generate", Status: 503}}

	_, err := newTestGenerator(client).Run(context.Background(), Request{Prompt: "x"}, nil)

	var connErr *llm.ConnectivityError
	assert.ErrorAs(t, err, &connErr)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &fakeClient{fragments: []string{"a", "b"}}

	_, err := newTestGenerator(client).Run(ctx, Request{Prompt: "x"}, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRequestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{name: "empty prompt", req: Request{Prompt: "   "}, wantErr: ErrEmptyPrompt},
		{name: "too long", req: Request{Prompt: strings.Repeat("a", MaxPromptSize+1)}, wantErr: ErrPromptTooLong},
		{name: "temperature too low", req: Request{Prompt: "x", Temperature: 0.05}, wantErr: ErrInvalidTemperature},
		{name: "temperature too high", req: Request{Prompt: "x", Temperature: 1.5}, wantErr: ErrInvalidTemperature},
		{name: "default temperature", req: Request{Prompt: "x"}},
		{name: "bounds", req: Request{Prompt: "x", Temperature: 1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Normalize()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, technology.React, tt.req.Technology)
		})
	}

	bad := Request{Prompt: "x", Technology: "flash"}
	assert.Error(t, bad.Normalize())
}

func TestRestyle(t *testing.T) {
	client := &fakeClient{text: "```html\n<p class=\"text-xl\">Hi</p>\n```"}

	result, err := newTestGenerator(client).Restyle(context.Background(), RestyleRequest{
		Code:         "<p>Hi</p>",
		Requirements: "bigger text",
		Technology:   technology.HTML,
	})
	require.NoError(t, err)

	assert.Equal(t, `<p class="text-xl">Hi</p>`, result.Code)
	assert.InDelta(t, restyleTemperature, client.lastRequest.Temperature, 1e-9)
	assert.Empty(t, client.lastRequest.SystemPrompt)
	assert.Contains(t, client.lastRequest.Prompt, "bigger text")
	assert.Contains(t, client.lastRequest.Prompt, "<p>Hi</p>")

	_, err = newTestGenerator(client).Restyle(context.Background(), RestyleRequest{Requirements: "x"})
	assert.ErrorIs(t, err, ErrEmptyCode)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(technology.Vue, "a card")

	assert.True(t, strings.HasPrefix(prompt, vueSystemPrompt))
	assert.True(t, strings.HasSuffix(prompt, "\n\nUser Request: a card"))
	assert.Equal(t, reactSystemPrompt, SystemPrompt("unknown"))
}

func TestExamplesReturnsCopy(t *testing.T) {
	examples := Examples()
	require.Len(t, examples, 6)

	examples[0] = "changed"
	assert.NotEqual(t, "changed", Examples()[0])
}
