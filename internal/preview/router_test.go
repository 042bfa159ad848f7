package preview

import (
	"strings"
	"testing"
	"time"

	"codeberg.org/forgeui/server/internal/sandbox"
	"codeberg.org/forgeui/server/internal/technology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *Router {
	return NewRouter(sandbox.NewCompiler(sandbox.Options{Timeout: time.Second}))
}

func TestBuildHTMLPassthrough(t *testing.T) {
	docs := []string{
		"<html><body><p>Hi</p></body></html>",
		"<!DOCTYPE html>\n<html lang=\"en\"><head></head><body></body></html>",
	}

	for _, doc := range docs {
		p, err := newTestRouter().Build(doc, technology.HTML)
		require.NoError(t, err)
		assert.Equal(t, KindDocument, p.Kind)
		assert.Equal(t, doc, p.HTML)
	}
}

func TestBuildHTMLFragmentWrapped(t *testing.T) {
	p, err := newTestRouter().Build("<p>Hi</p>", technology.HTML)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(p.HTML, "<!DOCTYPE html>"))
	assert.Contains(t, p.HTML, "<html")
	assert.Contains(t, p.HTML, `<script src="`+tailwindRuntime+`"></script>`)
	assert.Contains(t, p.HTML, `<link rel="stylesheet" href="`+fontAwesomeStyles+`">`)

	body := p.HTML[strings.Index(p.HTML, "<body>"):strings.Index(p.HTML, "</body>")]
	assert.Contains(t, body, "<p>Hi</p>")
}

func TestBuildVue(t *testing.T) {
	code := "<template>\n  <div class=\"card\">{{ title }}</div>\n</template>\n<script>\nexport default {}\n</script>\n<style>\n.card { color: red; }\n</style>"

	p, err := newTestRouter().Build(code, technology.Vue)
	require.NoError(t, err)

	assert.Contains(t, p.HTML, vueRuntime)
	assert.Contains(t, p.HTML, tailwindRuntime)
	assert.Contains(t, p.HTML, `<div id="app"></div>`)
	assert.Contains(t, p.HTML, `"\u003cdiv class=\"card\"\u003e{{ title }}\u003c/div\u003e"`)
	assert.Contains(t, p.HTML, ".card { color: red; }")
}

func TestBuildVueWithoutTemplateUsesPlaceholder(t *testing.T) {
	p, err := newTestRouter().Build("<script>export default {}</script>", technology.Vue)
	require.NoError(t, err)

	assert.Equal(t, KindDocument, p.Kind)
	assert.Contains(t, p.HTML, `template: "\u003cdiv\u003e\u003c/div\u003e"`)
}

func TestBuildSvelte(t *testing.T) {
	code := "<script>\n  let name = 'world';\n</script>\n\n<h1 class=\"title\">Hello {name}!</h1>\n\n<style>\n  h1 { color: purple; }\n</style>"

	p, err := newTestRouter().Build(code, technology.Svelte)
	require.NoError(t, err)

	assert.NotContains(t, p.HTML, "let name = 'world'")
	assert.Contains(t, p.HTML, `<h1 class="title">Hello {name}!</h1>`)
	assert.Contains(t, p.HTML, "<style>\nh1 { color: purple; }\n</style>")
	assert.Contains(t, p.HTML, "window.feather.replace()")
}

func TestBuildAngularEscapesTemplate(t *testing.T) {
	code := "@Component({\n  selector: 'app-card',\n  template: `<div class=\"card\">{{ title }}</div>`\n})\nexport class CardComponent {}"

	p, err := newTestRouter().Build(code, technology.Angular)
	require.NoError(t, err)

	assert.Contains(t, p.HTML, "&lt;div class=&#34;card&#34;&gt;{{ title }}&lt;/div&gt;")
	assert.NotContains(t, p.HTML, `<div class="card">`)
}

func TestBuildAngularWithoutTemplate(t *testing.T) {
	p, err := newTestRouter().Build("export class Empty {}", technology.Angular)
	require.NoError(t, err)

	assert.Contains(t, p.HTML, "No template found")
}

func TestBuildReactUnit(t *testing.T) {
	router := newTestRouter()

	p, err := router.Build("import React from 'react';\nconst Hero = () => <h1 className=\"text-4xl\">Hi</h1>;", technology.React)
	require.NoError(t, err)
	require.Equal(t, KindUnit, p.Kind)
	require.NotNil(t, p.Unit)

	doc, err := router.Document(p)
	require.NoError(t, err)
	assert.Contains(t, doc, `<div id="root" class="p-6"><h1 class="text-4xl">Hi</h1></div>`)
	assert.Contains(t, doc, "<title>Hero</title>")
}

func TestBuildReactCompileError(t *testing.T) {
	_, err := newTestRouter().Build("const = ;", technology.React)

	var cerr *sandbox.CompileError
	require.ErrorAs(t, err, &cerr)
	assert.True(t, IsPipelineError(err))
}

func TestDocumentContainsRenderError(t *testing.T) {
	router := newTestRouter()

	p, err := router.Build("import React from 'react';\nconst Bad = () => { throw new Error('render <failed>'); };", technology.React)
	require.NoError(t, err)

	doc, err := router.Document(p)

	var rerr *sandbox.RenderError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "render <failed>", rerr.Message)
	assert.Contains(t, doc, "Component failed to render")
	assert.Contains(t, doc, "render &lt;failed&gt;")
}

func TestBuildUnsupportedTechnology(t *testing.T) {
	_, err := newTestRouter().Build("x", technology.Technology("elm"))

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.True(t, IsPipelineError(err))
}

func TestSynthesisFailureIsPreviewError(t *testing.T) {
	router := newTestRouter()
	router.profiles = map[technology.Technology]profile{
		technology.HTML: {body: "{{.Missing.Field}}"},
	}

	_, err := router.Build("<p>x</p>", technology.HTML)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.NotEmpty(t, perr.Message)
}

func TestFrame(t *testing.T) {
	frame := Frame(`<p class="x">a & b</p>`)

	assert.Contains(t, frame, `sandbox="allow-scripts"`)
	assert.NotContains(t, frame, "allow-same-origin")
	assert.Contains(t, frame, "&lt;p class=&#34;x&#34;&gt;a &amp; b&lt;/p&gt;")
}
