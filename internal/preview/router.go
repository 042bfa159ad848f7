package preview

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"
	"text/template"

	"codeberg.org/forgeui/server/internal/sandbox"
	"codeberg.org/forgeui/server/internal/technology"
)

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{range .Stylesheets}}<link rel="stylesheet" href="{{.}}">
{{end}}{{range .Scripts}}<script src="{{.}}"></script>
{{end}}{{if .Style}}<style>
{{.Style}}
</style>
{{end}}</head>
<body>
{{.Body}}
</body>
</html>
`))

func NewRouter(compiler *sandbox.Compiler) *Router {
	return &Router{
		compiler: compiler,
		profiles: profiles,
	}
}

// builds the preview for a normalized snippet. native code is compiled in
// the sandbox and fails with *sandbox.CompileError; every other technology
// gets a synthesized document and fails with *Error
func (r *Router) Build(code string, tech technology.Technology) (*Preview, error) {
	if tech.Native() {
		unit, err := r.compiler.Compile(code, tech)
		if err != nil {
			return nil, err
		}

		return &Preview{Kind: KindUnit, Technology: tech, Unit: unit}, nil
	}

	prof, ok := r.profiles[tech]
	if !ok {
		return nil, &Error{Technology: tech, Message: fmt.Sprintf("unsupported technology %q", tech)}
	}

	doc, err := r.synthesize(prof, code, tech.DisplayName()+" preview")
	if err != nil {
		return nil, &Error{Technology: tech, Message: err.Error(), err: err}
	}

	return &Preview{Kind: KindDocument, Technology: tech, HTML: doc}, nil
}

// returns a displayable document for any preview. a unit that throws while
// rendering yields an error panel document together with the *sandbox.RenderError
func (r *Router) Document(p *Preview) (string, error) {
	if p.Kind == KindDocument {
		return p.HTML, nil
	}

	if p.Unit == nil {
		return "", &Error{Technology: p.Technology, Message: "preview has no compiled component"}
	}

	markup, err := p.Unit.HTML(nil)
	if err != nil {
		return ErrorDocument("Component failed to render", err.Error()), err
	}

	doc, err := r.synthesize(r.profiles[unitShell], markup, p.Unit.Name())
	if err != nil {
		return "", &Error{Technology: p.Technology, Message: err.Error(), err: err}
	}

	return doc, nil
}

// renders the page shell around a profile's body
func (r *Router) synthesize(prof profile, code, title string) (doc string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc = ""
			err = fmt.Errorf("document synthesis failed: %v", rec)
		}
	}()

	if prof.passthrough != nil && prof.passthrough.MatchString(code) {
		return code, nil
	}

	markup := code

	for _, re := range prof.strip {
		markup = re.ReplaceAllString(markup, "")
	}

	if prof.markup != nil {
		if m := prof.markup.FindStringSubmatch(code); m != nil {
			markup = m[1]
		} else {
			markup = prof.placeholder
		}
	}

	markup = strings.TrimSpace(markup)

	if prof.escape {
		markup = html.EscapeString(markup)
	}

	markupJSON, err := json.Marshal(markup)
	if err != nil {
		return "", err
	}

	body, err := template.New("body").Parse(prof.body)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	if err := body.Execute(&b, bodyData{Markup: markup, MarkupJSON: string(markupJSON)}); err != nil {
		return "", err
	}

	data := documentData{
		Title:       title,
		Scripts:     prof.scripts,
		Stylesheets: prof.stylesheets,
		Style:       collectStyles(prof, code),
		Body:        b.String(),
	}

	var out strings.Builder

	if err := documentTemplate.Execute(&out, data); err != nil {
		return "", err
	}

	return out.String(), nil
}

func collectStyles(prof profile, code string) string {
	if prof.style == nil {
		return ""
	}

	var parts []string

	for _, m := range prof.style.FindAllStringSubmatch(code, -1) {
		if s := strings.TrimSpace(m[1]); s != "" {
			parts = append(parts, s)
		}
	}

	return strings.Join(parts, "\n")
}

// a standalone document showing a contained error message
func ErrorDocument(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%[1]s</title>
<script src="%[3]s"></script>
</head>
<body>
<div class="p-6">
  <div class="bg-red-50 border border-red-200 rounded-lg p-6 text-center">
    <h3 class="text-lg font-medium text-red-900 mb-2">%[1]s</h3>
    <p class="text-red-700">%[2]s</p>
  </div>
</div>
</body>
</html>
`, html.EscapeString(title), html.EscapeString(message), tailwindRuntime)
}

// wraps a document in an iframe that allows scripts but no same-origin access
func Frame(doc string) string {
	return fmt.Sprintf(`<iframe sandbox="allow-scripts" srcdoc="%s" style="width:100%%;height:100%%;border:none;"></iframe>`,
		html.EscapeString(doc))
}

// content security policy sent with documents served directly
const ContentSecurityPolicy = "sandbox allow-scripts"

// reports whether err is one of the typed preview pipeline failures
func IsPipelineError(err error) bool {
	var compileErr *sandbox.CompileError
	var renderErr *sandbox.RenderError
	var previewErr *Error

	return errors.As(err, &compileErr) || errors.As(err, &renderErr) || errors.As(err, &previewErr)
}
