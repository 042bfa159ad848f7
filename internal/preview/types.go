package preview

import (
	"regexp"

	"codeberg.org/forgeui/server/internal/sandbox"
	"codeberg.org/forgeui/server/internal/technology"
)

// how a preview is delivered to the display host
type Kind string

const (
	// a compiled component rendered in-process
	KindUnit Kind = "unit"

	// a self-contained html document for an isolated frame
	KindDocument Kind = "document"
)

// the result of routing a normalized snippet
type Preview struct {
	Kind       Kind
	Technology technology.Technology
	Unit       *sandbox.Unit
	HTML       string
}

// reports that a document could not be synthesized
type Error struct {
	Technology technology.Technology `json:"technology"`
	Message    string                `json:"message"`
	err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

// routes snippets to the sandbox or the document synthesizer
type Router struct {
	compiler *sandbox.Compiler
	profiles map[technology.Technology]profile
}

// declarative description of a synthesized document
type profile struct {
	// documents that are already complete are used verbatim
	passthrough *regexp.Regexp

	// capture group 1 is the markup to embed; nil embeds the whole snippet
	markup *regexp.Regexp

	// used when markup is set but does not match
	placeholder string

	// removed from the snippet before it is embedded
	strip []*regexp.Regexp

	// capture group 1 of every match is inlined into the page style
	style *regexp.Regexp

	// html-escape the markup before embedding
	escape bool

	scripts     []string
	stylesheets []string

	// text/template for the body; receives Markup and MarkupJSON
	body string
}

type bodyData struct {
	Markup     string
	MarkupJSON string
}

type documentData struct {
	Title       string
	Scripts     []string
	Stylesheets []string
	Style       string
	Body        string
}
