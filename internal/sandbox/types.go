package sandbox

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"
)

// compilation stages reported in CompileError
const (
	StageTransform = "transform"
	StageParse     = "parse"
	StageExecute   = "execute"
	StageResolve   = "resolve"
)

// name used when no declaration is found in the snippet
const fallbackComponentName = "GeneratedComponent"

var (
	ErrNotNative = errors.New("technology is not compiled in-process")
	ErrTimeout   = errors.New("sandbox execution timed out")
)

// reports that a snippet could not be turned into a renderable unit
type CompileError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	err     error
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d, column %d)", e.Message, e.Line, e.Column)
	}

	return e.Message
}

func (e *CompileError) Unwrap() error {
	return e.err
}

// reports that a compiled unit threw while rendering
type RenderError struct {
	Component string `json:"component"`
	Message   string `json:"message"`
	err       error
}

func (e *RenderError) Error() string {
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.err
}

// limits applied to every compilation and render
type Options struct {
	// wall-clock budget for compiling or rendering once
	Timeout time.Duration

	// maximum interpreter call depth
	MaxCallStackSize int

	// maximum nesting of the render tree
	MaxDepth int

	// maximum number of elements in one render
	MaxNodes int
}

func DefaultOptions() Options {
	return Options{
		Timeout:          2 * time.Second,
		MaxCallStackSize: 1024,
		MaxDepth:         256,
		MaxNodes:         5000,
	}
}

// turns normalized snippets into renderable units
type Compiler struct {
	opts Options
}

// a compiled component bound to its own interpreter
type Unit struct {
	name      string
	vm        *goja.Runtime
	component goja.Value
	render    goja.Callable
	timeout   time.Duration
	mu        sync.Mutex
}

// one rendered node; text nodes have an empty Tag
type Node struct {
	Tag       string      `json:"tag,omitempty"`
	Attrs     [][2]string `json:"attrs,omitempty"`
	Children  []*Node     `json:"children,omitempty"`
	InnerHTML string      `json:"innerHTML,omitempty"`
	Text      string      `json:"text,omitempty"`
}

// the top-level nodes produced by one render
type Tree []*Node
