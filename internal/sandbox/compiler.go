package sandbox

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"codeberg.org/forgeui/server/internal/technology"
	"github.com/dop251/goja"
	"github.com/evanw/esbuild/pkg/api"
)

//go:embed runtime.js
var runtimeSource string

var (
	// first top-level declaration in the snippet
	candidateRegex = regexp.MustCompile(`(?:const|function)\s+(\w+)`)

	// function declarations in the transpiled output; only PascalCase names
	// are accepted as a last resort
	declarationRegex = regexp.MustCompile(`function\s+([A-Z][A-Za-z0-9_]*)\b`)
)

var reservedWords = map[string]bool{
	"await": true, "break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "enum": true, "export": true, "extends": true,
	"false": true, "finally": true, "for": true, "function": true, "if": true,
	"import": true, "in": true, "instanceof": true, "let": true, "new": true,
	"null": true, "return": true, "static": true, "super": true, "switch": true,
	"this": true, "throw": true, "true": true, "try": true, "typeof": true,
	"var": true, "void": true, "while": true, "with": true, "yield": true,
}

func NewCompiler(opts Options) *Compiler {
	defaults := DefaultOptions()

	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}

	if opts.MaxCallStackSize <= 0 {
		opts.MaxCallStackSize = defaults.MaxCallStackSize
	}

	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaults.MaxDepth
	}

	if opts.MaxNodes <= 0 {
		opts.MaxNodes = defaults.MaxNodes
	}

	return &Compiler{opts: opts}
}

// compiles a normalized snippet into a renderable unit. every failure is
// returned as a *CompileError, including panics inside the interpreter
func (c *Compiler) Compile(code string, tech technology.Technology) (unit *Unit, err error) {
	if !tech.Native() {
		return nil, &CompileError{
			Stage:   StageTransform,
			Message: fmt.Sprintf("%s code cannot be compiled in the sandbox", tech.DisplayName()),
			err:     ErrNotNative,
		}
	}

	defer func() {
		if r := recover(); r != nil {
			unit = nil
			err = &CompileError{Stage: StageExecute, Message: fmt.Sprint(r)}
		}
	}()

	js, cerr := transpile(code)
	if cerr != nil {
		return nil, cerr
	}

	candidate := candidateName(code)
	fallbacks := fallbackNames(js, candidate)

	vm := goja.New()
	vm.SetMaxCallStackSize(c.opts.MaxCallStackSize)

	caps, err := c.install(vm)
	if err != nil {
		return nil, &CompileError{Stage: StageExecute, Message: "failed to prepare sandbox: " + err.Error(), err: err}
	}

	program, err := goja.Compile("component.js", wrap(js, candidate, fallbacks), false)
	if err != nil {
		return nil, &CompileError{Stage: StageParse, Message: err.Error(), err: err}
	}

	stop := watch(vm, c.opts.Timeout)
	defer stop()

	fnValue, err := vm.RunProgram(program)
	if err != nil {
		return nil, &CompileError{Stage: StageExecute, Message: errorMessage(err, c.opts.Timeout), err: cause(err)}
	}

	fn, ok := goja.AssertFunction(fnValue)
	if !ok {
		return nil, &CompileError{Stage: StageExecute, Message: "compiled snippet is not callable"}
	}

	module := vm.NewObject()
	exports := vm.NewObject()

	if err := module.Set("exports", exports); err != nil {
		return nil, &CompileError{Stage: StageExecute, Message: err.Error(), err: err}
	}

	result, err := fn(goja.Undefined(),
		caps.Get("React"),
		caps.Get("FiIcons"),
		caps.Get("SafeIcon"),
		caps.Get("require"),
		module,
		exports,
	)
	if err != nil {
		return nil, &CompileError{Stage: StageExecute, Message: errorMessage(err, c.opts.Timeout), err: cause(err)}
	}

	render, ok := goja.AssertFunction(caps.Get("render"))
	if !ok {
		return nil, &CompileError{Stage: StageExecute, Message: "sandbox renderer is not callable"}
	}

	isComponent, ok := goja.AssertFunction(caps.Get("isComponent"))
	if !ok {
		return nil, &CompileError{Stage: StageExecute, Message: "sandbox component check is not callable"}
	}

	callable := func(v goja.Value) bool {
		if v == nil {
			return false
		}

		out, err := isComponent(goja.Undefined(), v)
		return err == nil && out.ToBoolean()
	}

	component, name, err := resolve(vm, result, candidate, fallbacks, callable)
	if err != nil {
		return nil, err
	}

	return &Unit{
		name:      name,
		vm:        vm,
		component: component,
		render:    render,
		timeout:   c.opts.Timeout,
	}, nil
}

// runs the capability prelude in a fresh runtime and returns its exports
func (c *Compiler) install(vm *goja.Runtime) (*goja.Object, error) {
	factory, err := vm.RunString(runtimeSource)
	if err != nil {
		return nil, err
	}

	fn, ok := goja.AssertFunction(factory)
	if !ok {
		return nil, errors.New("runtime prelude did not evaluate to a function")
	}

	limits := map[string]any{
		"maxDepth": c.opts.MaxDepth,
		"maxNodes": c.opts.MaxNodes,
	}

	value, err := fn(goja.Undefined(), vm.ToValue(iconNames), vm.ToValue(limits))
	if err != nil {
		return nil, err
	}

	caps := value.ToObject(vm)

	if err := vm.Set("console", caps.Get("console")); err != nil {
		return nil, err
	}

	return caps, nil
}

// converts JSX (or TSX as a second attempt) into CommonJS the interpreter can run
func transpile(code string) (string, *CompileError) {
	result := transform(code, api.LoaderJSX)
	if len(result.Errors) == 0 {
		return string(result.Code), nil
	}

	if tsx := transform(code, api.LoaderTSX); len(tsx.Errors) == 0 {
		return string(tsx.Code), nil
	}

	msg := result.Errors[0]
	cerr := &CompileError{Stage: StageTransform, Message: msg.Text}

	if msg.Location != nil {
		cerr.Line = msg.Location.Line
		cerr.Column = msg.Location.Column
	}

	return "", cerr
}

func transform(code string, loader api.Loader) api.TransformResult {
	return api.Transform(code, api.TransformOptions{
		Loader:      loader,
		Format:      api.FormatCommonJS,
		Target:      api.ES2017,
		JSX:         api.JSXTransform,
		JSXFactory:  "React.createElement",
		JSXFragment: "React.Fragment",
		Sourcefile:  "component.jsx",
		LogLevel:    api.LogLevelSilent,
	})
}

// returns the first declared name, or the fixed fallback name
func candidateName(code string) string {
	m := candidateRegex.FindStringSubmatch(code)
	if m == nil {
		return fallbackComponentName
	}

	if reservedWords[m[1]] {
		return ""
	}

	return m[1]
}

// returns allow-listed declaration names, last declared first
func fallbackNames(js, candidate string) []string {
	matches := declarationRegex.FindAllStringSubmatch(js, -1)

	names := make([]string, 0, len(matches))

	for i := len(matches) - 1; i >= 0; i-- {
		name := matches[i][1]
		if name == candidate || slices.Contains(names, name) {
			continue
		}

		names = append(names, name)
	}

	return names
}

// wraps transpiled code in a function over the capability set that reports
// every binding the resolver may pick from
func wrap(js, candidate string, fallbacks []string) string {
	var b strings.Builder

	b.WriteString("(function (React, FiIcons, SafeIcon, require, module, exports) {\n")
	b.WriteString(js)
	b.WriteString("\n;return {\n")
	b.WriteString("candidate: " + bound(candidate) + ",\n")
	b.WriteString("fallbacks: [")

	for i, name := range fallbacks {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(bound(name))
	}

	b.WriteString("],\n")
	b.WriteString("exported: (function (m) { return m && typeof m === 'object' && 'default' in m ? m.default : m; })(module.exports)\n")
	b.WriteString("};\n})")

	return b.String()
}

func bound(name string) string {
	if name == "" {
		return "undefined"
	}

	return fmt.Sprintf("(typeof %[1]s !== 'undefined' ? %[1]s : undefined)", name)
}

// picks the renderable component: the declared candidate, then the default
// export, then the last allow-listed function declaration
func resolve(vm *goja.Runtime, result goja.Value, candidate string, fallbacks []string, callable func(goja.Value) bool) (goja.Value, string, error) {
	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return nil, "", &CompileError{Stage: StageResolve, Message: "no component found"}
	}

	obj := result.ToObject(vm)

	value := obj.Get("candidate")
	if callable(value) {
		return value, candidate, nil
	}

	candidateBound := value != nil && !goja.IsUndefined(value)

	if exported := obj.Get("exported"); callable(exported) {
		return exported, exportedName(vm, exported), nil
	}

	if list := obj.Get("fallbacks"); list != nil && !goja.IsUndefined(list) {
		arr := list.ToObject(vm)
		n := int(arr.Get("length").ToInteger())

		for i := 0; i < n; i++ {
			if v := arr.Get(strconv.Itoa(i)); callable(v) {
				return v, fallbacks[i], nil
			}
		}
	}

	if candidateBound {
		return nil, "", &CompileError{Stage: StageResolve, Message: "generated code did not return a valid component"}
	}

	return nil, "", &CompileError{Stage: StageResolve, Message: "no component found"}
}

func exportedName(vm *goja.Runtime, v goja.Value) string {
	// anonymous default exports are named after the module by the transpiler
	if name := v.ToObject(vm).Get("name"); name != nil && name.String() != "" && !strings.HasSuffix(name.String(), "_default") {
		return name.String()
	}

	return "default"
}

// interrupts the runtime once the budget is spent
func watch(vm *goja.Runtime, timeout time.Duration) func() {
	timer := time.AfterFunc(timeout, func() {
		vm.Interrupt(ErrTimeout)
	})

	return func() {
		timer.Stop()
		vm.ClearInterrupt()
	}
}

// extracts the thrown message from an interpreter error
func errorMessage(err error, timeout time.Duration) string {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Sprintf("execution timed out after %s", timeout)
	}

	var exception *goja.Exception
	if errors.As(err, &exception) {
		if obj, ok := exception.Value().(*goja.Object); ok {
			if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
				return msg.String()
			}
		}

		return exception.Value().String()
	}

	return err.Error()
}

func cause(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return ErrTimeout
	}

	return err
}
