// Package engine evaluates scene scripts written in a small Lisp (zygomys)
// and produces scene graphs. Every catalog callable is exposed as a Lisp
// function; (use "file.scad") binds an external DSL file and exposes its
// modules the same way.
//
//	(use "gears.scad")
//	(def body (cube 20 :center true))
//	(emit (plus body (hole (cylinder 2 30 :center true))))
package engine

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/scadgen/pkg/bind"
	"github.com/chazu/scadgen/pkg/catalog"
	"github.com/chazu/scadgen/pkg/scene"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is a structural finding about the produced scene.
type EvalWarning struct {
	Path    string
	Message string
}

func (w EvalWarning) String() string {
	if w.Path == "" {
		return w.Message
	}
	return w.Path + ": " + w.Message
}

// Result is the output of one evaluation.
type Result struct {
	// Root is the scene to render: the emitted nodes (wrapped in a union
	// when there is more than one) or else the script's final value when
	// it is a node. Nil when the script produced no geometry.
	Root      *scene.Node
	Emitted   []*scene.Node
	Libraries []*bind.Library
	Warnings  []EvalWarning

	// Frames holds one root per animation frame for EvaluateAnimated.
	Frames       []*scene.Node
	steps        int
	backAndForth bool
}

// Render returns the DSL program for the result.
func (r *Result) Render(header string) string {
	if r.Frames != nil {
		i := 0
		return scene.RenderAnimated(func(float64) *scene.Node {
			n := r.Frames[i]
			i++
			return n
		}, r.steps, r.backAndForth, header)
	}
	return scene.Render(r.Root, header)
}

// Option configures an Engine.
type Option func(*Engine)

// WithBinder sets the binder used by (use ...) and (include-scad ...).
func WithBinder(b *bind.Binder) Option { return func(e *Engine) { e.binder = b } }

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithTimeout replaces EvalTimeout for this engine.
func WithTimeout(d time.Duration) Option { return func(e *Engine) { e.timeout = d } }

// WithRegistry replaces the built-in catalog exposed to scripts.
func WithRegistry(r *catalog.Registry) Option { return func(e *Engine) { e.registry = r } }

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	binder   *bind.Binder
	logger   *slog.Logger
	timeout  time.Duration
	registry *catalog.Registry
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: EvalTimeout}
	for _, opt := range opts {
		opt(e)
	}
	if e.timeout <= 0 {
		e.timeout = EvalTimeout
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if e.registry == nil {
		e.registry = catalog.Builtins()
	}
	if e.binder == nil {
		e.binder = bind.New(nil, e.logger)
	}
	return e
}

// Registry returns the catalog exposed to scripts.
func (e *Engine) Registry() *catalog.Registry {
	return e.registry
}

// Evaluate runs source and returns the scene it builds.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval failure: returns nil result + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Result, []EvalError, error) {
	return e.run(func() (*Result, []EvalError, error) {
		return e.evaluate(source)
	})
}

// EvaluateAnimated runs source once per animation frame with a trailing
// (frame t) call appended, and collects the node each call returns. The
// script must define frame as a function of the time t in [0, 1).
func (e *Engine) EvaluateAnimated(source string, steps int, backAndForth bool) (*Result, []EvalError, error) {
	return e.run(func() (*Result, []EvalError, error) {
		res := &Result{Frames: []*scene.Node{}, steps: steps, backAndForth: backAndForth}
		for _, fr := range scene.Frames(steps, backAndForth) {
			frameSrc := source + "\n(frame " + lispFloat(fr.T) + ")\n"
			r, evalErrs, err := e.evaluate(frameSrc)
			if err != nil || len(evalErrs) > 0 {
				return nil, evalErrs, err
			}
			res.Frames = append(res.Frames, r.Root)
			res.Libraries = append(res.Libraries, r.Libraries...)
			res.Warnings = append(res.Warnings, r.Warnings...)
		}
		return res, nil, nil
	})
}

func (e *Engine) run(fn func() (*Result, []EvalError, error)) (*Result, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, evalErrs, err := fn()
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, e.timeout, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Result, []EvalError, error) {
	// Empty source is a valid program that produces an empty scene.
	if strings.TrimSpace(source) == "" {
		return &Result{}, nil, nil
	}

	start := time.Now()

	// Sandbox mode prevents user code from accessing the filesystem or
	// syscalls; file access goes through the binder builtins only.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	s := &session{
		env:      env,
		registry: e.registry,
		binder:   e.binder,
		logger:   e.logger,
	}
	s.registerBuiltins()

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}

	last, err := env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	res := &Result{Emitted: s.emitted, Libraries: s.libraries}
	switch {
	case len(s.emitted) == 1:
		res.Root = s.emitted[0]
	case len(s.emitted) > 1:
		res.Root = scene.New(scene.KindOperator, "union").Add(s.emitted...)
	default:
		if n, ok := last.(*sexpNode); ok {
			res.Root = n.node
		}
	}

	if res.Root != nil {
		var evalErrs []EvalError
		for _, f := range scene.Validate(res.Root, s.paramLookup()) {
			if f.Severity == scene.SeverityError {
				evalErrs = append(evalErrs, EvalError{Message: f.Error()})
				continue
			}
			res.Warnings = append(res.Warnings, EvalWarning{Path: f.Path, Message: f.Message})
		}
		if len(evalErrs) > 0 {
			return nil, evalErrs, nil
		}
	}

	e.logger.Debug("evaluated scene script",
		"emitted", len(s.emitted),
		"libraries", len(s.libraries),
		"warnings", len(res.Warnings),
		"elapsed", time.Since(start))
	return res, nil, nil
}

// lispFloat formats t so the reader sees a float literal.
func lispFloat(t float64) string {
	s := strconv.FormatFloat(t, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
