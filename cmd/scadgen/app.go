package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chazu/scadgen/pkg/bind"
	"github.com/chazu/scadgen/pkg/engine"
	"github.com/chazu/scadgen/pkg/output"
	"github.com/chazu/scadgen/pkg/preview"
	"github.com/chazu/scadgen/pkg/scadparse"
)

// App ties the engine, binder and output writer together for the commands.
type App struct {
	cfg    Config
	logger *slog.Logger
	binder *bind.Binder
	engine *engine.Engine
}

// EvalErrorData is an evaluation error or warning with its location.
type EvalErrorData struct {
	Line    int
	Col     int
	Message string
}

// EvalResult is the full result of evaluating one script.
type EvalResult struct {
	Program  string
	Errors   []EvalErrorData
	Warnings []EvalErrorData
}

// OK reports whether the evaluation produced a program.
func (r EvalResult) OK() bool { return len(r.Errors) == 0 }

// Animation selects animated evaluation when Steps > 0.
type Animation struct {
	Steps        int
	BackAndForth bool
}

// NewApp creates an App from cfg with a binder over searchPath.
func NewApp(cfg Config, searchPath []string, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b := bind.New(searchPath, logger)
	return &App{
		cfg:    cfg,
		logger: logger,
		binder: b,
		engine: engine.NewEngine(
			engine.WithBinder(b),
			engine.WithLogger(logger),
			engine.WithTimeout(cfg.EvalTimeout),
		),
	}
}

// Evaluate takes script source and returns the rendered DSL program + errors.
func (a *App) Evaluate(source string, anim Animation) EvalResult {
	result := EvalResult{
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the script into a scene.
	var (
		res      *engine.Result
		evalErrs []engine.EvalError
		err      error
	)
	if anim.Steps > 0 {
		res, evalErrs, err = a.engine.EvaluateAnimated(source, anim.Steps, anim.BackAndForth)
	} else {
		res, evalErrs, err = a.engine.Evaluate(source)
	}
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.logger.Error("evaluate failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.String()})
	}

	// Step 3: Render the scene to DSL text.
	result.Program = res.Render(a.cfg.Header)
	return result
}

// RenderFile evaluates the script at path and writes the program, returning
// the written path. Evaluation errors are returned as a single error.
func (a *App) RenderFile(path string, anim Animation, opts output.Options) (string, EvalResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", EvalResult{}, err
	}

	result := a.Evaluate(string(src), anim)
	if !result.OK() {
		return "", result, fmt.Errorf("%s: %d error(s)", filepath.Base(path), len(result.Errors))
	}

	opts.SourcePath = path
	opts.OmitSource = opts.OmitSource || a.cfg.OmitSource
	out, err := output.WriteProgram(result.Program, opts)
	if err != nil {
		return "", result, err
	}
	a.logger.Info("wrote program", "path", out, "bytes", len(result.Program))
	return out, result, nil
}

// Preview runs the CAD engine on a written program.
func (a *App) Preview(ctx context.Context, scadPath, imagePath string) (*preview.Result, error) {
	r := preview.Runner{Binary: a.cfg.OpenSCAD}
	res, err := r.Render(ctx, scadPath, imagePath)
	if err != nil {
		return res, err
	}
	for _, w := range res.Warnings {
		a.logger.Warn("cad engine", "msg", w)
	}
	return res, nil
}

// Library binds the DSL file at path for listing. Parse errors come back
// with a source snippet pointing at the offending token.
func (a *App) Library(path string) (*bind.Library, error) {
	lib, err := a.binder.Use(path)
	if err == nil {
		return lib, nil
	}
	var pe *scadparse.ParseError
	if errors.As(err, &pe) && pe.File != "" {
		if src, rerr := os.ReadFile(pe.File); rerr == nil {
			return nil, scadparse.WrapErrorWithSource(pe, string(src))
		}
	}
	return nil, err
}
