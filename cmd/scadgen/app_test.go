package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/scadgen/pkg/output"
)

func newTestApp(searchPath ...string) *App {
	return NewApp(defaultConfig(), searchPath, nil)
}

// TestE2EBoxExample exercises the full pipeline: script → engine → scene →
// DSL text, on the example shipped with the repository.
func TestE2EBoxExample(t *testing.T) {
	app := newTestApp()

	source, err := os.ReadFile("../../examples/box.lisp")
	if err != nil {
		t.Fatalf("failed to read box.lisp: %v", err)
	}

	result := app.Evaluate(string(source), Animation{})
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	prog := result.Program
	if !strings.HasPrefix(prog, "\nwall = 2.0000000000; // [1:0.5:5]\n") {
		t.Errorf("missing customizer variable:\n%s", prog)
	}
	// Each part subtracts its own holes: the body cavity and the lid vents.
	if n := strings.Count(prog, "/* Holes Below */"); n != 2 {
		t.Errorf("expected 2 hole blocks, got %d:\n%s", n, prog)
	}
	if n := strings.Count(prog, "cylinder($fn = 24, h = 5, r = 4);"); n != 4 {
		t.Errorf("expected 4 vent cylinders, got %d", n)
	}
}

func TestE2EEmptySource(t *testing.T) {
	app := newTestApp()
	result := app.Evaluate("", Animation{})

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected 0 warnings for empty source, got %d", len(result.Warnings))
	}
	if result.Program != "\n" {
		t.Errorf("expected an empty program, got %q", result.Program)
	}
	if result.Errors == nil || result.Warnings == nil {
		t.Error("Errors and Warnings should be non-nil empty slices")
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := newTestApp()
	result := app.Evaluate("(+ 1 2)\n(cube 10", Animation{})

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if result.Program != "" {
		t.Errorf("expected no program on error, got %q", result.Program)
	}
	if result.Errors[0].Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q",
		result.Errors[0].Line, result.Errors[0].Col, result.Errors[0].Message)
}

func TestE2EHeader(t *testing.T) {
	cfg := defaultConfig()
	cfg.Header = "$fn = 48;\n"
	app := NewApp(cfg, nil, nil)

	result := app.Evaluate("(sphere 3)", Animation{})
	if !result.OK() {
		t.Fatalf("errors: %v", result.Errors)
	}
	if !strings.HasPrefix(result.Program, "$fn = 48;\n") {
		t.Errorf("header not emitted first:\n%s", result.Program)
	}
}

func TestE2EAnimation(t *testing.T) {
	app := newTestApp()
	src := `(defn frame [t] (rotate (* t 360) (cube 1)))`
	result := app.Evaluate(src, Animation{Steps: 4, BackAndForth: true})
	if !result.OK() {
		t.Fatalf("errors: %v", result.Errors)
	}
	if n := strings.Count(result.Program, "if ($t >= "); n != 8 {
		t.Errorf("expected 8 frame guards, got %d", n)
	}
}

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Alternates between valid and invalid sources rapidly.
	// Ensures the engine recovers cleanly between error and success states.
	app := newTestApp()

	sources := []string{
		`(cube 1)`,
		`(cube`,
		``,
		`(sphere 1 2 3 4 5)`,
		`(union (cube 1) (sphere 2))`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(undefined-func 1 2 3)`,
		`(hole (cylinder 1 2))`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			_ = app.Evaluate(source, Animation{})
		}()
	}
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "part.lisp")
	if err := os.WriteFile(script, []byte("(cube 5 :center true)\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	app := newTestApp()
	out, result, err := app.RenderFile(script, Animation{}, output.Options{})
	if err != nil {
		t.Fatalf("RenderFile: %v (%v)", err, result.Errors)
	}
	if out != filepath.Join(dir, "part.scad") {
		t.Errorf("out = %q", out)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.Contains(got, "cube(center = true, size = 5);") {
		t.Errorf("missing geometry:\n%s", got)
	}
	if !strings.Contains(got, "*  Generated from part.lisp") {
		t.Errorf("missing source trailer:\n%s", got)
	}
}

func TestRenderFileErrors(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "bad.lisp")
	if err := os.WriteFile(script, []byte("(cube :size)"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, result, err := newTestApp().RenderFile(script, Animation{}, output.Options{OmitSource: true})
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(result.Errors) == 0 {
		t.Error("expected eval errors in the result")
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.scad")); !os.IsNotExist(err) {
		t.Error("no file should be written on error")
	}
}

func TestLibraryParseErrorSnippet(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.scad"), []byte("module a(x = [1, 2) {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := newTestApp(dir).Library("broken.scad")
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if !strings.Contains(err.Error(), "PARSE ERROR") || !strings.Contains(err.Error(), "^") {
		t.Errorf("expected a caret snippet, got:\n%v", err)
	}
}

func TestPrintSignatures(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "lib.scad"), []byte("module 3d_tab(w, h = 2) {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	lib, err := newTestApp(dir).Library("lib.scad")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	printSignatures(&buf, lib.Directive, lib.Signatures())
	got := buf.String()
	if !strings.Contains(got, "3d_tab(w, h = undef)") || !strings.Contains(got, "_3d_tab") {
		t.Errorf("signature listing:\n%s", got)
	}
}
