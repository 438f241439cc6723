// Package preview runs the external CAD engine on a generated program, for
// example to produce a PNG snapshot or an STL export.
package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultBinary is the CAD engine executable looked up on PATH.
const DefaultBinary = "openscad"

// ErrEngineFailed is returned when the engine exits unsuccessfully.
var ErrEngineFailed = errors.New("cad engine failed")

// Runner invokes the CAD engine. The zero value runs DefaultBinary.
type Runner struct {
	Binary string   // executable name or path
	Args   []string // extra arguments placed before the output flag
}

// Result holds the engine's output streams, split into warning and error
// lines.
type Result struct {
	Output   string // resolved output path
	Stdout   string
	Stderr   string
	Warnings []string
	Errors   []string
}

// Render runs "<binary> <args...> -o outPath scadPath" and waits for it.
// The output format follows the extension of outPath. Cancel ctx to kill the
// engine; the core imposes no timeout of its own.
func (r Runner) Render(ctx context.Context, scadPath, outPath string) (*Result, error) {
	bin := r.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	if outPath == "" {
		outPath = strings.TrimSuffix(scadPath, filepath.Ext(scadPath)) + ".png"
	}

	args := append(append([]string(nil), r.Args...), "-o", outPath, scadPath)
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := &Result{
		Output: outPath,
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	classify(res)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("%s: %w", bin, ctxErr)
		}
		detail := err.Error()
		if len(res.Errors) > 0 {
			detail = res.Errors[0]
		}
		return res, fmt.Errorf("%w: %s %s: %s", ErrEngineFailed, bin, scadPath, detail)
	}
	if _, err := os.Stat(outPath); err != nil {
		return res, fmt.Errorf("%w: %s produced no %s", ErrEngineFailed, bin, outPath)
	}
	return res, nil
}

// classify splits stderr into warnings and errors the way the engine labels
// them ("WARNING: ...", "ERROR: ...").
func classify(res *Result) {
	for _, line := range strings.Split(res.Stderr, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case line == "":
		case strings.HasPrefix(lower, "warning"):
			res.Warnings = append(res.Warnings, line)
		case strings.HasPrefix(lower, "error"):
			res.Errors = append(res.Errors, line)
		}
	}
}
