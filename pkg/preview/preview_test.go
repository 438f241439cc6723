package preview

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeEngine writes a shell script that mimics the CAD engine: it copies the
// input to the -o path and prints a warning.
func fakeEngine(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script engine stand-in needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-openscad")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRenderSuccess(t *testing.T) {
	bin := fakeEngine(t, `
out=""
while [ $# -gt 1 ]; do
  if [ "$1" = "-o" ]; then out="$2"; shift; fi
  shift
done
cp "$1" "$out"
echo "WARNING: fake engine" >&2
echo "Total rendering time: 0s" >&2`)

	dir := t.TempDir()
	scad := filepath.Join(dir, "box.scad")
	if err := os.WriteFile(scad, []byte("cube(1);"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Runner{Binary: bin, Args: []string{"--autocenter"}}.Render(context.Background(), scad, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Output != filepath.Join(dir, "box.png") {
		t.Errorf("Output = %q", res.Output)
	}
	if len(res.Warnings) != 1 || len(res.Errors) != 0 {
		t.Errorf("Warnings = %v, Errors = %v", res.Warnings, res.Errors)
	}
	if data, _ := os.ReadFile(res.Output); string(data) != "cube(1);" {
		t.Errorf("output contents = %q", data)
	}
}

func TestRenderFailure(t *testing.T) {
	bin := fakeEngine(t, `echo "ERROR: Parser error in line 1" >&2; exit 1`)
	res, err := Runner{Binary: bin}.Render(context.Background(), "x.scad", filepath.Join(t.TempDir(), "x.stl"))
	if !errors.Is(err, ErrEngineFailed) {
		t.Fatalf("err = %v, want ErrEngineFailed", err)
	}
	if !strings.Contains(err.Error(), "Parser error") {
		t.Errorf("err = %v, want engine message", err)
	}
	if len(res.Errors) != 1 {
		t.Errorf("Errors = %v", res.Errors)
	}
}

func TestRenderNoOutput(t *testing.T) {
	bin := fakeEngine(t, `exit 0`)
	_, err := Runner{Binary: bin}.Render(context.Background(), "x.scad", filepath.Join(t.TempDir(), "x.png"))
	if !errors.Is(err, ErrEngineFailed) || !strings.Contains(err.Error(), "produced no") {
		t.Errorf("err = %v", err)
	}
}

func TestRenderCancelled(t *testing.T) {
	bin := fakeEngine(t, `sleep 5`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Runner{Binary: bin}.Render(ctx, "x.scad", "x.png")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
