package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/scadgen/pkg/catalog"
	"github.com/chazu/scadgen/pkg/scene"
)

func TestRenderToFileExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "box.scad")
	got, err := RenderToFile(catalog.Cube(10), Options{Path: path, Header: "// box\n", OmitSource: true})
	if err != nil {
		t.Fatal(err)
	}
	if got != path {
		t.Errorf("path = %q, want %q", got, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "// box\n\n\ncube(size = 10);" {
		t.Errorf("contents = %q", data)
	}
}

func TestRenderToFileCallerTrailer(t *testing.T) {
	dir := t.TempDir()
	got, err := RenderToFile(catalog.Sphere(1), Options{OutDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "output_test.scad"); got != want {
		t.Errorf("path = %q, want %q (derived from the calling file)", got, want)
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "\n\nsphere(r = 1);") {
		t.Errorf("program missing: %q", text[:min(len(text), 40)])
	}
	if !strings.Contains(text, "Generated from output_test.go") || !strings.Contains(text, "package output") {
		t.Error("source trailer missing")
	}
	if strings.Count(text, "*/") != 1 {
		t.Error("trailer comment closed early")
	}
}

func TestRenderToFileReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part.scad")
	if err := os.WriteFile(path, []byte("old contents that are longer than the new ones"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := RenderToFile(catalog.Cube(1), Options{Path: path, OmitSource: true}); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "old") {
		t.Errorf("file not replaced: %q", data)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestRenderAnimatedToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spin.scad")
	_, err := RenderAnimatedToFile(func(tm float64) *scene.Node {
		return catalog.Rotate(tm * 360).Add(catalog.Cube(1))
	}, 2, false, Options{Path: path, OmitSource: true})
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if strings.Count(string(data), "if ($t >= ") != 2 {
		t.Errorf("contents = %s", data)
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"explicit", Options{Path: "a/b.scad", SourcePath: "/src/x.go"}, "a/b.scad"},
		{"from source", Options{SourcePath: "/src/gear.go"}, "/src/gear.scad"},
		{"out dir", Options{SourcePath: "/src/gear.go", OutDir: "/out"}, "/out/gear.scad"},
		{"default", Options{}, DefaultName},
		{"default in out dir", Options{OutDir: "/out"}, "/out/" + DefaultName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolvePath(tt.opts); got != filepath.FromSlash(tt.want) {
				t.Errorf("ResolvePath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrailerEscapesCommentEnd(t *testing.T) {
	got := Trailer("x.go", "a := 1 /* note */\n")
	if strings.Count(got, "*/") != 1 || !strings.Contains(got, "/* note *\\/") {
		t.Errorf("Trailer = %q", got)
	}
}

func TestWriteProgramMissingSource(t *testing.T) {
	_, err := WriteProgram("cube(1);", Options{Path: filepath.Join(t.TempDir(), "x.scad"), SourcePath: "/does/not/exist.go"})
	if err == nil {
		t.Error("expected error for unreadable source")
	}
}
