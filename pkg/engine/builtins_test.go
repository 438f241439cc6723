package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/scadgen/pkg/bind"
	"github.com/chazu/scadgen/pkg/scene"
)

func fold(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// mustEval evaluates source and fails the test on any error.
func mustEval(t *testing.T, eng *Engine, source string) *Result {
	t.Helper()
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if res == nil {
		t.Fatal("expected non-nil result")
	}
	return res
}

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(cube 10 :center true)`,
			expect: `(cube 10 "__kw_center" true)`,
		},
		{
			name:   "multiple keywords",
			input:  `(cylinder :r 2 :h 20)`,
			expect: `(cylinder "__kw_r" 2 "__kw_h" 20)`,
		},
		{
			name:   "dollar keyword",
			input:  `(sphere 2 :$fn 64)`,
			expect: `(sphere 2 "__kw_$fn" 64)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(linear-extrude :height 5 shape)`,
			expect: `(linear_extrude "__kw_height" 5 shape)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `[-5 0 0]`,
			expect: `[-5 0 0]`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:new-size`,
			expect: `"__kw_new-size"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestParseArgsNormalizesKeywords(t *testing.T) {
	args := []zygo.Sexp{
		&zygo.SexpInt{Val: 1},
		&zygo.SexpStr{S: "__kw_new-size"},
		&zygo.SexpInt{Val: 2},
		&zygo.SexpStr{S: "__kw_flag"},
	}
	parsed := parseArgs(args)
	if len(parsed.positional) != 1 {
		t.Errorf("positional = %d, want 1", len(parsed.positional))
	}
	if strings.Join(parsed.kwOrder, ",") != "new_size,flag" {
		t.Errorf("kwOrder = %v", parsed.kwOrder)
	}
	if parsed.kw["flag"] != zygo.SexpNull {
		t.Errorf("trailing keyword should be null, got %v", parsed.kw["flag"])
	}
}

func TestToValue(t *testing.T) {
	v, err := toValue(&zygo.SexpArray{Val: []zygo.Sexp{
		&zygo.SexpInt{Val: 1},
		&zygo.SexpFloat{Val: 2.5},
		&zygo.SexpStr{S: "a"},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if got := scene.Format(v); got != `[1, 2.5, "a"]` {
		t.Errorf("Format = %s", got)
	}

	if _, err := toValue(&zygo.SexpStr{S: "__kw_center"}); err == nil {
		t.Error("keyword accepted as a value")
	}
	if _, err := toValue(&sexpNode{node: scene.New(scene.KindPrimitive, "cube")}); err == nil {
		t.Error("node accepted as a value")
	}
}

// ---------------------------------------------------------------------------
// Scene building
// ---------------------------------------------------------------------------

func TestPrimitiveFromLastValue(t *testing.T) {
	res := mustEval(t, NewEngine(), `(cube 10 :center true)`)
	if res.Root == nil {
		t.Fatal("expected a scene root")
	}
	if got := fold(res.Render("")); got != "cube(center = true, size = 10);" {
		t.Errorf("render = %q", got)
	}
}

func TestEmitWithHole(t *testing.T) {
	src := `
; body with a through hole
(def body (cube 10 :center true))
(emit (plus body (hole (cylinder 2 20 :center true))))
`
	res := mustEval(t, NewEngine(), src)
	want := "difference() { union() { cube(center = true, size = 10); } " +
		"/* Holes Below */ union() { cylinder(center = true, h = 20, r = 2); } } /* End Holes */"
	if got := fold(res.Render("")); got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
	if len(res.Emitted) != 1 {
		t.Errorf("emitted = %d, want 1", len(res.Emitted))
	}
}

func TestMultipleEmitsAreUnioned(t *testing.T) {
	res := mustEval(t, NewEngine(), "(emit (cube 1))\n(emit (sphere 2))\n(+ 1 2)")
	if got := fold(res.Render("")); got != "union() { cube(size = 1); sphere(r = 2); }" {
		t.Errorf("render = %q", got)
	}
}

func TestTransformsTakeChildren(t *testing.T) {
	src := `(translate [1 2 3] (cube 1) (sphere 1))`
	res := mustEval(t, NewEngine(), src)
	if got := fold(res.Render("")); got != "translate(v = [1, 2, 3]) { cube(size = 1); sphere(r = 1); }" {
		t.Errorf("render = %q", got)
	}
}

func TestNodeListBecomesChildren(t *testing.T) {
	res := mustEval(t, NewEngine(), `(difference (list (cube 4) (sphere 3)))`)
	if got := fold(res.Render("")); got != "difference() { cube(size = 4); sphere(r = 3); }" {
		t.Errorf("render = %q", got)
	}
}

func TestModifiersAndAdd(t *testing.T) {
	src := `
(def u (union))
(add u (background (cube 1)) (modifier (sphere 1) "#"))
u
`
	res := mustEval(t, NewEngine(), src)
	if got := fold(res.Render("")); got != "union() { %cube(size = 1); #sphere(r = 1); }" {
		t.Errorf("render = %q", got)
	}
}

func TestUnknownModifierClears(t *testing.T) {
	res := mustEval(t, NewEngine(), `(modifier (debug (cube 1)) "?")`)
	if res.Root.Modifier != scene.NoModifier {
		t.Errorf("modifier = %q, want cleared", res.Root.Modifier)
	}
}

func TestMinusAndTimes(t *testing.T) {
	res := mustEval(t, NewEngine(), `(times (minus (cube 2) (sphere 1)) (cube 1))`)
	want := "intersection() { difference() { cube(size = 2); sphere(r = 1); } cube(size = 1); }"
	if got := fold(res.Render("")); got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestSetPartRoot(t *testing.T) {
	src := `
(def a (set-part-root (plus (cube 5) (hole (sphere 1)))))
(emit (plus a (cube 2)))
`
	res := mustEval(t, NewEngine(), src)
	got := fold(res.Render(""))
	// The part root subtracts its own hole; the outer scene has none left.
	if strings.Count(got, "/* Holes Below */") != 1 {
		t.Errorf("want exactly one hole block, got %q", got)
	}
	if !strings.HasPrefix(got, "union() { difference() { union() { cube(size = 5); }") {
		t.Errorf("render = %q", got)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	src := `
(def a (cube 1))
(def b (copy a))
(emit (debug b))
`
	res := mustEval(t, NewEngine(), src)
	if res.Root.Modifier != scene.ModDebug {
		t.Errorf("modifier = %q", res.Root.Modifier)
	}
}

func TestFactoryArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"too many", `(sphere 1 2 3 4 5 6)`, "too many"},
		{"unknown keyword", `(cube 1 :depth 2)`, "depth"},
		{"missing required", `(polyhedron)`, "points"},
		{"unknown via make", `(make "cub" 1)`, `did you mean "cube"?`},
		{"keyword value", `(cube :center :size)`, "keyword"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, evalErrs, err := NewEngine().Evaluate(tt.src)
			if err != nil {
				t.Fatalf("fatal error: %v", err)
			}
			if res != nil {
				t.Fatal("expected nil result")
			}
			if len(evalErrs) == 0 || !strings.Contains(evalErrs[0].Message, tt.msg) {
				t.Errorf("eval errors = %v, want mention of %q", evalErrs, tt.msg)
			}
		})
	}
}

func TestMakeByName(t *testing.T) {
	res := mustEval(t, NewEngine(), `(make "linear_extrude" :height 5 (square 2))`)
	if got := fold(res.Render("")); got != "linear_extrude(height = 5) { square(size = 2); }" {
		t.Errorf("render = %q", got)
	}
}

func TestParamAndExpr(t *testing.T) {
	src := `
(def w (param "width" 10 "[5:50]"))
(cube (expr "*" w 2))
`
	res := mustEval(t, NewEngine(), src)
	got := res.Render("")
	if !strings.Contains(got, "width = 10; // [5:50]\n") {
		t.Errorf("missing variable declaration:\n%s", got)
	}
	if !strings.Contains(got, "cube(size = (width * 2));") {
		t.Errorf("missing symbolic size:\n%s", got)
	}
}

func TestBuildExpr(t *testing.T) {
	w := scene.Var("w", 1, "")
	tests := []struct {
		op   string
		vals []any
		want string
	}{
		{"+", []any{w, 1, 2}, "((w + 1) + 2)"},
		{"-", []any{w}, "(-w)"},
		{"*", []any{2, w}, "(2 * w)"},
		{"sin", []any{w}, "sin(w)"},
	}
	for _, tt := range tests {
		e, err := buildExpr(tt.op, tt.vals)
		if err != nil {
			t.Fatalf("%s: %v", tt.op, err)
		}
		if got := e.String(); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.op, got, tt.want)
		}
	}
	if _, err := buildExpr("/", []any{w}); err == nil {
		t.Error("binary operator accepted a single operand")
	}
}

// ---------------------------------------------------------------------------
// External files
// ---------------------------------------------------------------------------

func TestUseBindsLibrary(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "steps.scad")
	if err := os.WriteFile(lib, []byte("module steps(n, h = 1) { for (i = [0:n-1]) translate([i, 0, 0]) cube(1); }\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	eng := NewEngine(WithBinder(bind.New([]string{dir}, nil)))
	res := mustEval(t, eng, "(use \"steps.scad\")\n(steps 5 :h 2)")

	got := res.Render("")
	if !strings.HasPrefix(got, "use <"+lib+">\n") {
		t.Errorf("missing use directive:\n%s", got)
	}
	if !strings.Contains(got, "steps(h = 2, n = 5);") {
		t.Errorf("missing call:\n%s", got)
	}
	if len(res.Libraries) != 1 || res.Libraries[0].Path != lib {
		t.Errorf("libraries = %v", res.Libraries)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

func TestIncludeScadBindsLibrary(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "steps.scad")
	if err := os.WriteFile(lib, []byte("module steps(n) { cube(n); }\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	eng := NewEngine(WithBinder(bind.New([]string{dir}, nil)))
	res := mustEval(t, eng, "(include-scad \"steps.scad\")\n(emit (translate [1 2 3] (steps :n 5)))")

	got := res.Render("")
	if !strings.HasPrefix(got, "include <"+lib+">\n") {
		t.Errorf("missing include directive:\n%s", got)
	}
	if strings.Contains(got, "use <") {
		t.Errorf("include form emitted a use directive:\n%s", got)
	}
	want := "translate(v = [1, 2, 3]) { steps(n = 5); }"
	if !strings.Contains(fold(got), want) {
		t.Errorf("render = %q, want containing %q", fold(got), want)
	}
}

func TestUseMissingFile(t *testing.T) {
	eng := NewEngine(WithBinder(bind.New([]string{t.TempDir()}, nil)))
	_, evalErrs, err := eng.Evaluate(`(use "nope.scad")`)
	if err != nil {
		t.Fatal(err)
	}
	if len(evalErrs) == 0 || !strings.Contains(evalErrs[0].Message, "not found") {
		t.Errorf("eval errors = %v", evalErrs)
	}
}

func TestValidationWarnings(t *testing.T) {
	res := mustEval(t, NewEngine(), `(hole (hole (cube 1)))`)
	if len(res.Warnings) == 0 {
		t.Fatal("expected a nested-hole warning")
	}
	if !strings.Contains(res.Warnings[0].String(), "hole") {
		t.Errorf("warning = %v", res.Warnings[0])
	}
}

// ---------------------------------------------------------------------------
// Animation
// ---------------------------------------------------------------------------

func TestEvaluateAnimated(t *testing.T) {
	src := `(defn frame [t] (translate [(* t 10) 0 0] (cube 1)))`
	res, evalErrs, err := NewEngine().EvaluateAnimated(src, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if len(res.Frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(res.Frames))
	}
	got := res.Render("")
	for _, want := range []string{
		"if ($t >= 0.0 && $t < 0.5) {",
		"translate(v = [0.0000000000, 0, 0])",
		"if ($t >= 0.5 && $t < 1.0) {",
		"translate(v = [5.0000000000, 0, 0])",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestEvaluateAnimatedMissingFrame(t *testing.T) {
	_, evalErrs, err := NewEngine().EvaluateAnimated(`(def x 1)`, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(evalErrs) == 0 {
		t.Error("expected an eval error when frame is undefined")
	}
}
