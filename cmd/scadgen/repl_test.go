package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDepth(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"(cube 1)", 0},
		{"(union (cube 1)", 1},
		{"[1 2", 1},
		{`(text ")(")`, 0},
		{"(cube 1) ; )))", 0},
		{"(cube 1 // )\n", 1},
		{`"a \" (" (`, 1},
	}
	for _, tt := range tests {
		if got := depth(tt.src); got != tt.want {
			t.Errorf("depth(%q) = %d, want %d", tt.src, got, tt.want)
		}
	}
}

func TestReplSession(t *testing.T) {
	var out bytes.Buffer
	s := &replSession{app: newTestApp(), out: &out}

	if s.handle("(def c (cube 2))") {
		t.Fatal("session ended early")
	}
	s.handle("(emit (translate [1 0 0] c))")
	if !strings.Contains(out.String(), "cube(size = 2);") {
		t.Errorf("missing program:\n%s", out.String())
	}
	if len(s.forms) != 2 {
		t.Errorf("forms = %d, want 2", len(s.forms))
	}

	// A failing form is reported and dropped.
	out.Reset()
	s.handle("(cube :size)")
	if len(s.forms) != 2 || out.Len() == 0 {
		t.Errorf("failing form kept or not reported: %d forms, %q", len(s.forms), out.String())
	}

	path := filepath.Join(t.TempDir(), "session.scad")
	s.handle(":write " + path)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "translate(v = [1, 0, 0])") {
		t.Errorf("written program:\n%s", data)
	}

	s.handle(":reset")
	if len(s.forms) != 0 {
		t.Error("reset kept forms")
	}
	if !s.handle(":quit") {
		t.Error(":quit should end the session")
	}
}
