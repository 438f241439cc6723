package scene

import "testing"

func TestHostName(t *testing.T) {
	tests := []struct {
		dsl, host string
	}{
		{"cube", "cube"},
		{"import", "import_"},
		{"func", "func_"},
		{"3d_box", "_3d_box"},
		{"for_each", "for_each"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := HostName(tt.dsl); got != tt.host {
			t.Errorf("HostName(%q) = %q, want %q", tt.dsl, got, tt.host)
		}
		if got := DSLName(tt.host); got != tt.dsl {
			t.Errorf("DSLName(%q) = %q, want %q", tt.host, got, tt.dsl)
		}
	}
}

func TestDSLNameLeavesOrdinaryUnderscores(t *testing.T) {
	for _, name := range []string{"width_", "_private", "_", "a_b_"} {
		if got := DSLName(name); got != name {
			t.Errorf("DSLName(%q) = %q, want unchanged", name, got)
		}
	}
}
