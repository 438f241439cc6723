package scene

import "strings"

// Expr is a symbolic numeric value that the CAD engine resolves at run time,
// typically a customizer variable and arithmetic built from it. Go has no
// operator overloading, so arithmetic is spelled with methods:
//
//	w := scene.Var("width", 10, "[5:50]")
//	catalog.Cube(w.Mul(2))   // cube(size = (width * 2));
//
// Exprs are immutable; every method returns a new value.
type Expr struct {
	op   string // "" for a variable, "call" for function application
	name string // variable or function name
	args []any

	def  any
	hint string
}

// Var declares a variable with a default value and an optional customizer
// hint such as "[0:100]". Rendering a scene that references the variable
// emits "name = default; // hint" ahead of the geometry.
func Var(name string, def any, hint string) *Expr {
	return &Expr{name: name, def: def, hint: hint}
}

// Call returns the DSL function application fn(args...).
func Call(fn string, args ...any) *Expr {
	return &Expr{op: "call", name: fn, args: args}
}

func binary(op string, a, b any) *Expr {
	return &Expr{op: op, args: []any{a, b}}
}

// Op returns (a op b). Either operand may be a literal. op must satisfy
// IsArithmetic.
func Op(op string, a, b any) *Expr { return binary(op, a, b) }

// IsArithmetic reports whether op is one of + - * / %.
func IsArithmetic(op string) bool {
	switch op {
	case "+", "-", "*", "/", "%":
		return true
	}
	return false
}

// Add returns (e + v).
func (e *Expr) Add(v any) *Expr { return binary("+", e, v) }

// Sub returns (e - v).
func (e *Expr) Sub(v any) *Expr { return binary("-", e, v) }

// Mul returns (e * v).
func (e *Expr) Mul(v any) *Expr { return binary("*", e, v) }

// Div returns (e / v).
func (e *Expr) Div(v any) *Expr { return binary("/", e, v) }

// Mod returns (e % v).
func (e *Expr) Mod(v any) *Expr { return binary("%", e, v) }

// Neg returns (-e).
func (e *Expr) Neg() *Expr { return &Expr{op: "neg", args: []any{e}} }

// Name returns the variable or function name, or "" for an operator node.
func (e *Expr) Name() string { return e.name }

// IsVar reports whether e is a declared variable.
func (e *Expr) IsVar() bool { return e.op == "" }

// String returns the emitted DSL text of e.
func (e *Expr) String() string { return Format(e) }

func (e *Expr) writeTo(b *strings.Builder) {
	switch e.op {
	case "":
		b.WriteString(e.name)
	case "call":
		b.WriteString(e.name)
		b.WriteByte('(')
		for i, a := range e.args {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, a)
		}
		b.WriteByte(')')
	case "neg":
		b.WriteString("(-")
		writeValue(b, e.args[0])
		b.WriteByte(')')
	default:
		b.WriteByte('(')
		writeValue(b, e.args[0])
		b.WriteString(" " + e.op + " ")
		writeValue(b, e.args[1])
		b.WriteByte(')')
	}
}

// declaration returns the variable's top-of-file declaration line.
func (e *Expr) declaration() string {
	line := e.name + " = " + Format(e.def) + ";"
	if e.hint != "" {
		line += " // " + e.hint
	}
	return line
}

// collectVars appends the variables referenced by v, first-seen order.
func collectVars(v any, seen map[string]bool, out *[]*Expr) {
	switch x := v.(type) {
	case *Expr:
		if x == nil {
			return
		}
		if x.IsVar() {
			if !seen[x.name] {
				seen[x.name] = true
				*out = append(*out, x)
			}
			return
		}
		for _, a := range x.args {
			collectVars(a, seen, out)
		}
	case []any:
		for _, item := range x {
			collectVars(item, seen, out)
		}
	}
}
