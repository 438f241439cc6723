package engine

import (
	"fmt"
	"log/slog"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/scadgen/pkg/bind"
	"github.com/chazu/scadgen/pkg/catalog"
	"github.com/chazu/scadgen/pkg/scene"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms script source before passing it to zygomys.
// It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: linear-extrude -> linear_extrude
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator).
//
//  3. ; line comments become // comments.
//
// All transformations respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter or $.
			if isLetter(b[i+1]) || b[i+1] == '$' {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == '$'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNode wraps a scene node so it can be passed between builtins.
type sexpNode struct {
	node *scene.Node
}

func (n *sexpNode) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(node %s)", n.node.Name)
}
func (n *sexpNode) Type() *zygo.RegisteredType { return nil }

// sexpExpr wraps a symbolic DSL expression such as a customizer variable.
type sexpExpr struct {
	expr *scene.Expr
}

func (e *sexpExpr) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(expr %s)", e.expr)
}
func (e *sexpExpr) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	kwOrder    []string
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
// Hyphens in keyword names become underscores.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			name = strings.ReplaceAll(name, "-", "_")
			if _, seen := result.kw[name]; !seen {
				result.kwOrder = append(result.kwOrder, name)
			}
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toNode extracts a scene node from a sexpNode.
func toNode(s zygo.Sexp) (*scene.Node, error) {
	if n, ok := s.(*sexpNode); ok {
		return n.node, nil
	}
	return nil, fmt.Errorf("expected node, got %T (%s)", s, s.SexpString(nil))
}

// toBool accepts booleans and treats a missing value as true.
func toBool(s zygo.Sexp) (bool, error) {
	if s == zygo.SexpNull {
		return true, nil
	}
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	}
	if s == zygo.SexpNull {
		return nil, nil
	}
	return nil, fmt.Errorf("expected list or array, got %T (%s)", s, s.SexpString(nil))
}

// toValue converts a Sexp into a parameter value the scene formatter
// understands. Lists and arrays become []any; the null sentinel becomes nil
// and renders as undef.
func toValue(s zygo.Sexp) (any, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpStr:
		if name, ok := isKW(v); ok {
			return nil, fmt.Errorf("keyword :%s used as a value", name)
		}
		return v.S, nil
	case *sexpExpr:
		return v.expr, nil
	case *sexpNode:
		return nil, fmt.Errorf("node %s used as a parameter value", v.node.Name)
	case *zygo.SexpPair, *zygo.SexpArray:
		items, err := sexpListToSlice(v)
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			x, err := toValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, x)
		}
		return out, nil
	}
	if s == zygo.SexpNull {
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported value %T (%s)", s, s.SexpString(nil))
}

// nodeList reports whether s is a non-empty list whose elements are all
// nodes, returning them.
func nodeList(s zygo.Sexp) ([]*scene.Node, bool) {
	switch s.(type) {
	case *zygo.SexpPair, *zygo.SexpArray:
	default:
		return nil, false
	}
	items, err := sexpListToSlice(s)
	if err != nil || len(items) == 0 {
		return nil, false
	}
	nodes := make([]*scene.Node, 0, len(items))
	for _, item := range items {
		n, ok := item.(*sexpNode)
		if !ok {
			return nil, false
		}
		nodes = append(nodes, n.node)
	}
	return nodes, true
}

// factoryArgs converts a Lisp argument list into the argument form
// catalog.Signature.Make accepts: nodes (and lists of nodes) become
// children, keywords become catalog.Kw and everything else binds
// positionally.
func factoryArgs(args []zygo.Sexp) ([]any, error) {
	parsed := parseArgs(args)
	out := make([]any, 0, len(args))
	for _, p := range parsed.positional {
		if n, ok := p.(*sexpNode); ok {
			out = append(out, n.node)
			continue
		}
		if nodes, ok := nodeList(p); ok {
			out = append(out, nodes)
			continue
		}
		v, err := toValue(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	for _, name := range parsed.kwOrder {
		v, err := toValue(parsed.kw[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, catalog.Kw(name, v))
	}
	return out, nil
}

// nodeArgs requires every argument to be a node or a list of nodes.
func nodeArgs(name string, args []zygo.Sexp) ([]*scene.Node, error) {
	var out []*scene.Node
	for i, a := range args {
		if n, ok := a.(*sexpNode); ok {
			out = append(out, n.node)
			continue
		}
		if nodes, ok := nodeList(a); ok {
			out = append(out, nodes...)
			continue
		}
		return nil, fmt.Errorf("%s: argument %d: expected node, got %s", name, i+1, a.SexpString(nil))
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin function registration
// ---------------------------------------------------------------------------

// userFunc is the zygomys builtin signature.
type userFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// session holds the per-evaluation state shared by the builtins.
type session struct {
	env       *zygo.Zlisp
	registry  *catalog.Registry
	binder    *bind.Binder
	logger    *slog.Logger
	emitted   []*scene.Node
	libraries []*bind.Library
}

// lookup resolves a callable against bound libraries first, most recent
// binding winning, then the catalog.
func (s *session) lookup(name string) (*catalog.Signature, bool) {
	for i := len(s.libraries) - 1; i >= 0; i-- {
		if sig, ok := s.libraries[i].Lookup(name); ok {
			return sig, true
		}
	}
	return s.registry.Lookup(name)
}

// names lists every callable visible to the script.
func (s *session) names() []string {
	names := s.registry.Names()
	for _, lib := range s.libraries {
		names = append(names, lib.Names()...)
	}
	return names
}

func (s *session) paramLookup() scene.SignatureLookup {
	return func(name string) ([]string, bool) {
		sig, ok := s.lookup(name)
		if !ok {
			return nil, false
		}
		return sig.Params(), true
	}
}

// registerBuiltins adds every scene-building function to the environment.
func (s *session) registerBuiltins() {
	for _, name := range s.registry.Names() {
		sig, _ := s.registry.Lookup(name)
		s.env.AddFunction(sig.HostName(), s.factory(sig))
	}

	// ---- (make "name" args...) ----
	// Generic factory call by DSL name, covering bound library callables.
	s.env.AddFunction("make", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("make: requires a callable name")
		}
		callable, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("make: name: %w", err)
		}
		sig, ok := s.lookup(callable)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("make: %w", catalog.UnknownCallableError(callable, s.names()))
		}
		return s.factory(sig)(env, callable, args[1:])
	})

	// ---- (hole node...) / (part node...) ----
	s.env.AddFunction("hole", s.marker(scene.Hole))
	s.env.AddFunction("part", s.marker(scene.Part))

	// ---- (debug node) (background node) (root node) (disable node) ----
	for _, word := range []string{"debug", "background", "root", "disable"} {
		s.env.AddFunction(word, s.modifier(word))
	}

	// ---- (modifier node "#") ----
	s.env.AddFunction("modifier", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("modifier: requires a node and a modifier")
		}
		n, err := toNode(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("modifier: %w", err)
		}
		m, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("modifier: %w", err)
		}
		if m != "" && scene.ParseModifier(m) == scene.NoModifier {
			s.logger.Warn("unknown modifier cleared", "modifier", m, "node", n.Name)
		}
		n.SetModifier(m)
		return &sexpNode{node: n}, nil
	})

	// ---- (add parent child...) ----
	s.env.AddFunction("add", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("add: requires a parent node")
		}
		parent, err := toNode(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("add: parent: %w", err)
		}
		children, err := nodeArgs(name, args[1:])
		if err != nil {
			return zygo.SexpNull, err
		}
		parent.Add(children...)
		return &sexpNode{node: parent}, nil
	})

	// ---- (plus a b) (minus a b) (times a b) ----
	s.env.AddFunction("plus", binaryNode((*scene.Node).Plus))
	s.env.AddFunction("minus", binaryNode((*scene.Node).Minus))
	s.env.AddFunction("times", binaryNode((*scene.Node).Times))

	// ---- (copy node) ----
	s.env.AddFunction("copy", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("copy: requires exactly one node")
		}
		n, err := toNode(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("copy: %w", err)
		}
		return &sexpNode{node: n.Copy()}, nil
	})

	// ---- (set-hole node [bool]) / (set-part-root node [bool]) ----
	s.env.AddFunction("set_hole", flagSetter((*scene.Node).SetHole))
	s.env.AddFunction("set_part_root", flagSetter((*scene.Node).SetPartRoot))

	// ---- (emit node...) ----
	s.env.AddFunction("emit", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		nodes, err := nodeArgs(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		s.emitted = append(s.emitted, nodes...)
		if len(nodes) == 1 {
			return args[0], nil
		}
		return zygo.SexpNull, nil
	})

	// ---- (use "file.scad") / (include-scad "file.scad") ----
	// zygomys reserves include for loading Lisp source, so the include form
	// of the binder lives under include_scad.
	s.env.AddFunction("use", s.binding(bind.Use))
	s.env.AddFunction("include_scad", s.binding(bind.Include))

	// ---- (param "name" default [hint]) ----
	s.env.AddFunction("param", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 || len(args) > 3 {
			return zygo.SexpNull, fmt.Errorf("param: requires a name, a default and an optional hint")
		}
		varName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("param: name: %w", err)
		}
		def, err := toValue(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("param: default: %w", err)
		}
		hint := ""
		if len(args) == 3 {
			if hint, err = toString(args[2]); err != nil {
				return zygo.SexpNull, fmt.Errorf("param: hint: %w", err)
			}
		}
		return &sexpExpr{expr: scene.Var(varName, def, hint)}, nil
	})

	// ---- (expr op args...) ----
	// Arithmetic on symbolic values: (expr "+" width 2), (expr "-" x),
	// or a DSL function call: (expr "sin" angle).
	s.env.AddFunction("expr", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("expr: requires an operator")
		}
		op, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("expr: operator: %w", err)
		}
		vals := make([]any, 0, len(args)-1)
		for _, a := range args[1:] {
			v, err := toValue(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("expr: %w", err)
			}
			vals = append(vals, v)
		}
		e, err := buildExpr(op, vals)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpExpr{expr: e}, nil
	})
}

// factory adapts a catalog signature to a zygomys builtin.
func (s *session) factory(sig *catalog.Signature) userFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		goArgs, err := factoryArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", sig.Name, err)
		}
		n, err := sig.Make(goArgs...)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpNode{node: n}, nil
	}
}

func (s *session) marker(mk func(...*scene.Node) *scene.Node) userFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		children, err := nodeArgs(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpNode{node: mk(children...)}, nil
	}
}

func (s *session) modifier(word string) userFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("%s: requires exactly one node", word)
		}
		n, err := toNode(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", word, err)
		}
		n.SetModifier(word)
		return args[0], nil
	}
}

// binding binds an external DSL file and exposes its callables as
// builtins under their host names. It returns the number of callables.
func (s *session) binding(form bind.Form) userFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("%s: requires exactly one path", form)
		}
		path, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: path: %w", form, err)
		}
		lib, err := s.binder.Bind(path, form)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", form, err)
		}
		s.libraries = append(s.libraries, lib)
		for _, sig := range lib.Signatures() {
			env.AddFunction(sig.HostName(), s.factory(sig))
		}
		s.logger.Debug("bound library", "form", form, "path", lib.Path, "callables", len(lib.Names()))
		return &zygo.SexpInt{Val: int64(len(lib.Names()))}, nil
	}
}

func binaryNode(op func(*scene.Node, *scene.Node) *scene.Node) userFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("%s: requires exactly two nodes", name)
		}
		a, err := toNode(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		b, err := toNode(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		return &sexpNode{node: op(a, b)}, nil
	}
}

func flagSetter(set func(*scene.Node, bool) *scene.Node) userFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 || len(args) > 2 {
			return zygo.SexpNull, fmt.Errorf("%s: requires a node and an optional boolean", name)
		}
		n, err := toNode(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		flag := true
		if len(args) == 2 {
			if flag, err = toBool(args[1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
		}
		set(n, flag)
		return args[0], nil
	}
}

// buildExpr constructs a symbolic expression from an operator and operands.
// Arithmetic operators fold left; any other operator is a function call.
func buildExpr(op string, vals []any) (*scene.Expr, error) {
	if !scene.IsArithmetic(op) {
		return scene.Call(op, vals...), nil
	}
	if op == "-" && len(vals) == 1 {
		if e, ok := vals[0].(*scene.Expr); ok {
			return e.Neg(), nil
		}
		return nil, fmt.Errorf("expr: unary - needs a symbolic operand")
	}
	if len(vals) < 2 {
		return nil, fmt.Errorf("expr: %q needs at least two operands", op)
	}
	acc := scene.Op(op, vals[0], vals[1])
	for _, v := range vals[2:] {
		acc = scene.Op(op, acc, v)
	}
	return acc, nil
}
