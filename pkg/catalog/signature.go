package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/scadgen/pkg/scene"
)

var (
	// ErrUnknownCallable is returned when a factory name is not registered.
	ErrUnknownCallable = errors.New("unknown callable")
	// ErrBadArguments is returned when arguments do not fit a signature.
	ErrBadArguments = errors.New("bad arguments")
)

// Arg is a keyword argument. Construct it with Kw.
type Arg struct {
	Name  string
	Value any
}

// Kw returns a keyword argument. name may be the DSL spelling or its
// host-adjusted form ("import_").
func Kw(name string, v any) Arg {
	return Arg{Name: name, Value: v}
}

// Signature describes one callable: its DSL name, how it renders, and the
// parameters it declares.
type Signature struct {
	Name       string
	Kind       scene.Kind
	Positional []string // required, bound in order
	Keyword    []string // optional, default Unset
	// Include is the directive emitted ahead of any program using the
	// callable. Empty for built-ins.
	Include string
	// Prepare applies argument rules and defaults after binding.
	Prepare func(p *scene.Params) error
	// Doc is a one-line description shown by the CLI.
	Doc string
}

// Params returns every declared parameter name, positional first.
func (s *Signature) Params() []string {
	out := make([]string, 0, len(s.Positional)+len(s.Keyword))
	out = append(out, s.Positional...)
	return append(out, s.Keyword...)
}

// HostName returns the name under which host code refers to the callable.
func (s *Signature) HostName() string {
	return scene.HostName(s.Name)
}

// String formats the signature as DSL: "cylinder(r, h, ...)" with keyword
// parameters shown as "name = undef".
func (s *Signature) String() string {
	parts := make([]string, 0, len(s.Positional)+len(s.Keyword))
	parts = append(parts, s.Positional...)
	for _, k := range s.Keyword {
		parts = append(parts, k+" = undef")
	}
	return s.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Make binds args to the signature and returns the new node.
func (s *Signature) Make(args ...any) (*scene.Node, error) {
	var n *scene.Node
	if s.Include != "" {
		n = scene.NewIncluded(s.Name, s.Include)
	} else {
		n = scene.New(s.Kind, s.Name)
	}

	declared := s.Params()
	bound := make(map[string]bool, len(declared))
	next := 0

	for _, a := range args {
		switch v := a.(type) {
		case *scene.Node:
			n.Add(v)
		case []*scene.Node:
			n.Add(v...)
		case Arg:
			name, ok := s.resolve(v.Name)
			if !ok {
				return nil, fmt.Errorf("%s: %w: unexpected keyword %q", s.Name, ErrBadArguments, v.Name)
			}
			if bound[name] {
				return nil, fmt.Errorf("%s: %w: %q given more than once", s.Name, ErrBadArguments, name)
			}
			bound[name] = true
			n.Params.Set(name, v.Value)
		default:
			for next < len(declared) && bound[declared[next]] {
				next++
			}
			if next >= len(declared) {
				return nil, fmt.Errorf("%s: %w: too many positional arguments (takes %d)", s.Name, ErrBadArguments, len(declared))
			}
			bound[declared[next]] = true
			n.Params.Set(declared[next], v)
			next++
		}
	}

	var missing []string
	for _, p := range s.Positional {
		if !bound[p] {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w: missing required %s", s.Name, ErrBadArguments, strings.Join(missing, ", "))
	}
	for _, k := range s.Keyword {
		if !bound[k] {
			n.Params.Set(k, scene.Unset)
		}
	}

	if s.Prepare != nil {
		if err := s.Prepare(&n.Params); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", s.Name, ErrBadArguments, err)
		}
	}
	return n, nil
}

// resolve maps a keyword as written by the caller to the declared name.
func (s *Signature) resolve(name string) (string, bool) {
	dsl := scene.DSLName(name)
	if name == "$fn" {
		// segments is emitted as $fn, so accept the emitted spelling too.
		dsl = "segments"
	}
	for _, p := range s.Params() {
		if p == name || p == dsl {
			return p, true
		}
	}
	return "", false
}
