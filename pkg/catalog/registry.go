package catalog

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/chazu/scadgen/pkg/scene"
)

// Registry maps callable names to signatures. Lookups accept both the DSL
// name and its host-adjusted form. A Registry is not safe for concurrent
// mutation.
type Registry struct {
	sigs map[string]*Signature
}

// NewRegistry returns a registry holding sigs. Later entries replace earlier
// ones with the same name.
func NewRegistry(sigs ...*Signature) *Registry {
	r := &Registry{sigs: make(map[string]*Signature, len(sigs))}
	for _, s := range sigs {
		r.Register(s)
	}
	return r
}

// Builtins returns a fresh registry holding the CAD DSL built-ins.
func Builtins() *Registry {
	return NewRegistry(builtinSignatures()...)
}

// Register adds or replaces a signature.
func (r *Registry) Register(s *Signature) {
	r.sigs[s.Name] = s
}

// Lookup returns the signature registered under name.
func (r *Registry) Lookup(name string) (*Signature, bool) {
	if s, ok := r.sigs[name]; ok {
		return s, true
	}
	s, ok := r.sigs[scene.DSLName(name)]
	return s, ok
}

// Names returns the registered DSL names in byte order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sigs))
	for k := range r.sigs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered signatures.
func (r *Registry) Len() int {
	return len(r.sigs)
}

// Make builds a node from the named callable.
func (r *Registry) Make(name string, args ...any) (*scene.Node, error) {
	s, ok := r.Lookup(name)
	if !ok {
		return nil, UnknownCallableError(name, r.Names())
	}
	return s.Make(args...)
}

// MustMake is like Make but panics if binding fails.
func (r *Registry) MustMake(name string, args ...any) *scene.Node {
	n, err := r.Make(name, args...)
	if err != nil {
		panic(err)
	}
	return n
}

// ParamLookup adapts the registry for scene.Validate.
func (r *Registry) ParamLookup() scene.SignatureLookup {
	return func(name string) ([]string, bool) {
		s, ok := r.Lookup(name)
		if !ok {
			return nil, false
		}
		return s.Params(), true
	}
}

// UnknownCallableError wraps ErrUnknownCallable, naming the closest
// candidate when there is one.
func UnknownCallableError(name string, candidates []string) error {
	if hint := Suggest(name, candidates); hint != "" {
		return fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownCallable, name, hint)
	}
	return fmt.Errorf("%w %q", ErrUnknownCallable, name)
}

// Suggest returns the candidate closest to name, or "" when nothing is
// close. Subsequence matches win; otherwise the nearest candidate within
// edit distance 2 is chosen.
func Suggest(name string, candidates []string) string {
	if name == "" || len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", 3
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(name, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
