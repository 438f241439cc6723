package scene

import (
	"fmt"
	"strconv"
)

// Severity indicates whether a validation finding makes a scene unfit for
// rendering or is merely informational.
type Severity int

const (
	SeverityError   Severity = iota // render would fail or emit broken DSL
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Path     string   // slash-separated names from the root, child index in brackets
	Message  string   // human-readable description
	Severity Severity // error or warning
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Path, e.Message)
}

// SignatureLookup reports the declared parameter names of a callable, or
// false when the callable is unknown to the caller.
type SignatureLookup func(name string) (params []string, ok bool)

// Validate runs structural checks over the scene rooted at root and returns
// the findings. An empty slice means the scene renders cleanly. lookup may be
// nil, in which case parameter names are not checked. Validate never mutates
// the scene.
func Validate(root *Node, lookup SignatureLookup) []ValidationError {
	if root == nil {
		return nil
	}
	if errs := validateAcyclic(root); len(errs) > 0 {
		// The remaining checks walk the tree and need it acyclic.
		return errs
	}

	var errs []ValidationError
	seen := make(map[*Node]bool)
	var visit func(n *Node, path string, inHole bool)
	visit = func(n *Node, path string, inHole bool) {
		if seen[n] {
			return
		}
		seen[n] = true
		errs = append(errs, validateNode(n, path, inHole, lookup)...)
		for i, c := range n.children {
			visit(c, path+"/"+c.Name+"["+strconv.Itoa(i)+"]", inHole || n.isHole)
		}
	}
	visit(root, root.Name, false)
	return errs
}

// HasErrors reports whether any finding has SeverityError.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

func validateNode(n *Node, path string, inHole bool, lookup SignatureLookup) []ValidationError {
	var errs []ValidationError
	if n.Kind == KindIncluded && n.Include == "" {
		errs = append(errs, ValidationError{
			Path:     path,
			Message:  fmt.Sprintf("included callable %q has no use/include directive", n.Name),
			Severity: SeverityError,
		})
	}
	if n.isHole && inHole {
		errs = append(errs, ValidationError{
			Path:     path,
			Message:  "hole nested inside another hole renders as part of the outer hole",
			Severity: SeverityWarning,
		})
	}
	if n.isHole && n.isPartRoot {
		errs = append(errs, ValidationError{
			Path:     path,
			Message:  "node is both a hole and a part root; its own holes are subtracted inside the hole shape",
			Severity: SeverityWarning,
		})
	}
	if lookup == nil || n.suppressed() {
		return errs
	}

	declared, ok := lookup(n.Name)
	if !ok {
		if n.Kind != KindIncluded {
			errs = append(errs, ValidationError{
				Path:     path,
				Message:  fmt.Sprintf("unknown callable %q", n.Name),
				Severity: SeverityWarning,
			})
		}
		return errs
	}
	known := make(map[string]bool, len(declared))
	for _, name := range declared {
		known[name] = true
	}
	for _, name := range n.Params.Names() {
		if name == legacySegments && known["$fn"] {
			continue
		}
		if !known[name] && !known[DSLName(name)] {
			errs = append(errs, ValidationError{
				Path:     path,
				Message:  fmt.Sprintf("parameter %q is not declared by %s", name, n.Name),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateAcyclic checks for cycles using DFS with 3-color marking.
// White = unvisited, gray = on the current DFS path, black = fully explored.
// Reaching a gray node means the scene contains a cycle.
func validateAcyclic(root *Node) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[*Node]int)
	var errs []ValidationError

	var visit func(n *Node, path string) bool
	visit = func(n *Node, path string) bool {
		switch color[n] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				Path:     path,
				Message:  fmt.Sprintf("cycle detected: %s contains itself", n.Name),
				Severity: SeverityError,
			})
			return true
		}
		color[n] = gray
		for i, c := range n.children {
			if visit(c, path+"/"+c.Name+"["+strconv.Itoa(i)+"]") {
				return true
			}
		}
		color[n] = black
		return false
	}
	visit(root, root.Name)
	return errs
}
