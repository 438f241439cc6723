package scene

// Kind enumerates the variants of scene nodes.
type Kind int

const (
	KindPrimitive Kind = iota // leaf geometry (cube, sphere, polygon)
	KindOperator              // transform or set operation (translate, union)
	KindHole                  // hole marker, never emitted itself
	KindPart                  // part marker, never emitted itself
	KindIncluded              // callable defined in an external DSL file
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindOperator:
		return "operator"
	case KindHole:
		return "hole"
	case KindPart:
		return "part"
	case KindIncluded:
		return "included"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of the scene graph.
//
// A node may be added under several parents. The parent back-reference is
// last-writer-wins and advisory only: rendering walks children, never
// parents.
type Node struct {
	Name     string
	Kind     Kind
	Params   Params
	Modifier Modifier
	// Include is the "use <path>" or "include <path>" directive a rendered
	// program needs before this node can be referenced. Set on
	// KindIncluded nodes.
	Include string

	children []*Node
	parent   *Node

	isHole            bool
	isPartRoot        bool
	hasHoleDescendant bool
}

// New returns a parentless node with no parameters.
func New(kind Kind, name string) *Node {
	return &Node{Name: name, Kind: kind}
}

// NewIncluded returns a node for a callable defined in an external DSL file.
func NewIncluded(name, directive string) *Node {
	return &Node{Name: name, Kind: KindIncluded, Include: directive}
}

// Hole returns a hole marker wrapping children. The marker is not emitted;
// its children are subtracted from enclosing geometry up to the nearest part
// root.
func Hole(children ...*Node) *Node {
	n := New(KindHole, "hole")
	n.isHole = true
	return n.Add(children...)
}

// Part returns a part marker wrapping children. The marker is not emitted;
// holes below it are subtracted inside it and go no further.
func Part(children ...*Node) *Node {
	n := New(KindPart, "part")
	n.isPartRoot = true
	return n.Add(children...)
}

// Add appends children in order, sets their parent to n and returns n.
// Nil children are ignored.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

// Call is Add under the name used for call-style composition:
// union().Call(a, b).
func (n *Node) Call(children ...*Node) *Node {
	return n.Add(children...)
}

// Children returns the ordered child list. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Parent returns the most recent container n was added to.
func (n *Node) Parent() *Node {
	return n.parent
}

// Plus returns union() { n; o; }.
func (n *Node) Plus(o *Node) *Node {
	return New(KindOperator, "union").Add(n, o)
}

// Minus returns difference() { n; o; }.
func (n *Node) Minus(o *Node) *Node {
	return New(KindOperator, "difference").Add(n, o)
}

// Times returns intersection() { n; o; }.
func (n *Node) Times(o *Node) *Node {
	return New(KindOperator, "intersection").Add(n, o)
}

// SetModifier sets the modifier from its word or character form.
// Unrecognized values clear it.
func (n *Node) SetModifier(m string) *Node {
	n.Modifier = ParseModifier(m)
	return n
}

// SetHole marks or unmarks n as a hole.
func (n *Node) SetHole(hole bool) *Node {
	n.isHole = hole
	return n
}

// SetPartRoot marks or unmarks n as a part root.
func (n *Node) SetPartRoot(root bool) *Node {
	n.isPartRoot = root
	return n
}

// IsHole reports whether n is a hole.
func (n *Node) IsHole() bool { return n.isHole }

// IsPartRoot reports whether n is a part root.
func (n *Node) IsPartRoot() bool { return n.isPartRoot }

// HasHoleDescendant reports the result of the latest hole discovery pass
// that visited n.
func (n *Node) HasHoleDescendant() bool { return n.hasHoleDescendant }

// suppressed reports whether the node's own head line is omitted on emission.
func (n *Node) suppressed() bool {
	return n.Kind == KindHole || n.Kind == KindPart
}

// Copy returns a deep duplicate of the subtree rooted at n with a parentless
// root. Modifier, hole, part-root and hole-descendant flags are preserved.
// Nodes shared inside the subtree stay shared in the copy.
func (n *Node) Copy() *Node {
	return n.copyInto(make(map[*Node]*Node))
}

func (n *Node) copyInto(seen map[*Node]*Node) *Node {
	if c, ok := seen[n]; ok {
		return c
	}
	c := &Node{
		Name:              n.Name,
		Kind:              n.Kind,
		Params:            n.Params.Clone(),
		Modifier:          n.Modifier,
		Include:           n.Include,
		isHole:            n.isHole,
		isPartRoot:        n.isPartRoot,
		hasHoleDescendant: n.hasHoleDescendant,
	}
	seen[n] = c
	for _, child := range n.children {
		cc := child.copyInto(seen)
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}

// Equal reports whether two acyclic subtrees are structurally identical:
// same names, kinds, parameters, modifiers, directives, flags and children
// in the same order. Parent pointers are ignored.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || a.Kind != b.Kind || a.Modifier != b.Modifier ||
		a.Include != b.Include || a.isHole != b.isHole || a.isPartRoot != b.isPartRoot {
		return false
	}
	if !a.Params.equal(b.Params) || len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if !Equal(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}

// String renders n as a complete DSL program with no header.
func (n *Node) String() string {
	return Render(n, "")
}

// walk visits every node reachable from n once, depth-first in child order.
func (n *Node) walk(visit func(*Node)) {
	seen := make(map[*Node]bool)
	var rec func(*Node)
	rec = func(x *Node) {
		if seen[x] {
			return
		}
		seen[x] = true
		visit(x)
		for _, c := range x.children {
			rec(c)
		}
	}
	rec(n)
}
