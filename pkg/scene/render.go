package scene

import "strings"

// Render returns the DSL program for root: header, the include directives
// reachable from root (one per line, first-seen order), a blank line, any
// symbolic variable declarations, then the geometry with hole subtraction
// applied at the document root and at every part root.
//
// Render never fails on an acyclic tree. Hole annotations are recomputed on
// every call, so mutating the tree between renders is safe.
func Render(root *Node, header string) string {
	var b strings.Builder
	b.WriteString(header)
	writePrelude(&b, []*Node{root})
	if root != nil {
		b.WriteString(renderBody(root))
	}
	return b.String()
}

// renderBody emits the geometry of root treated as a document root.
func renderBody(root *Node) string {
	clearHoleMarks(root)
	return render(root, false, true)
}

func writePrelude(b *strings.Builder, roots []*Node) {
	seen := make(map[string]bool)
	for _, r := range roots {
		if r == nil {
			continue
		}
		for _, inc := range Includes(r) {
			if seen[inc] {
				continue
			}
			seen[inc] = true
			b.WriteString(inc)
			b.WriteByte('\n')
		}
	}
	b.WriteByte('\n')
	for _, v := range variables(roots) {
		b.WriteString(v.declaration())
		b.WriteByte('\n')
	}
}

// Includes returns the distinct include directives reachable from root in
// first-seen depth-first order. Hole subtrees are included.
func Includes(root *Node) []string {
	var out []string
	seen := make(map[string]bool)
	root.walk(func(n *Node) {
		if n.Include == "" || seen[n.Include] {
			return
		}
		seen[n.Include] = true
		out = append(out, n.Include)
	})
	return out
}

// Variables returns the symbolic variables referenced by parameters
// reachable from root, first-seen order.
func Variables(root *Node) []*Expr {
	return variables([]*Node{root})
}

func variables(roots []*Node) []*Expr {
	var out []*Expr
	seen := make(map[string]bool)
	for _, r := range roots {
		if r == nil {
			continue
		}
		r.walk(func(n *Node) {
			for _, v := range n.Params.values() {
				collectVars(v, seen, &out)
			}
		})
	}
	return out
}

// render emits n and its children. With renderHoles false, hole children are
// skipped; they are emitted by the hole pass of the enclosing part root.
func render(n *Node, renderHoles, docRoot bool) string {
	var body strings.Builder
	for _, c := range n.children {
		if !renderHoles && c.isHole {
			continue
		}
		body.WriteString(render(c, renderHoles, false))
	}
	s := wrap(n, n.Name, body.String())

	if docRoot || n.isPartRoot {
		if holes := findHoles(n); len(holes) > 0 {
			s += "\n/* Holes Below */" + renderHoleContext(n)
			s = "\ndifference() {" + indent(s) + "\n} /* End Holes */"
		}
	}
	return s
}

// wrap places the rendered children inside n's head line. Marker nodes
// contribute only their children.
func wrap(n *Node, name, children string) string {
	if n.suppressed() {
		return children
	}
	head := "\n" + string(n.Modifier) + DSLName(name) + "(" + n.Params.String() + ")"
	if len(n.children) == 0 {
		return head + ";"
	}
	return head + " {" + indent(children) + "\n}"
}

func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n\t")
}
