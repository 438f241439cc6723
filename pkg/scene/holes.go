package scene

// ---------------------------------------------------------------------------
// Hole discovery
// ---------------------------------------------------------------------------

// clearHoleMarks resets the hole-descendant annotation on every node
// reachable from root.
func clearHoleMarks(root *Node) {
	root.walk(func(n *Node) { n.hasHoleDescendant = false })
}

// findHoles walks the subtree below root and returns every hole it reaches,
// marking each ancestor on the path to a hole (root included) as having a
// hole descendant. It does not descend into holes, whose children belong to
// the hole shape, nor into nested part roots, whose holes belong to that
// part. Shared nodes are visited once per path.
func findHoles(root *Node) []*Node {
	var holes []*Node
	path := []*Node{root}

	var visit func(n *Node)
	visit = func(n *Node) {
		for _, c := range n.children {
			switch {
			case c.isHole:
				holes = append(holes, c)
				for _, p := range path {
					p.hasHoleDescendant = true
				}
			case c.isPartRoot:
			default:
				path = append(path, c)
				visit(c)
				path = path[:len(path)-1]
			}
		}
	}
	visit(root)
	return holes
}

// ---------------------------------------------------------------------------
// Hole rendering
// ---------------------------------------------------------------------------

// setOperations are rewritten to union in the hole pass: a hole inside an
// intersection or difference must not be shrunk by its siblings.
var setOperations = map[string]bool{
	"union":        true,
	"intersection": true,
	"difference":   true,
}

// renderHoleContext reproduces the transform context of every hole below n.
// Only holes and nodes with hole descendants are emitted; holes render with
// all their children. Nested part roots are skipped.
func renderHoleContext(n *Node) string {
	if !n.hasHoleDescendant {
		return ""
	}
	var body []byte
	for _, c := range n.children {
		switch {
		case c.isHole:
			body = append(body, render(c, true, false)...)
		case c.isPartRoot:
		case c.hasHoleDescendant:
			body = append(body, renderHoleContext(c)...)
		}
	}
	name := n.Name
	if setOperations[DSLName(name)] {
		name = "union"
	}
	return wrap(n, name, string(body))
}
