package scene

import "strings"

// fold collapses every whitespace run to a single space and trims the ends,
// so rendered programs can be compared independent of indentation.
func fold(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// prim builds a node with alternating name/value parameters.
func prim(kind Kind, name string, kv ...any) *Node {
	n := New(kind, name)
	for i := 0; i+1 < len(kv); i += 2 {
		n.Params.Set(kv[i].(string), kv[i+1])
	}
	return n
}

func cube(size any) *Node { return prim(KindPrimitive, "cube", "size", size) }
func sphere(r any) *Node { return prim(KindPrimitive, "sphere", "r", r) }
func op(name string, kv ...any) *Node { return prim(KindOperator, name, kv...) }
