// Package catalog holds callable signatures and the generic factory that
// turns a signature plus host arguments into a scene node.
//
// The built-in table covers the CAD DSL's primitives, transforms and set
// operations. Signatures discovered in external DSL files (see package bind)
// use the same factory, so built-in and included callables bind arguments the
// same way:
//
//	cyl := catalog.Cylinder(2, 20, catalog.Kw("center", true))
//	part := catalog.Translate([]int{0, 0, 5}).Add(cyl)
//
// Plain values bind positionally, declared positional names first and then
// keyword names in declaration order. Kw binds by name. *scene.Node
// arguments become children.
package catalog
