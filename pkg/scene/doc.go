// Package scene defines the scene graph for scadgen and renders it to CAD
// DSL source text.
//
// A scene is a tree (sharing allowed) of nodes, each naming a DSL primitive
// or operator with a parameter mapping and ordered children. Subtrees marked
// as holes are subtracted from all enclosing positive geometry up to the
// nearest part root, regardless of intervening transforms or set operations.
package scene
