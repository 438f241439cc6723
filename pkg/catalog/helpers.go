package catalog

import "github.com/chazu/scadgen/pkg/scene"

// std backs the typed helpers below.
var std = Builtins()

// Make builds a node from the named built-in.
func Make(name string, args ...any) (*scene.Node, error) {
	return std.Make(name, args...)
}

// Lookup returns the built-in signature registered under name.
func Lookup(name string) (*Signature, bool) {
	return std.Lookup(name)
}

// The helpers below panic when arguments do not fit the signature, the same
// way regexp.MustCompile treats a bad pattern: a wrong argument list is a
// programming error in the scene script.

// ---------------------------------------------------------------------------
// 2D
// ---------------------------------------------------------------------------

// Circle builds circle(r, d, segments).
func Circle(args ...any) *scene.Node { return std.MustMake("circle", args...) }

// Square builds square(size, center).
func Square(args ...any) *scene.Node { return std.MustMake("square", args...) }

// Polygon builds polygon(points, paths, convexity); paths defaults to one
// closed path over all points.
func Polygon(args ...any) *scene.Node { return std.MustMake("polygon", args...) }

// Text builds a 2D text(text, ...) outline.
func Text(args ...any) *scene.Node { return std.MustMake("text", args...) }

// Import builds import(); scripts call it as import_.
func Import(args ...any) *scene.Node { return std.MustMake("import", args...) }

// Projection builds projection(cut) over its children.
func Projection(args ...any) *scene.Node { return std.MustMake("projection", args...) }

// Offset returns an error instead of panicking: exactly one of r or delta
// must be supplied.
func Offset(args ...any) (*scene.Node, error) {
	return std.Make("offset", args...)
}

// ---------------------------------------------------------------------------
// 3D
// ---------------------------------------------------------------------------

// Sphere builds sphere(r, d, segments).
func Sphere(args ...any) *scene.Node { return std.MustMake("sphere", args...) }

// Cube builds cube(size, center).
func Cube(args ...any) *scene.Node { return std.MustMake("cube", args...) }

// Cylinder builds cylinder(r, h, ...); segments is emitted as $fn.
func Cylinder(args ...any) *scene.Node { return std.MustMake("cylinder", args...) }

// Polyhedron builds polyhedron(points, faces, convexity, triangles).
func Polyhedron(args ...any) *scene.Node { return std.MustMake("polyhedron", args...) }

// Surface builds surface(file, ...) from a height map.
func Surface(args ...any) *scene.Node { return std.MustMake("surface", args...) }

// ---------------------------------------------------------------------------
// Transforms and extrusion
// ---------------------------------------------------------------------------

// Translate moves its children by v.
func Translate(args ...any) *scene.Node { return std.MustMake("translate", args...) }

// Rotate turns its children by a degrees, about v when given.
func Rotate(args ...any) *scene.Node { return std.MustMake("rotate", args...) }

// Scale scales its children by v.
func Scale(args ...any) *scene.Node { return std.MustMake("scale", args...) }

// Resize scales its children to newsize.
func Resize(args ...any) *scene.Node { return std.MustMake("resize", args...) }

// Mirror reflects its children across the plane with normal v.
func Mirror(args ...any) *scene.Node { return std.MustMake("mirror", args...) }

// MultMatrix builds multmatrix(m), an affine transform of its children.
func MultMatrix(args ...any) *scene.Node { return std.MustMake("multmatrix", args...) }

// Color paints its children.
func Color(args ...any) *scene.Node { return std.MustMake("color", args...) }

// LinearExtrude builds linear_extrude() over 2D children.
func LinearExtrude(args ...any) *scene.Node { return std.MustMake("linear_extrude", args...) }

// RotateExtrude builds rotate_extrude() over 2D children.
func RotateExtrude(args ...any) *scene.Node { return std.MustMake("rotate_extrude", args...) }

// ---------------------------------------------------------------------------
// Set operations
// ---------------------------------------------------------------------------

// Union builds union() of the given children.
func Union(children ...any) *scene.Node { return std.MustMake("union", children...) }

// Difference builds difference(): the first child minus the rest.
func Difference(children ...any) *scene.Node { return std.MustMake("difference", children...) }

// Intersection builds intersection() of the given children.
func Intersection(children ...any) *scene.Node { return std.MustMake("intersection", children...) }

// Hull builds hull() of the given children.
func Hull(children ...any) *scene.Node { return std.MustMake("hull", children...) }

// Minkowski builds minkowski() of the given children.
func Minkowski(children ...any) *scene.Node { return std.MustMake("minkowski", children...) }

// Render builds the render(convexity) operator. Program text comes from
// scene.Render.
func Render(args ...any) *scene.Node { return std.MustMake("render", args...) }

// Children builds children(), for use inside module bodies.
func Children(args ...any) *scene.Node { return std.MustMake("children", args...) }
