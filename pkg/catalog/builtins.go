package catalog

import (
	"errors"
	"reflect"

	"github.com/chazu/scadgen/pkg/scene"
)

func primitive(name, doc string, positional []string, keyword ...string) *Signature {
	return &Signature{Name: name, Kind: scene.KindPrimitive, Positional: positional, Keyword: keyword, Doc: doc}
}

func operator(name, doc string, positional []string, keyword ...string) *Signature {
	return &Signature{Name: name, Kind: scene.KindOperator, Positional: positional, Keyword: keyword, Doc: doc}
}

func builtinSignatures() []*Signature {
	polygon := primitive("polygon", "2D shape from points, optionally with explicit paths",
		[]string{"points"}, "paths", "convexity")
	polygon.Prepare = defaultPolygonPaths

	offset := operator("offset", "grow or shrink 2D children by r (rounded) or delta (straight)",
		nil, "r", "delta", "chamfer", "segments")
	offset.Prepare = checkOffset

	return []*Signature{
		// 2D
		primitive("circle", "circle centred on the origin", nil, "r", "d", "segments"),
		primitive("square", "square or rectangle", nil, "size", "center"),
		polygon,
		primitive("text", "2D text outline", []string{"text"},
			"size", "font", "halign", "valign", "spacing", "direction", "language", "script", "segments"),
		primitive("import", "geometry loaded from an STL, OFF, DXF or SVG file", nil,
			"file", "origin", "convexity", "layer"),
		operator("projection", "2D projection of 3D children", nil, "cut"),

		// 3D
		primitive("sphere", "sphere centred on the origin", nil, "r", "d", "segments"),
		primitive("cube", "cube or box", nil, "size", "center"),
		primitive("cylinder", "cylinder or cone", nil,
			"r", "h", "r1", "r2", "d", "d1", "d2", "center", "segments"),
		primitive("polyhedron", "solid from points and faces", []string{"points", "faces"},
			"convexity", "triangles"),
		primitive("surface", "height map loaded from a data or image file", []string{"file"},
			"center", "convexity", "invert"),

		// Transforms
		operator("translate", "move children by v", nil, "v"),
		operator("rotate", "rotate children by a degrees, about v when given", nil, "a", "v"),
		operator("scale", "scale children by v", nil, "v"),
		operator("resize", "scale children to newsize", nil, "newsize", "auto"),
		operator("mirror", "mirror children across the plane through the origin with normal v", nil, "v"),
		operator("multmatrix", "apply an affine matrix to children", []string{"m"}),
		operator("color", "colour children", nil, "c", "alpha"),
		offset,

		// Extrusion
		operator("linear_extrude", "extrude 2D children along Z", nil,
			"height", "center", "convexity", "twist", "slices", "scale"),
		operator("rotate_extrude", "sweep 2D children around Z", nil, "angle", "convexity", "segments"),

		// Set operations
		operator("union", "union of children", nil),
		operator("difference", "first child minus the others", nil),
		operator("intersection", "intersection of children", nil),
		operator("hull", "convex hull of children", nil),
		operator("minkowski", "Minkowski sum of children", nil),
		operator("intersection_for", "intersection of children over a range", []string{"n"}),
		operator("render", "force a full CGAL render of children", nil, "convexity"),

		// Module plumbing
		primitive("children", "the children passed to the enclosing module", nil, "index"),
	}
}

// defaultPolygonPaths supplies a single closed path over every point when
// paths is omitted and points is a literal sequence.
func defaultPolygonPaths(p *scene.Params) error {
	if v, _ := p.Get("paths"); !scene.IsUnset(v) {
		return nil
	}
	points, _ := p.Get("points")
	rv := reflect.ValueOf(points)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil
	}
	path := make([]int, rv.Len())
	for i := range path {
		path[i] = i
	}
	p.Set("paths", [][]int{path})
	return nil
}

// checkOffset requires exactly one of r or delta. chamfer only applies to
// delta offsets and defaults to false there.
func checkOffset(p *scene.Params) error {
	r, _ := p.Get("r")
	delta, _ := p.Get("delta")
	hasR, hasDelta := !scene.IsUnset(r) && r != nil, !scene.IsUnset(delta) && delta != nil
	switch {
	case !hasR && !hasDelta:
		return errors.New("offset requires r or delta")
	case hasR && hasDelta:
		return errors.New("offset takes r or delta, not both")
	case hasR:
		p.Set("delta", scene.Unset)
		p.Set("chamfer", scene.Unset)
	default:
		p.Set("r", scene.Unset)
		if c, _ := p.Get("chamfer"); scene.IsUnset(c) {
			p.Set("chamfer", false)
		}
	}
	return nil
}
