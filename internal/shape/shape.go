// Package shape provides the shape model and the store that owns all
// finalized shapes, with move, reshape, rotate, and delete editing.
package shape

import (
	"pool-designer/pkg/geometry"

	"github.com/google/uuid"
)

// Kind identifies what a traced shape represents.
type Kind int

const (
	KindProperty Kind = iota
	KindHouse
	KindPool
)

func (k Kind) String() string {
	switch k {
	case KindProperty:
		return "property"
	case KindHouse:
		return "house"
	case KindPool:
		return "pool"
	default:
		return "unknown"
	}
}

// Shape is a finalized polygon. The vertex list is implicitly closed:
// the last vertex connects back to the first. A finalized shape always
// has at least three vertices.
type Shape struct {
	ID       string
	Kind     Kind
	Vertices []geometry.Point2D
	Name     string

	// Nominal real-world dimensions for preset pools, zero otherwise.
	NominalWidth  float64
	NominalHeight float64
}

// New creates a finalized shape with a generated id and a copied
// vertex list.
func New(kind Kind, vertices []geometry.Point2D) *Shape {
	verts := make([]geometry.Point2D, len(vertices))
	copy(verts, vertices)
	return &Shape{
		ID:       uuid.NewString(),
		Kind:     kind,
		Vertices: verts,
	}
}

// Centroid returns the average vertex position.
func (s *Shape) Centroid() geometry.Point2D {
	return geometry.Centroid(s.Vertices)
}

// Area returns the enclosed area in square pixels.
func (s *Shape) Area() float64 {
	return geometry.PolygonArea(s.Vertices)
}

// Perimeter returns the total edge length in pixels.
func (s *Shape) Perimeter() float64 {
	return geometry.PolygonPerimeter(s.Vertices)
}

// Contains reports whether the point lies inside the shape's polygon.
func (s *Shape) Contains(p geometry.Point2D) bool {
	return geometry.PointInPolygon(p, s.Vertices)
}

// Bounds returns the axis-aligned bounding box of the shape.
func (s *Shape) Bounds() geometry.Rect {
	return geometry.BoundingBox(s.Vertices)
}

// CloneVertices returns a copy of the vertex list.
func (s *Shape) CloneVertices() []geometry.Point2D {
	verts := make([]geometry.Point2D, len(s.Vertices))
	copy(verts, s.Vertices)
	return verts
}
