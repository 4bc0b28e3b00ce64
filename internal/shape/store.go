package shape

import (
	"errors"
	"math"
	"sync"

	"pool-designer/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrPropertyExists is returned when adding a second property shape.
	ErrPropertyExists = errors.New("a property boundary already exists")

	// ErrPropertyHasDependents is returned when deleting the property
	// while house or pool shapes still rely on it for containment.
	ErrPropertyHasDependents = errors.New("property boundary cannot be deleted while houses or pools exist")

	// ErrNoShape is returned when no shape of the requested kind exists.
	ErrNoShape = errors.New("no shape of that kind exists")

	// ErrOutsideProperty is returned when a house or pool would leave
	// the property boundary.
	ErrOutsideProperty = errors.New("shape must stay inside the property boundary")
)

// MarkerRole identifies what a registered canvas primitive stands for.
type MarkerRole int

const (
	RoleOutline MarkerRole = iota
	RoleVertex
	RoleEdgeLabel
	RoleNameLabel
)

// MarkerRef ties a drawing-surface primitive id back to a shape. The
// store owns this side table; metadata is never attached to the
// primitives themselves.
type MarkerRef struct {
	ShapeID     string
	VertexIndex int // meaningful for RoleVertex only
	Role        MarkerRole
}

// Store owns all finalized shapes and applies every edit with
// containment re-validation. All reads and mutations are expected from
// the single UI goroutine; the mutex keeps incidental cross-goroutine
// reads safe, matching how the rest of the application state is guarded.
type Store struct {
	mu sync.RWMutex

	shapes []*Shape // insertion order, for LIFO delete

	// Accumulated rotation per pool id, radians.
	rotations map[string]float64

	// Side table: drawing primitive id -> shape reference.
	markers map[string]MarkerRef
}

// NewStore creates an empty shape store.
func NewStore() *Store {
	return &Store{
		rotations: make(map[string]float64),
		markers:   make(map[string]MarkerRef),
	}
}

// Add inserts a finalized shape. Only one property shape may exist.
func (st *Store) Add(s *Shape) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s.Kind == KindProperty && st.propertyLocked() != nil {
		return ErrPropertyExists
	}
	st.shapes = append(st.shapes, s)
	return nil
}

// Property returns the property shape, or nil if none has been traced.
func (st *Store) Property() *Shape {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.propertyLocked()
}

func (st *Store) propertyLocked() *Shape {
	for _, s := range st.shapes {
		if s.Kind == KindProperty {
			return s
		}
	}
	return nil
}

// ByKind returns the shapes of the given kind in insertion order.
func (st *Store) ByKind(kind Kind) []*Shape {
	st.mu.RLock()
	defer st.mu.RUnlock()

	var out []*Shape
	for _, s := range st.shapes {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// All returns every shape in insertion order.
func (st *Store) All() []*Shape {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]*Shape, len(st.shapes))
	copy(out, st.shapes)
	return out
}

// Get returns the shape with the given id, or nil.
func (st *Store) Get(id string) *Shape {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.getLocked(id)
}

func (st *Store) getLocked(id string) *Shape {
	for _, s := range st.shapes {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Move translates every vertex of the shape by delta. For house and
// pool shapes the whole move is rejected if any resulting vertex falls
// outside the property; moving the property is rejected if it would
// strand a dependent vertex outside the new boundary. Returns whether
// the move was applied.
func (st *Store) Move(id string, delta geometry.Point2D) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := st.getLocked(id)
	if s == nil {
		return false
	}

	moved := make([]geometry.Point2D, len(s.Vertices))
	for i, v := range s.Vertices {
		moved[i] = v.Add(delta)
	}

	switch s.Kind {
	case KindProperty:
		if !st.dependentsInsideLocked(moved) {
			return false
		}
	default:
		prop := st.propertyLocked()
		if prop == nil || !allInside(moved, prop.Vertices) {
			return false
		}
	}

	s.Vertices = moved
	return true
}

// Reshape replaces a single vertex. For house and pool shapes the edit
// is rejected when the new position is outside the property; the
// property itself is unconstrained since it defines containment for
// everything else. Returns whether the edit was applied.
func (st *Store) Reshape(id string, vertexIndex int, p geometry.Point2D) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := st.getLocked(id)
	if s == nil || vertexIndex < 0 || vertexIndex >= len(s.Vertices) {
		return false
	}

	if s.Kind != KindProperty {
		prop := st.propertyLocked()
		if prop == nil || !geometry.PointInPolygon(p, prop.Vertices) {
			return false
		}
	}

	s.Vertices[vertexIndex] = p
	return true
}

// Rotate rotates a pool shape around its centroid by the given angle in
// radians and accumulates the running rotation for the shape. Only
// pools rotate; the operation is rejected when any rotated vertex would
// leave the property. Returns whether the rotation was applied.
func (st *Store) Rotate(id string, angle float64) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := st.getLocked(id)
	if s == nil || s.Kind != KindPool {
		return false
	}

	rotated := rotateAround(s.Vertices, geometry.Centroid(s.Vertices), angle)

	prop := st.propertyLocked()
	if prop == nil || !allInside(rotated, prop.Vertices) {
		return false
	}

	s.Vertices = rotated
	st.rotations[id] += angle
	return true
}

// Rotation returns the accumulated rotation for a shape id in radians.
func (st *Store) Rotation(id string) float64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.rotations[id]
}

// DeleteLast removes the most recently added shape of the given kind
// and returns it. Deleting the property is refused while house or pool
// shapes still depend on it.
func (st *Store) DeleteLast(kind Kind) (*Shape, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if kind == KindProperty {
		for _, s := range st.shapes {
			if s.Kind != KindProperty {
				return nil, ErrPropertyHasDependents
			}
		}
	}

	for i := len(st.shapes) - 1; i >= 0; i-- {
		if st.shapes[i].Kind != kind {
			continue
		}
		s := st.shapes[i]
		st.shapes = append(st.shapes[:i], st.shapes[i+1:]...)
		delete(st.rotations, s.ID)
		st.dropMarkersLocked(s.ID)
		return s, nil
	}
	return nil, ErrNoShape
}

// RegisterMarker records a drawing primitive id in the side table.
func (st *Store) RegisterMarker(primitiveID string, ref MarkerRef) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.markers[primitiveID] = ref
}

// Marker looks up the shape reference for a drawing primitive id.
func (st *Store) Marker(primitiveID string) (MarkerRef, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	ref, ok := st.markers[primitiveID]
	return ref, ok
}

// DropMarkers removes all side-table entries for a shape id.
func (st *Store) DropMarkers(shapeID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.dropMarkersLocked(shapeID)
}

func (st *Store) dropMarkersLocked(shapeID string) {
	for id, ref := range st.markers {
		if ref.ShapeID == shapeID {
			delete(st.markers, id)
		}
	}
}

// dependentsInsideLocked checks every house/pool vertex against a
// candidate property polygon.
func (st *Store) dependentsInsideLocked(property []geometry.Point2D) bool {
	for _, s := range st.shapes {
		if s.Kind == KindProperty {
			continue
		}
		if !allInside(s.Vertices, property) {
			return false
		}
	}
	return true
}

func allInside(points, polygon []geometry.Point2D) bool {
	for _, p := range points {
		if !geometry.PointInPolygon(p, polygon) {
			return false
		}
	}
	return true
}

// rotateAround applies a rotation matrix to every vertex offset from
// the pivot.
func rotateAround(points []geometry.Point2D, pivot geometry.Point2D, angle float64) []geometry.Point2D {
	sin, cos := math.Sincos(angle)
	rot := mat.NewDense(2, 2, []float64{cos, -sin, sin, cos})

	out := make([]geometry.Point2D, len(points))
	var rotated mat.VecDense
	for i, p := range points {
		offset := mat.NewVecDense(2, []float64{p.X - pivot.X, p.Y - pivot.Y})
		rotated.MulVec(rot, offset)
		out[i] = geometry.Point2D{
			X: pivot.X + rotated.AtVec(0),
			Y: pivot.Y + rotated.AtVec(1),
		}
	}
	return out
}
