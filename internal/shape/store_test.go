package shape

import (
	"math"
	"testing"

	"pool-designer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x, y, w, h float64) []geometry.Point2D {
	return []geometry.Point2D{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}
}

func newStoreWithProperty(t *testing.T) (*Store, *Shape) {
	t.Helper()
	st := NewStore()
	prop := New(KindProperty, square(0, 0, 200, 100))
	require.NoError(t, st.Add(prop))
	return st, prop
}

func TestAddPropertyUniqueness(t *testing.T) {
	st, _ := newStoreWithProperty(t)
	err := st.Add(New(KindProperty, square(10, 10, 50, 50)))
	assert.ErrorIs(t, err, ErrPropertyExists)

	// Any number of houses and pools is fine.
	require.NoError(t, st.Add(New(KindHouse, square(10, 10, 20, 20))))
	require.NoError(t, st.Add(New(KindHouse, square(40, 10, 20, 20))))
	require.NoError(t, st.Add(New(KindPool, square(100, 40, 30, 30))))
	assert.Len(t, st.ByKind(KindHouse), 2)
	assert.Len(t, st.ByKind(KindPool), 1)
}

func TestMoveContainment(t *testing.T) {
	st, _ := newStoreWithProperty(t)
	pool := New(KindPool, square(150, 40, 40, 40))
	require.NoError(t, st.Add(pool))

	tests := []struct {
		name  string
		delta geometry.Point2D
		want  bool
	}{
		{name: "move within property", delta: geometry.Point2D{X: -10, Y: 0}, want: true},
		{name: "move past right edge rejected", delta: geometry.Point2D{X: 50, Y: 0}, want: false},
		{name: "move past bottom edge rejected", delta: geometry.Point2D{X: 0, Y: 50}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := pool.CloneVertices()
			got := st.Move(pool.ID, tt.delta)
			assert.Equal(t, tt.want, got)
			if !tt.want {
				// Rejected move leaves the vertex list untouched.
				assert.Equal(t, before, pool.Vertices)
			}
		})
	}
}

func TestMovePropertyGuardsDependents(t *testing.T) {
	st, prop := newStoreWithProperty(t)
	house := New(KindHouse, square(5, 5, 30, 30))
	require.NoError(t, st.Add(house))

	// Shifting the property right would strand the house outside.
	assert.False(t, st.Move(prop.ID, geometry.Point2D{X: 100, Y: 0}))
	// A small shift that keeps the house inside is accepted.
	assert.True(t, st.Move(prop.ID, geometry.Point2D{X: -2, Y: -2}))
}

func TestReshape(t *testing.T) {
	st, prop := newStoreWithProperty(t)
	pool := New(KindPool, square(50, 20, 40, 40))
	require.NoError(t, st.Add(pool))

	// Scenario D: dragging a pool vertex outside the property is a no-op.
	before := pool.CloneVertices()
	assert.False(t, st.Reshape(pool.ID, 1, geometry.Point2D{X: 250, Y: 50}))
	assert.Equal(t, before, pool.Vertices)

	// Inside the property the reshape is applied.
	assert.True(t, st.Reshape(pool.ID, 1, geometry.Point2D{X: 120, Y: 25}))
	assert.Equal(t, geometry.Point2D{X: 120, Y: 25}, pool.Vertices[1])

	// The property itself has no containment constraint.
	assert.True(t, st.Reshape(prop.ID, 0, geometry.Point2D{X: -50, Y: -50}))

	// Out-of-range vertex index.
	assert.False(t, st.Reshape(pool.ID, 9, geometry.Point2D{X: 60, Y: 30}))
}

func TestRotatePoolOnly(t *testing.T) {
	st, _ := newStoreWithProperty(t)
	house := New(KindHouse, square(10, 10, 20, 20))
	pool := New(KindPool, square(80, 30, 40, 40))
	require.NoError(t, st.Add(house))
	require.NoError(t, st.Add(pool))

	// Houses do not rotate.
	assert.False(t, st.Rotate(house.ID, math.Pi/4))

	// A square rotated 90 degrees about its centroid stays inside.
	centroid := pool.Centroid()
	require.True(t, st.Rotate(pool.ID, math.Pi/2))
	got := pool.Centroid()
	assert.InDelta(t, centroid.X, got.X, 1e-9)
	assert.InDelta(t, centroid.Y, got.Y, 1e-9)
	assert.InDelta(t, math.Pi/2, st.Rotation(pool.ID), 1e-9)

	// Rotation accumulates per shape id.
	require.True(t, st.Rotate(pool.ID, math.Pi/2))
	assert.InDelta(t, math.Pi, st.Rotation(pool.ID), 1e-9)

	// A 45 degree rotation of a 40px square near the top edge would
	// poke outside the property; the whole rotation is refused.
	tight := New(KindPool, square(0, 0, 40, 40))
	stTight := NewStore()
	require.NoError(t, stTight.Add(New(KindProperty, square(0, 0, 40, 40))))
	require.NoError(t, stTight.Add(tight))
	before := tight.CloneVertices()
	assert.False(t, stTight.Rotate(tight.ID, math.Pi/4))
	assert.Equal(t, before, tight.Vertices)
}

func TestRotatePreservesVertexDistances(t *testing.T) {
	st, _ := newStoreWithProperty(t)
	pool := New(KindPool, square(80, 30, 40, 40))
	require.NoError(t, st.Add(pool))

	before := pool.CloneVertices()
	require.True(t, st.Rotate(pool.ID, 0.3))
	for i := range before {
		j := (i + 1) % len(before)
		assert.InDelta(t, before[i].Distance(before[j]), pool.Vertices[i].Distance(pool.Vertices[j]), 1e-9)
	}
}

func TestDeleteLast(t *testing.T) {
	st, _ := newStoreWithProperty(t)
	h1 := New(KindHouse, square(10, 10, 20, 20))
	h2 := New(KindHouse, square(50, 10, 20, 20))
	require.NoError(t, st.Add(h1))
	require.NoError(t, st.Add(h2))

	// Property deletion is refused while dependents exist.
	_, err := st.DeleteLast(KindProperty)
	assert.ErrorIs(t, err, ErrPropertyHasDependents)

	// Houses delete LIFO.
	got, err := st.DeleteLast(KindHouse)
	require.NoError(t, err)
	assert.Equal(t, h2.ID, got.ID)

	got, err = st.DeleteLast(KindHouse)
	require.NoError(t, err)
	assert.Equal(t, h1.ID, got.ID)

	_, err = st.DeleteLast(KindHouse)
	assert.ErrorIs(t, err, ErrNoShape)

	// With no dependents left the property can go.
	_, err = st.DeleteLast(KindProperty)
	require.NoError(t, err)
	assert.Nil(t, st.Property())
}

func TestMarkerSideTable(t *testing.T) {
	st, prop := newStoreWithProperty(t)

	st.RegisterMarker("prim-1", MarkerRef{ShapeID: prop.ID, VertexIndex: 2, Role: RoleVertex})
	st.RegisterMarker("prim-2", MarkerRef{ShapeID: prop.ID, Role: RoleOutline})

	ref, ok := st.Marker("prim-1")
	require.True(t, ok)
	assert.Equal(t, 2, ref.VertexIndex)
	assert.Equal(t, RoleVertex, ref.Role)

	st.DropMarkers(prop.ID)
	_, ok = st.Marker("prim-1")
	assert.False(t, ok)
	_, ok = st.Marker("prim-2")
	assert.False(t, ok)
}

func TestContainmentInvariantAfterEdits(t *testing.T) {
	st, _ := newStoreWithProperty(t)
	pool := New(KindPool, square(60, 30, 40, 40))
	require.NoError(t, st.Add(pool))

	ops := []func() bool{
		func() bool { return st.Move(pool.ID, geometry.Point2D{X: 30, Y: 10}) },
		func() bool { return st.Move(pool.ID, geometry.Point2D{X: 200, Y: 0}) },
		func() bool { return st.Reshape(pool.ID, 0, geometry.Point2D{X: 65, Y: 45}) },
		func() bool { return st.Reshape(pool.ID, 0, geometry.Point2D{X: -65, Y: 45}) },
		func() bool { return st.Rotate(pool.ID, 0.2) },
	}

	prop := st.Property()
	for _, op := range ops {
		op()
		for _, v := range pool.Vertices {
			assert.True(t, geometry.PointInPolygon(v, prop.Vertices),
				"vertex %v escaped the property after an edit", v)
		}
	}
}
