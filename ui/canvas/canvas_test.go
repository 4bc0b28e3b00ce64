package canvas

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pool-designer/internal/designer"
	"pool-designer/internal/shape"
	"pool-designer/pkg/geometry"
)

func pt(x, y float64) geometry.Point2D { return geometry.Point2D{X: x, Y: y} }

func squareView(s *shape.Shape) designer.ShapeView {
	return designer.ShapeView{
		ID:       s.ID,
		Kind:     s.Kind,
		Vertices: s.CloneVertices(),
	}
}

func TestSnapshotRegistersVertexMarkers(t *testing.T) {
	test.NewApp()
	store := shape.NewStore()
	dc := NewDesignCanvas(10, store)

	s := shape.New(shape.KindProperty, []geometry.Point2D{
		pt(0, 0), pt(100, 0), pt(100, 100), pt(0, 100),
	})
	require.NoError(t, store.Add(s))

	dc.SetSnapshot(designer.Snapshot{Shapes: []designer.ShapeView{squareView(s)}})

	// every drawn vertex primitive resolves through the side table
	for i := 0; i < 4; i++ {
		ref, ok := store.Marker(markerID(s.ID, i))
		require.True(t, ok)
		assert.Equal(t, s.ID, ref.ShapeID)
		assert.Equal(t, i, ref.VertexIndex)
		assert.Equal(t, shape.RoleVertex, ref.Role)
	}
	ref, ok := store.Marker(s.ID + ":outline")
	require.True(t, ok)
	assert.Equal(t, shape.RoleOutline, ref.Role)
}

func TestHitVertexResolvesThroughMarkerTable(t *testing.T) {
	test.NewApp()
	store := shape.NewStore()
	dc := NewDesignCanvas(10, store)

	s := shape.New(shape.KindProperty, []geometry.Point2D{
		pt(0, 0), pt(100, 0), pt(100, 100), pt(0, 100),
	})
	require.NoError(t, store.Add(s))
	dc.SetSnapshot(designer.Snapshot{Shapes: []designer.ShapeView{squareView(s)}})

	id, idx, v, ok := dc.hitVertex(pt(98, 101))
	require.True(t, ok)
	assert.Equal(t, s.ID, id)
	assert.Equal(t, 2, idx)
	assert.Equal(t, pt(100, 100), v)

	// misses outside the hit radius
	_, _, _, ok = dc.hitVertex(pt(50, 50))
	assert.False(t, ok)
}

func TestDeleteDropsShapeMarkers(t *testing.T) {
	test.NewApp()
	store := shape.NewStore()
	dc := NewDesignCanvas(10, store)

	prop := shape.New(shape.KindProperty, []geometry.Point2D{
		pt(0, 0), pt(200, 0), pt(200, 200), pt(0, 200),
	})
	house := shape.New(shape.KindHouse, []geometry.Point2D{
		pt(10, 10), pt(50, 10), pt(50, 50), pt(10, 50),
	})
	require.NoError(t, store.Add(prop))
	require.NoError(t, store.Add(house))
	dc.SetSnapshot(designer.Snapshot{Shapes: []designer.ShapeView{
		squareView(prop), squareView(house),
	}})

	_, err := store.DeleteLast(shape.KindHouse)
	require.NoError(t, err)

	_, ok := store.Marker(markerID(house.ID, 0))
	assert.False(t, ok)
	_, ok = store.Marker(markerID(prop.ID, 0))
	assert.True(t, ok)
}
