package history

import (
	"testing"

	"pool-designer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addPoint(x, y float64) Action {
	return Action{Type: ActionAddPoint, Point: geometry.Point2D{X: x, Y: y}}
}

func TestUndoRedoOrder(t *testing.T) {
	l := NewLog()
	l.Record(addPoint(1, 1))
	l.Record(addPoint(2, 2))
	l.Record(addPoint(3, 3))

	a, ok := l.Undo()
	require.True(t, ok)
	assert.Equal(t, geometry.Point2D{X: 3, Y: 3}, a.Point)

	a, ok = l.Undo()
	require.True(t, ok)
	assert.Equal(t, geometry.Point2D{X: 2, Y: 2}, a.Point)

	a, ok = l.Redo()
	require.True(t, ok)
	assert.Equal(t, geometry.Point2D{X: 2, Y: 2}, a.Point)

	assert.True(t, l.CanUndo())
	assert.True(t, l.CanRedo())
}

func TestRecordClearsRedo(t *testing.T) {
	l := NewLog()
	l.Record(addPoint(1, 1))
	l.Record(addPoint(2, 2))

	_, ok := l.Undo()
	require.True(t, ok)
	require.True(t, l.CanRedo())

	l.Record(addPoint(9, 9))
	assert.False(t, l.CanRedo())
}

func TestEmptyStacks(t *testing.T) {
	l := NewLog()
	_, ok := l.Undo()
	assert.False(t, ok)
	_, ok = l.Redo()
	assert.False(t, ok)
	assert.False(t, l.CanUndo())
	assert.False(t, l.CanRedo())
}

func draftPoint(x, y float64, draft int) Action {
	return Action{Type: ActionAddPoint, Point: geometry.Point2D{X: x, Y: y}, Draft: draft}
}

func TestDropDraftScrubsBothStacks(t *testing.T) {
	l := NewLog()
	l.Record(draftPoint(1, 1, 1))
	l.Record(Action{Type: ActionCompleteShape, Draft: 1})
	l.Record(draftPoint(5, 5, 2))
	l.Record(draftPoint(6, 6, 2))

	// one of the second draft's points sits on the redo stack
	_, ok := l.Undo()
	require.True(t, ok)

	l.DropDraft(2)

	assert.False(t, l.CanRedo())
	a, ok := l.Undo()
	require.True(t, ok)
	assert.Equal(t, ActionCompleteShape, a.Type)
	a, ok = l.Undo()
	require.True(t, ok)
	assert.Equal(t, geometry.Point2D{X: 1, Y: 1}, a.Point)
}

func TestDropDraftKeepsOtherDrafts(t *testing.T) {
	l := NewLog()
	l.Record(draftPoint(1, 1, 1))
	l.Record(draftPoint(2, 2, 2))

	l.DropDraft(1)

	a, ok := l.Undo()
	require.True(t, ok)
	assert.Equal(t, 2, a.Draft)
	assert.False(t, l.CanUndo())
}

func TestReset(t *testing.T) {
	l := NewLog()
	l.Record(addPoint(1, 1))
	l.Undo()
	l.Reset()
	assert.False(t, l.CanUndo())
	assert.False(t, l.CanRedo())
}
