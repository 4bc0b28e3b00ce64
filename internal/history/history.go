// Package history provides the linear undo/redo log for tracing
// mutations.
package history

import (
	"pool-designer/internal/shape"
	"pool-designer/pkg/geometry"
)

// ActionType tags an undoable action.
type ActionType int

const (
	// ActionAddPoint records a vertex appended to the open draft.
	ActionAddPoint ActionType = iota
	// ActionCompleteShape records a draft promoted to a finalized shape.
	ActionCompleteShape
)

// Action is one recorded mutation. Point is set for ActionAddPoint,
// Shape for ActionCompleteShape. Draft is the generation of the draft
// the action belongs to, so records of a canceled or completed draft
// can be told apart from the open one.
type Action struct {
	Type  ActionType
	Point geometry.Point2D
	Shape *shape.Shape
	Draft int
}

// Log holds the undo and redo stacks. Standard linear-history
// discipline: every new mutation clears the redo stack.
type Log struct {
	undo []Action
	redo []Action
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Record pushes a new action and clears the redo stack.
func (l *Log) Record(a Action) {
	l.undo = append(l.undo, a)
	l.redo = l.redo[:0]
}

// Undo pops the most recent action onto the redo stack and returns it.
// The caller applies the structural inverse.
func (l *Log) Undo() (Action, bool) {
	if len(l.undo) == 0 {
		return Action{}, false
	}
	a := l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]
	l.redo = append(l.redo, a)
	return a, true
}

// Redo moves the most recently undone action back to the undo stack
// and returns it. The caller reapplies the action.
func (l *Log) Redo() (Action, bool) {
	if len(l.redo) == 0 {
		return Action{}, false
	}
	a := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]
	l.undo = append(l.undo, a)
	return a, true
}

// CanUndo reports whether an undoable action exists.
func (l *Log) CanUndo() bool {
	return len(l.undo) > 0
}

// CanRedo reports whether a redoable action exists.
func (l *Log) CanRedo() bool {
	return len(l.redo) > 0
}

// DropDraft removes every AddPoint record of the given draft
// generation from both stacks. Called when a draft is canceled so its
// points can never be undone or replayed into a later draft.
func (l *Log) DropDraft(draft int) {
	l.undo = dropDraftPoints(l.undo, draft)
	l.redo = dropDraftPoints(l.redo, draft)
}

func dropDraftPoints(actions []Action, draft int) []Action {
	out := actions[:0]
	for _, a := range actions {
		if a.Type == ActionAddPoint && a.Draft == draft {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Reset discards both stacks.
func (l *Log) Reset() {
	l.undo = l.undo[:0]
	l.redo = l.redo[:0]
}
