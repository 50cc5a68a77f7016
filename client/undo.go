package client

import (
	"time"
)

// Field identifies which editable field of a note an undo entry restores.
// Title and content histories never bleed into each other: undoing a title
// edit cannot touch the content.
type Field int

const (
	FieldTitle Field = iota
	FieldContent
)

// UndoEntry is one restorable snapshot: the value a field held before an
// edit burst.
type UndoEntry struct {
	Previous string
	Field    Field
}

const (
	// UndoCapacity bounds history depth; the oldest entry is silently
	// discarded when a new one would not fit.
	UndoCapacity = 40

	// CoalesceWindow groups keystrokes: edits to the same field closer
	// together than this are one undoable unit.
	CoalesceWindow = 500 * time.Millisecond
)

// UndoEngine keeps the edit history of one note: a bounded deque of undo
// snapshots and a redo stack that any newly tracked edit clears.
type UndoEngine struct {
	capacity int
	window   time.Duration
	now      func() time.Time

	lastTrack map[Field]time.Time
	undo      []UndoEntry
	redo      []UndoEntry
}

func NewUndoEngine() *UndoEngine {
	return &UndoEngine{
		capacity:  UndoCapacity,
		window:    CoalesceWindow,
		now:       time.Now,
		lastTrack: make(map[Field]time.Time),
	}
}

// Track records the value field held before the edit being made now. Edits
// to the same field within the coalescing window are dropped: the snapshot
// already taken is enough to undo the whole burst. A tracked edit makes any
// pending redo unreachable.
func (e *UndoEngine) Track(field Field, previous string) {
	now := e.now()
	last, seen := e.lastTrack[field]
	e.lastTrack[field] = now
	if seen && now.Sub(last) < e.window {
		return
	}

	if len(e.undo) == e.capacity {
		copy(e.undo, e.undo[1:])
		e.undo = e.undo[:e.capacity-1]
	}
	e.undo = append(e.undo, UndoEntry{Previous: previous, Field: field})
	e.redo = e.redo[:0]
}

// Undo pops the most recent snapshot. current must return the field's
// present value, which becomes the redo candidate. The second return is
// false when the history is exhausted.
func (e *UndoEngine) Undo(current func(Field) string) (UndoEntry, bool) {
	if len(e.undo) == 0 {
		return UndoEntry{}, false
	}

	entry := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	e.redo = append(e.redo, UndoEntry{Previous: current(entry.Field), Field: entry.Field})

	// The next edit starts a fresh undo group no matter how soon it lands.
	delete(e.lastTrack, entry.Field)

	return entry, true
}

// Redo re-applies the value the last undo replaced and pushes a fresh undo
// snapshot so the redo can itself be undone. Returns false when there is
// nothing to redo.
func (e *UndoEngine) Redo(current func(Field) string) (UndoEntry, bool) {
	if len(e.redo) == 0 {
		return UndoEntry{}, false
	}

	entry := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]

	if len(e.undo) == e.capacity {
		copy(e.undo, e.undo[1:])
		e.undo = e.undo[:e.capacity-1]
	}
	e.undo = append(e.undo, UndoEntry{Previous: current(entry.Field), Field: entry.Field})
	delete(e.lastTrack, entry.Field)

	return entry, true
}
