package client

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEngine returns an engine with a controllable clock. advance moves the
// clock far enough that the next Track starts a new undo group.
func testEngine() (*UndoEngine, func()) {
	now := time.Unix(0, 0)
	e := NewUndoEngine()
	e.now = func() time.Time { return now }
	return e, func() { now = now.Add(CoalesceWindow) }
}

func TestUndoEngine_UndoRedo(t *testing.T) {
	e, advance := testEngine()
	content := "v2"
	current := func(Field) string { return content }

	advance()
	e.Track(FieldContent, "v1")

	entry, ok := e.Undo(current)
	require.True(t, ok)
	assert.Equal(t, "v1", entry.Previous)
	assert.Equal(t, FieldContent, entry.Field)
	content = entry.Previous

	// Redo restores the exact pre-undo value.
	entry, ok = e.Redo(current)
	require.True(t, ok)
	assert.Equal(t, "v2", entry.Previous)
	content = entry.Previous

	// And the redo can be undone again.
	entry, ok = e.Undo(current)
	require.True(t, ok)
	assert.Equal(t, "v1", entry.Previous)
}

func TestUndoEngine_EmptyHistory(t *testing.T) {
	e, _ := testEngine()
	current := func(Field) string { return "" }

	_, ok := e.Undo(current)
	assert.False(t, ok)
	_, ok = e.Redo(current)
	assert.False(t, ok)
}

func TestUndoEngine_CapacityBoundsHistory(t *testing.T) {
	e, advance := testEngine()
	current := func(Field) string { return "now" }

	// 45 tracked edits in a capacity-40 ring: the 5 oldest are discarded.
	for i := 0; i < 45; i++ {
		advance()
		e.Track(FieldContent, fmt.Sprintf("v%d", i))
	}

	for i := 0; i < 40; i++ {
		entry, ok := e.Undo(current)
		require.True(t, ok, "undo %d should still have history", i+1)
		assert.Equal(t, fmt.Sprintf("v%d", 44-i), entry.Previous)
	}

	_, ok := e.Undo(current)
	assert.False(t, ok, "the 41st undo finds the history exhausted")
}

func TestUndoEngine_TrackInvalidatesRedo(t *testing.T) {
	e, advance := testEngine()
	current := func(Field) string { return "x" }

	advance()
	e.Track(FieldContent, "v1")
	_, ok := e.Undo(current)
	require.True(t, ok)

	advance()
	e.Track(FieldContent, "v2")

	_, ok = e.Redo(current)
	assert.False(t, ok, "a new edit makes redo unavailable")
}

func TestUndoEngine_Coalescing(t *testing.T) {
	e := NewUndoEngine()
	now := time.Unix(0, 0)
	e.now = func() time.Time { return now }

	// A burst of edits inside the window collapses into one entry.
	e.Track(FieldContent, "v1")
	now = now.Add(100 * time.Millisecond)
	e.Track(FieldContent, "v1a")
	now = now.Add(100 * time.Millisecond)
	e.Track(FieldContent, "v1b")

	current := func(Field) string { return "v2" }
	entry, ok := e.Undo(current)
	require.True(t, ok)
	assert.Equal(t, "v1", entry.Previous, "the burst undoes to its first snapshot")

	_, ok = e.Undo(current)
	assert.False(t, ok, "one burst, one entry")
}

func TestUndoEngine_FieldsIndependent(t *testing.T) {
	e, advance := testEngine()

	advance()
	e.Track(FieldTitle, "old title")
	advance()
	e.Track(FieldContent, "old content")

	values := map[Field]string{FieldTitle: "new title", FieldContent: "new content"}
	current := func(f Field) string { return values[f] }

	entry, ok := e.Undo(current)
	require.True(t, ok)
	assert.Equal(t, FieldContent, entry.Field)
	assert.Equal(t, "old content", entry.Previous, "content undo never restores the title")

	entry, ok = e.Undo(current)
	require.True(t, ok)
	assert.Equal(t, FieldTitle, entry.Field)
	assert.Equal(t, "old title", entry.Previous)
}
