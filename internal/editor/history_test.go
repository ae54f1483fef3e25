package editor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/resume"
)

func snap(title string) resume.Detail {
	return resume.Detail{Title: title}
}

func TestHistoryUndoRedoMovesCursor(t *testing.T) {
	h := NewHistory(0)
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	h.Reset(snap("a"))
	h.Push(snap("b"))
	h.Push(snap("c"))

	got, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, "b", got.Title)

	got, ok = h.Undo()
	require.True(t, ok)
	assert.Equal(t, "a", got.Title)

	_, ok = h.Undo()
	assert.False(t, ok)

	got, ok = h.Redo()
	require.True(t, ok)
	assert.Equal(t, "b", got.Title)
	assert.Equal(t, 3, h.Len())
}

func TestHistoryPushTruncatesForwardEntries(t *testing.T) {
	h := NewHistory(0)
	h.Reset(snap("a"))
	h.Push(snap("b"))
	h.Push(snap("c"))
	h.Undo()
	h.Undo()

	h.Push(snap("d"))
	assert.Equal(t, 2, h.Len())
	assert.False(t, h.CanRedo())

	current, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, "d", current.Title)

	got, _ := h.Undo()
	assert.Equal(t, "a", got.Title)
}

func TestHistoryDropsOldestBeyondLimit(t *testing.T) {
	h := NewHistory(3)
	h.Reset(snap("0"))
	for _, title := range []string{"1", "2", "3", "4"} {
		h.Push(snap(title))
	}
	require.Equal(t, 3, h.Len())
	assert.Equal(t, "2", h.Entries[0].Title)
	assert.Equal(t, 2, h.Cursor)

	state := h.State()
	assert.True(t, state.CanUndo)
	assert.False(t, state.CanRedo)
}

func TestMemoryHistoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryHistoryStore(5)

	h, err := store.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, -1, h.Cursor)

	h.Reset(snap("a"))
	h.Push(snap("b"))
	h.Undo()
	require.NoError(t, store.Save(ctx, 1, h))

	loaded, err := store.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Cursor)
	assert.True(t, loaded.CanRedo())

	require.NoError(t, store.Delete(ctx, 1))
	loaded, err = store.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}

func TestHistoryKey(t *testing.T) {
	assert.Equal(t, "editor:history:42", historyKey(42))
}
