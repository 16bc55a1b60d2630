package todo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwarden/wkcal/internal/storage"
)

const dataPath = "/vault/.wkcal/data.json"

func newTestStore(t *testing.T) (*Store, *storage.MemStorage) {
	t.Helper()
	mem := storage.NewMemStorage()
	return NewStore(NewFileBackend(mem, dataPath), nil), mem
}

func texts(b Bucket) []string {
	out := make([]string, 0, len(b))
	for _, task := range b {
		out = append(out, task.Text)
	}
	return out
}

func TestStore_LoadFresh(t *testing.T) {
	s, _ := newTestStore(t)
	m, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestStore_AddTrimsText(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	task, err := s.AddTodo(ctx, "noteA", "Monday", "  buy milk  ")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.NotEmpty(t, task.ID)

	m, err := s.Load(ctx)
	require.NoError(t, err)
	bucket := m.Bucket("noteA", "Monday")
	require.Len(t, bucket, 1)
	assert.Equal(t, "buy milk", bucket[0].Text)
	assert.False(t, bucket[0].Completed)
	assert.Equal(t, task.ID, bucket[0].ID)
}

func TestStore_AddBlankIsIgnored(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)

	_, err := s.AddTodo(ctx, "noteA", "Monday", "first")
	require.NoError(t, err)
	before, err := mem.Read(dataPath)
	require.NoError(t, err)

	task, err := s.AddTodo(ctx, "noteA", "Monday", "   ")
	require.NoError(t, err)
	assert.Nil(t, task)

	after, err := mem.Read(dataPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	m, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, texts(m.Bucket("noteA", "Monday")))
}

func TestStore_AddPreservesOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	for _, text := range []string{"one", "two", "three"} {
		_, err := s.AddTodo(ctx, "", "Friday", text)
		require.NoError(t, err)
	}

	m, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, texts(m.Bucket("", "Friday")))
}

func TestStore_DayKeyIsNormalized(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.AddTodo(ctx, "noteA", "mon", "stretch")
	require.NoError(t, err)

	m, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, m.Bucket("noteA", "Monday"), 1)
}

func TestStore_AddThenRemove(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.AddTodo(ctx, "noteA", "Monday", "read book")
	require.NoError(t, err)
	n, err := s.RemoveTodo(ctx, "noteA", "Monday", "read book")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	m, err := s.Load(ctx)
	require.NoError(t, err)
	bucket, ok := m["noteA"]["Monday"]
	assert.True(t, ok)
	assert.Empty(t, bucket)
}

func TestStore_RemoveAllMatches(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	for _, text := range []string{"dup", "keep", "dup"} {
		_, err := s.AddTodo(ctx, "n", "Tuesday", text)
		require.NoError(t, err)
	}

	n, err := s.RemoveTodo(ctx, "n", "Tuesday", "dup")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	m, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, texts(m.Bucket("n", "Tuesday")))
}

func TestStore_RemoveMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)

	n, err := s.RemoveTodo(ctx, "nothing", "Monday", "x")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.False(t, mem.Exists(dataPath), "no-op must not write")

	removed, err := s.RemoveByID(ctx, "nothing", "Monday", "id")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStore_RemoveByIDDisambiguatesDuplicates(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	first, err := s.AddTodo(ctx, "n", "Monday", "same")
	require.NoError(t, err)
	second, err := s.AddTodo(ctx, "n", "Monday", "same")
	require.NoError(t, err)

	ok, err := s.RemoveByID(ctx, "n", "Monday", first.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	m, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, m.Bucket("n", "Monday"), 1)
	assert.Equal(t, second.ID, m.Bucket("n", "Monday")[0].ID)
}

func TestStore_ToggleTwiceRestores(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.AddTodo(ctx, "noteA", "Monday", "buy milk")
	require.NoError(t, err)

	found, err := s.ToggleCompleted(ctx, "noteA", "Monday", "buy milk")
	require.NoError(t, err)
	assert.True(t, found)
	m, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, m.Bucket("noteA", "Monday")[0].Completed)

	_, err = s.ToggleCompleted(ctx, "noteA", "Monday", "buy milk")
	require.NoError(t, err)
	m, err = s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, m.Bucket("noteA", "Monday")[0].Completed)
}

func TestStore_ToggleFlipsFirstMatchOnly(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.AddTodo(ctx, "n", "Monday", "same")
	require.NoError(t, err)
	_, err = s.AddTodo(ctx, "n", "Monday", "same")
	require.NoError(t, err)

	_, err = s.ToggleCompleted(ctx, "n", "Monday", "same")
	require.NoError(t, err)

	m, err := s.Load(ctx)
	require.NoError(t, err)
	bucket := m.Bucket("n", "Monday")
	assert.True(t, bucket[0].Completed)
	assert.False(t, bucket[1].Completed)
}

func TestStore_ToggleByIDAndMissing(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	task, err := s.AddTodo(ctx, "n", "Monday", "x")
	require.NoError(t, err)

	found, err := s.ToggleByID(ctx, "n", "Monday", task.ID)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.ToggleByID(ctx, "n", "Monday", "missing")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = s.ToggleCompleted(ctx, "n", "Sunday", "x")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_ClearCompleted(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	add := func(scope, day, text string, done bool) {
		task, err := s.AddTodo(ctx, scope, day, text)
		require.NoError(t, err)
		if done {
			_, err = s.ToggleByID(ctx, scope, day, task.ID)
			require.NoError(t, err)
		}
	}
	add("n", "Monday", "a", false)
	add("n", "Monday", "b", true)
	add("n", "Monday", "c", false)
	add("n", "Tuesday", "d", true)
	add("other", "Monday", "e", true)

	n, err := s.ClearCompleted(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	m, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, texts(m.Bucket("n", "Monday")))
	_, hasTuesday := m["n"]["Tuesday"]
	assert.False(t, hasTuesday, "emptied day is pruned")
	assert.Len(t, m.Bucket("other", "Monday"), 1, "other scopes untouched")
}

func TestStore_ClearCompletedDropsEmptyScope(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	task, err := s.AddTodo(ctx, "n", "Monday", "done")
	require.NoError(t, err)
	_, err = s.ToggleByID(ctx, "n", "Monday", task.ID)
	require.NoError(t, err)

	_, err = s.ClearCompleted(ctx, "n")
	require.NoError(t, err)

	scopes, err := s.Scopes(ctx)
	require.NoError(t, err)
	assert.NotContains(t, scopes, "n")
}

func TestStore_ClearCompletedKeepsEmptyDays(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.AddTodo(ctx, "n", "Monday", "read book")
	require.NoError(t, err)
	_, err = s.RemoveTodo(ctx, "n", "Monday", "read book")
	require.NoError(t, err)
	task, err := s.AddTodo(ctx, "n", "Tuesday", "done")
	require.NoError(t, err)
	_, err = s.ToggleByID(ctx, "n", "Tuesday", task.ID)
	require.NoError(t, err)

	n, err := s.ClearCompleted(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	m, err := s.Load(ctx)
	require.NoError(t, err)
	monday, hasMonday := m["n"]["Monday"]
	assert.True(t, hasMonday, "day emptied earlier is kept")
	assert.Empty(t, monday)
	_, hasTuesday := m["n"]["Tuesday"]
	assert.False(t, hasTuesday)

	// Nothing completed: nothing changes
	n, err = s.ClearCompleted(ctx, "n")
	require.NoError(t, err)
	assert.Zero(t, n)
	scopes, err := s.Scopes(ctx)
	require.NoError(t, err)
	assert.Contains(t, scopes, "n")
}

func TestStore_SaveFailureIsReported(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	mem.WriteErr = errors.New("disk full")

	_, err := s.AddTodo(ctx, "n", "Monday", "x")
	require.Error(t, err)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "write", ioErr.Op)
}

func TestStore_CorruptDataFailsOpen(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	require.NoError(t, mem.Mkdir("/vault/.wkcal"))
	require.NoError(t, mem.Write(dataPath, []byte("{not json")))

	m, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)

	// The unreadable document outlives any number of later saves.
	for _, text := range []string{"x", "y", "z"} {
		_, err = s.AddTodo(ctx, "n", "Monday", text)
		require.NoError(t, err)
	}
	kept, err := mem.Read(dataPath + UnreadableSuffix)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(kept))
	assert.False(t, mem.Exists(dataPath+UnreadableSuffix+".1"))

	backup, err := mem.Read(dataPath + BackupSuffix)
	require.NoError(t, err)
	prev, err := Decode(backup)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, texts(prev.Bucket("n", "Monday")))

	// A second corruption does not replace the first copy
	require.NoError(t, mem.Write(dataPath, []byte("[broken")))
	_, err = s.AddTodo(ctx, "n", "Monday", "again")
	require.NoError(t, err)
	kept, err = mem.Read(dataPath + UnreadableSuffix)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(kept))
	second, err := mem.Read(dataPath + UnreadableSuffix + ".1")
	require.NoError(t, err)
	assert.Equal(t, "[broken", string(second))
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)

	_, err := s.AddTodo(ctx, "noteA", "Monday", "one")
	require.NoError(t, err)
	_, err = s.AddTodo(ctx, "noteB", "2024-06-12", "two")
	require.NoError(t, err)

	before, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, before))

	raw, err := mem.Read(dataPath)
	require.NoError(t, err)
	after, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_DaysReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	_, err := s.AddTodo(ctx, "n", "Monday", "x")
	require.NoError(t, err)

	days, err := s.Days(ctx, "n")
	require.NoError(t, err)
	days["Monday"][0].Text = "changed"

	again, err := s.Days(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, "x", again["Monday"][0].Text)

	missing, err := s.Days(ctx, "absent")
	require.NoError(t, err)
	assert.Empty(t, missing)
}
