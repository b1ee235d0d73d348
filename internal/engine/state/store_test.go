package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	sq, err := NewSQLiteStore(filepath.Join(t.TempDir(), "states.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sq,
	}
}

func TestStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st, err := s.GetState(ctx, "0.place_id")
			require.NoError(t, err)
			assert.Nil(t, st)
		})
	}
}

func TestStoreSetAndOverwrite(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.SetState(ctx, "0.name", "Bäckerei Müller", true))
			require.NoError(t, s.SetState(ctx, "0.rating", 4.5, true))
			require.NoError(t, s.SetState(ctx, "0.types", []string{"bakery", "store"}, true))

			st, err := s.GetState(ctx, "0.name")
			require.NoError(t, err)
			require.NotNil(t, st)
			assert.Equal(t, "Bäckerei Müller", st.Val)
			assert.True(t, st.Ack)

			st, err = s.GetState(ctx, "0.rating")
			require.NoError(t, err)
			assert.Equal(t, 4.5, st.Val)

			st, err = s.GetState(ctx, "0.types")
			require.NoError(t, err)
			assert.Equal(t, []any{"bakery", "store"}, st.Val)

			require.NoError(t, s.SetState(ctx, "0.name", "Neuer Name", false))
			st, err = s.GetState(ctx, "0.name")
			require.NoError(t, err)
			assert.Equal(t, "Neuer Name", st.Val)
			assert.False(t, st.Ack)
		})
	}
}

func TestStoreEnsureObjectSeedsDefaultOnce(t *testing.T) {
	ctx := context.Background()
	obj := ReadOnlyState("open", "boolean")
	obj.Common.Def = false

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			id := Join("0", "periods", "Montag", "open")
			require.NoError(t, s.EnsureObject(ctx, id, obj))

			st, err := s.GetState(ctx, id)
			require.NoError(t, err)
			require.NotNil(t, st)
			assert.Equal(t, false, st.Val)

			require.NoError(t, s.SetState(ctx, id, true, true))
			require.NoError(t, s.EnsureObject(ctx, id, obj))

			st, err = s.GetState(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, true, st.Val)
		})
	}
}

func TestStoreEnsureObjectWithoutDefault(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.EnsureObject(ctx, "0.place_id", ReadOnlyState("place_id", "string")))
			st, err := s.GetState(ctx, "0.place_id")
			require.NoError(t, err)
			assert.Nil(t, st)
		})
	}
}

func TestStoreListByPrefix(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.EnsureObject(ctx, "0.periods", Channel("periods")))
			require.NoError(t, s.EnsureObject(ctx, "0.name", ReadOnlyState("name", "string")))
			require.NoError(t, s.EnsureObject(ctx, "1.name", ReadOnlyState("name", "string")))
			require.NoError(t, s.EnsureObject(ctx, "10.name", ReadOnlyState("name", "string")))
			require.NoError(t, s.SetState(ctx, "0.name", "A", true))

			entries, err := s.List(ctx, "0.")
			require.NoError(t, err)
			require.Len(t, entries, 2)

			assert.Equal(t, "0.name", entries[0].ID)
			assert.Equal(t, "string", entries[0].Object.Common.Type)
			require.NotNil(t, entries[0].State)
			assert.Equal(t, "A", entries[0].State.Val)

			assert.Equal(t, "0.periods", entries[1].ID)
			assert.Equal(t, TypeChannel, entries[1].Object.Type)
			assert.Nil(t, entries[1].State)

			all, err := s.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 4)

			// segment match: shop 1 must not pick up shop 10
			entries, err = s.List(ctx, "1")
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "1.name", entries[0].ID)

			entries, err = s.List(ctx, "1.name")
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "1.name", entries[0].ID)

			entries, err = s.List(ctx, "0.periods")
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "0.periods", entries[0].ID)
		})
	}
}

func TestStoreRejectsEmptyID(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, s.SetState(ctx, " ", 1, true))
			assert.Error(t, s.EnsureObject(ctx, "", Channel("x")))
			_, err := s.GetState(ctx, "")
			assert.Error(t, err)
		})
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "states.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SetState(ctx, "0.place_id", "ChIJabc", true))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	st, err := s.GetState(ctx, "0.place_id")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, "ChIJabc", st.Val)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
