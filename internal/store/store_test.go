package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTokens_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	assert.Empty(t, s.Access())
	assert.Empty(t, s.Refresh())

	require.NoError(t, s.Set("access-1", "refresh-1"))
	assert.Equal(t, "access-1", s.Access())
	assert.Equal(t, "refresh-1", s.Refresh())

	require.NoError(t, s.Set("access-2", "refresh-2"))
	assert.Equal(t, "access-2", s.Access(), "second Set overwrites")

	require.NoError(t, s.Clear())
	assert.Empty(t, s.Access())
	assert.Empty(t, s.Refresh())
}

func TestLastOptions_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	_, ok := s.LastOptions()
	assert.False(t, ok, "fresh store has no saved options")

	want := LastOptions{Company: "acme", JobTitle: "backend", Count: 5, Difficulty: "hard"}
	require.NoError(t, s.SaveLastOptions(want))

	got, ok := s.LastOptions()
	require.True(t, ok)
	assert.Equal(t, want, got)

	want.Count = 3
	require.NoError(t, s.SaveLastOptions(want))
	got, _ = s.LastOptions()
	assert.Equal(t, 3, got.Count, "save overwrites")
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("access", "refresh"))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	assert.Equal(t, "access", s2.Access())
}
