package subs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.json")
	s := NewStore(path)

	assert.Empty(t, s.ListEnabled())
	assert.False(t, s.IsEnabled("room-1"))

	require.NoError(t, s.SetEnabled("room-1", true))
	require.NoError(t, s.SetEnabled("room-2", true))
	assert.True(t, s.IsEnabled("room-1"))
	assert.Equal(t, []string{"room-1", "room-2"}, s.ListEnabled())

	require.NoError(t, s.SetEnabled("room-1", false))
	assert.False(t, s.IsEnabled("room-1"))
	assert.Equal(t, []string{"room-2"}, s.ListEnabled())

	// A fresh store over the same file sees the persisted state.
	again := NewStore(path)
	assert.Equal(t, []string{"room-2"}, again.ListEnabled())
}

func TestStoreEmptySession(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "subs.json"))
	assert.Error(t, s.SetEnabled("", true))
}

func TestStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewStore(path)
	assert.Empty(t, s.ListEnabled(), "unreadable file reads as no subscriptions")

	require.NoError(t, s.SetEnabled("room-9", true))
	assert.Equal(t, []string{"room-9"}, s.ListEnabled())
}
