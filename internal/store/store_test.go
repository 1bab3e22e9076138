package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidmaw/hotdaily/pkg/source"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndListPicks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := source.HotItem{
		Source: "pornhub",
		Title:  "Clip A",
		URL:    "https://example.com/a",
		Views:  source.IntPtr(5000),
		Stars:  source.IntPtr(100),
	}
	picks := []Pick{
		PickFromItem(source.Section3D, "schedule", item),
		{Section: source.SectionReal, Source: "eporner", Title: "Clip B", URL: "https://example.com/b", Score: 7},
	}
	require.NoError(t, s.RecordPicks(ctx, "schedule", picks))

	got, err := s.ListPicks(ctx, ListOpts{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	bySection, err := s.ListPicks(ctx, ListOpts{Section: source.Section3D})
	require.NoError(t, err)
	require.Len(t, bySection, 1)
	p := bySection[0]
	assert.Equal(t, "pornhub", p.Source)
	assert.Equal(t, "Clip A", p.Title)
	assert.Equal(t, item.Score(), p.Score)
	assert.Equal(t, "schedule", p.Reason)
	require.NotNil(t, p.Views)
	assert.Equal(t, 5000, *p.Views)

	// Rows recorded without a reason inherit the cycle's reason.
	byOther, err := s.ListPicks(ctx, ListOpts{Source: "eporner"})
	require.NoError(t, err)
	require.Len(t, byOther, 1)
	assert.Equal(t, "schedule", byOther[0].Reason)
	assert.Nil(t, byOther[0].Views)
}

func TestListPicksSince(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := Pick{Section: source.Section3D, Source: "a", Title: "old", PickedAt: time.Now().UTC().Add(-48 * time.Hour)}
	fresh := Pick{Section: source.Section3D, Source: "b", Title: "fresh", PickedAt: time.Now().UTC()}
	require.NoError(t, s.RecordPicks(ctx, "manual", []Pick{old, fresh}))

	got, err := s.ListPicks(ctx, ListOpts{Since: time.Now().UTC().Add(-time.Hour)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].Title)
}

func TestCountBySource(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordPicks(ctx, "manual", []Pick{
		{Section: source.Section3D, Source: "a", Title: "1"},
		{Section: source.Section3D, Source: "a", Title: "2"},
		{Section: source.SectionReal, Source: "b", Title: "3"},
	}))

	counts, err := s.CountBySource(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, counts)
}
