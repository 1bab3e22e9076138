package rank

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidmaw/hotdaily/pkg/source"
)

type stubAdapter struct {
	id       string
	sections []string
	items    []source.HotItem
	err      error
	calls    atomic.Int32
}

func (s *stubAdapter) ID() string          { return s.id }
func (s *stubAdapter) DisplayName() string { return s.id }
func (s *stubAdapter) Sections() []string  { return s.sections }
func (s *stubAdapter) FetchHot(_ context.Context, section string, limit int) ([]source.HotItem, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.items) > limit {
		return s.items[:limit], nil
	}
	return s.items, nil
}

func item(src string, views, stars int) source.HotItem {
	return source.HotItem{
		Source:  src,
		Section: source.Section3D,
		Title:   src + " item",
		URL:     "https://example.com/" + src,
		Views:   source.IntPtr(views),
		Stars:   source.IntPtr(stars),
	}
}

func allEnabled(string) bool { return true }

func TestSectionItemsSkipsFailedAdapters(t *testing.T) {
	good := &stubAdapter{id: "good", sections: []string{source.Section3D}, items: []source.HotItem{item("good", 100, 5)}}
	broken := &stubAdapter{id: "broken", sections: []string{source.Section3D}, err: errors.New("boom")}
	blocked := &stubAdapter{id: "blocked", sections: []string{source.Section3D}, err: source.ErrBlocked}

	reg := source.NewRegistry(allEnabled, good, broken, blocked)
	svc := NewService(reg, nil, 0)

	items, err := svc.SectionItems(context.Background(), source.Section3D, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "good", items[0].Source)
}

func TestSectionItemsCacheTTL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }

	a := &stubAdapter{id: "a", sections: []string{source.Section3D}, items: []source.HotItem{item("a", 10, 0)}}
	reg := source.NewRegistry(allEnabled, a)
	svc := NewService(reg, NewCache(600*time.Second, clock), 0)

	_, err := svc.SectionItems(context.Background(), source.Section3D, 1)
	require.NoError(t, err)
	_, err = svc.SectionItems(context.Background(), source.Section3D, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), a.calls.Load(), "second call inside TTL must hit the cache")

	// A different per-source limit is a different cache key.
	_, err = svc.SectionItems(context.Background(), source.Section3D, 3)
	require.NoError(t, err)
	assert.Equal(t, int32(2), a.calls.Load())

	now = now.Add(601 * time.Second)
	_, err = svc.SectionItems(context.Background(), source.Section3D, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(3), a.calls.Load(), "expired entry must refetch")
}

func TestSectionPick(t *testing.T) {
	low := &stubAdapter{id: "low", sections: []string{source.Section3D}, items: []source.HotItem{item("low", 10, 1)}}
	high := &stubAdapter{id: "high", sections: []string{source.Section3D}, items: []source.HotItem{item("high", 1000, 50)}}

	reg := source.NewRegistry(allEnabled, low, high)
	svc := NewService(reg, nil, 0)

	pick, err := svc.SectionPick(context.Background(), source.Section3D)
	require.NoError(t, err)
	require.NotNil(t, pick)
	assert.Equal(t, "high", pick.Source)
}

func TestSectionPickEmpty(t *testing.T) {
	reg := source.NewRegistry(allEnabled)
	svc := NewService(reg, nil, 0)

	pick, err := svc.SectionPick(context.Background(), source.Section3D)
	require.NoError(t, err)
	assert.Nil(t, pick)
}

func TestDailyPicksOmitsEmptySections(t *testing.T) {
	threeD := &stubAdapter{id: "t", sections: []string{source.Section3D}, items: []source.HotItem{item("t", 42, 0)}}
	reg := source.NewRegistry(allEnabled, threeD)
	svc := NewService(reg, nil, 0)

	picks, err := svc.DailyPicks(context.Background(), []string{source.Section3D, source.SectionReal})
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Equal(t, source.Section3D, picks[0].Section)
	assert.Equal(t, "t", picks[0].Item.Source)
}
