// Package rank fans fetches out across the enabled site adapters and picks
// the top-scoring item per section.
package rank

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/voidmaw/hotdaily/pkg/source"
)

// DefaultConcurrency bounds how many adapters fetch at once.
const DefaultConcurrency = 6

// Service aggregates hot items across sources.
type Service struct {
	registry    *source.Registry
	cache       *Cache
	concurrency int
}

// NewService creates a ranking service. cache may be nil to disable caching;
// concurrency <= 0 uses DefaultConcurrency.
func NewService(registry *source.Registry, cache *Cache, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Service{registry: registry, cache: cache, concurrency: concurrency}
}

// SectionItems fetches up to perSourceLimit items from every enabled adapter
// serving section, concurrently. One adapter failing, or answering with an
// anti-bot page, only costs that adapter's items. Results are cached per
// (section, perSourceLimit).
func (s *Service) SectionItems(ctx context.Context, section string, perSourceLimit int) ([]source.HotItem, error) {
	if s.cache != nil {
		if items, ok := s.cache.Get(section, perSourceLimit); ok {
			return items, nil
		}
	}

	adapters := s.registry.EnabledFor(section)
	results := make([][]source.HotItem, len(adapters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	var mu sync.Mutex

	for i, a := range adapters {
		g.Go(func() error {
			items, err := a.FetchHot(gctx, section, perSourceLimit)
			if err != nil {
				evt := log.Warn().Str("source", a.ID()).Str("section", section)
				if errors.Is(err, source.ErrBlocked) {
					evt.Msg("source blocked, skipping")
				} else {
					evt.Err(err).Msg("fetch failed, skipping")
				}
				return nil
			}
			mu.Lock()
			results[i] = items
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []source.HotItem
	for _, items := range results {
		all = append(all, items...)
	}

	if s.cache != nil {
		s.cache.Put(section, perSourceLimit, all)
	}
	return all, nil
}

// SectionPick returns the single top item for section, ranked by score with
// raw views as the tie break. The first item encountered wins an exact tie.
// nil means no source produced anything.
func (s *Service) SectionPick(ctx context.Context, section string) (*source.HotItem, error) {
	items, err := s.SectionItems(ctx, section, 1)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	best := items[0]
	for _, it := range items[1:] {
		if best.Less(it) {
			best = it
		}
	}
	return &best, nil
}

// Pick pairs a section with its winning item.
type Pick struct {
	Section string         `json:"section"`
	Item    source.HotItem `json:"item"`
}

// DailyPicks computes the top item for each section in order, omitting
// sections where every source came up empty.
func (s *Service) DailyPicks(ctx context.Context, sections []string) ([]Pick, error) {
	var picks []Pick
	for _, sec := range sections {
		item, err := s.SectionPick(ctx, sec)
		if err != nil {
			return nil, err
		}
		if item == nil {
			log.Info().Str("section", sec).Msg("no items for section, skipping")
			continue
		}
		picks = append(picks, Pick{Section: sec, Item: *item})
	}
	return picks, nil
}

// FlushCache drops any cached section results.
func (s *Service) FlushCache() {
	if s.cache != nil {
		s.cache.Flush()
	}
}
