package source

import (
	"context"
	"errors"
	"regexp"
)

// Helpers shared by adapters that enrich list items with detail-page stats.

// extractFirst returns the first capture group of the first pattern that
// matches content.
func extractFirst(content string, patterns ...*regexp.Regexp) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(content); m != nil {
			return m[1]
		}
	}
	return ""
}

// fetchFirst tries each URL in order and returns the first page that loads.
func fetchFirst(ctx context.Context, c *Client, urls []string, headers map[string]string) (string, error) {
	var lastErr error
	for _, u := range urls {
		html, err := c.GetText(ctx, u, headers)
		if err == nil {
			return html, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no candidate url")
	}
	return "", lastErr
}

// detailStats is what a detail-page parser yields.
type detailStats struct {
	Stars *int
	Views *int
	Meta  map[string]MetaValue
}

// enrichDetails re-fetches each item's page and overlays parsed stats. The
// listing pages often omit vote counts or render them via JS; a failed detail
// fetch keeps the listing values.
func enrichDetails(ctx context.Context, c *Client, headers map[string]string, items []HotItem, parse func(html string) detailStats) []HotItem {
	enriched := make([]HotItem, 0, len(items))
	for _, it := range items {
		html, err := c.GetText(ctx, it.URL, headers)
		if err != nil {
			enriched = append(enriched, it)
			continue
		}
		st := parse(html)
		if st.Stars != nil {
			it.Stars = st.Stars
		}
		if st.Views != nil {
			it.Views = st.Views
		}
		if len(st.Meta) > 0 {
			if it.Meta == nil {
				it.Meta = map[string]MetaValue{}
			}
			for k, v := range st.Meta {
				it.Meta[k] = v
			}
		}
		enriched = append(enriched, it)
	}
	return enriched
}

// sampleItems returns k random items (order randomized) when candidates
// exceed k, otherwise the full slice. The injected rng keeps picks testable.
func sampleItems(rng randSource, candidates []HotItem, k int) []HotItem {
	if len(candidates) <= k {
		return candidates
	}
	idx := rng.Perm(len(candidates))
	out := make([]HotItem, 0, k)
	for _, i := range idx[:k] {
		out = append(out, candidates[i])
	}
	return out
}

// randSource is the part of math/rand the sampling adapters need.
type randSource interface {
	Perm(n int) []int
}
