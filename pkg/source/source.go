package source

import (
	"context"
	"errors"
	"fmt"
)

// ErrBlocked signals the site answered with an anti-bot page (Cloudflare,
// HTTP 403) rather than content. Callers can distinguish it from ordinary
// fetch failures with errors.Is.
var ErrBlocked = errors.New("source blocked by anti-bot protection")

// MetaKind discriminates the value held by a MetaValue.
type MetaKind int

const (
	MetaInt MetaKind = iota
	MetaString
	MetaStrings
)

// MetaValue is a small tagged union for per-source extra fields. Adapters
// attach counters (downloads, voters), badges, or tag lists without widening
// the HotItem struct.
type MetaValue struct {
	Kind    MetaKind
	Int     int
	Str     string
	Strings []string
}

func MetaIntVal(v int) MetaValue        { return MetaValue{Kind: MetaInt, Int: v} }
func MetaStr(v string) MetaValue        { return MetaValue{Kind: MetaString, Str: v} }
func MetaList(v []string) MetaValue     { return MetaValue{Kind: MetaStrings, Strings: v} }

// HotItem is the standardized data model every adapter produces.
// URL doubles as the dedup key within a fetch.
type HotItem struct {
	Source   string               `json:"source"`
	Section  string               `json:"section"`
	Title    string               `json:"title"`
	URL      string               `json:"url"`
	CoverURL string               `json:"cover_url,omitempty"`
	Stars    *int                 `json:"stars,omitempty"`
	Views    *int                 `json:"views,omitempty"`
	Meta     map[string]MetaValue `json:"meta,omitempty"`
}

// Score is the ranking weight: views*7 + stars*3, missing counters count as 0.
func (h HotItem) Score() int {
	var v, s int
	if h.Views != nil {
		v = *h.Views
	}
	if h.Stars != nil {
		s = *h.Stars
	}
	return v*7 + s*3
}

// Less reports whether h ranks below other. Ties on score break toward the
// item with more raw views.
func (h HotItem) Less(other HotItem) bool {
	hs, os := h.Score(), other.Score()
	if hs != os {
		return hs < os
	}
	var hv, ov int
	if h.Views != nil {
		hv = *h.Views
	}
	if other.Views != nil {
		ov = *other.Views
	}
	return hv < ov
}

// Adapter is the interface every site scraper implements.
type Adapter interface {
	// ID is the stable machine name used in config keys and logs.
	ID() string
	// DisplayName is the human-facing site name for reports.
	DisplayName() string
	// Sections lists the section keys this adapter can serve.
	Sections() []string
	// FetchHot returns up to limit hot items for a section. A wrapped
	// ErrBlocked means the site refused automated access; any other error
	// means the fetch produced nothing usable.
	FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error)
}

// IntPtr is a convenience for populating optional counters.
func IntPtr(v int) *int { return &v }

// Supports reports whether the adapter serves the given section key.
func Supports(a Adapter, section string) bool {
	for _, s := range a.Sections() {
		if s == section {
			return true
		}
	}
	return false
}

func blockedErr(site string, status int) error {
	return fmt.Errorf("%s returned HTTP %d: %w", site, status, ErrBlocked)
}
