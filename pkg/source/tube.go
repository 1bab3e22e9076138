package source

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Shared scraping helpers for the many "tube" style video listing layouts:
// a grid of cards, each with a video link, a lazy-loaded thumbnail, and a
// handful of unlabeled counters.

var (
	ratingPercentRe = regexp.MustCompile(`(\d{1,3})(?:\.\d+)?%`)
	labeledViewsRe  = regexp.MustCompile(`(?i)(\d[\d,\.]*[KMB]?)\s*(?:views?|播放|观看|plays?|watches?|downloads?)`)
	labeledLikesRe  = regexp.MustCompile(`(?i)(\d[\d,\.]*[KMB]?)\s*(?:likes?|赞|upvotes?|votes?|ratings?|favorites?|favourites?)`)
	countTokenRe    = regexp.MustCompile(`(?i)\b(\d[\d,\.]*[KMB]?)\b`)
	srcsetSplitRe   = regexp.MustCompile(`,\s+`)
)

// parseDoc wraps the goquery constructor for the common parse-a-string case.
func parseDoc(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// FirstNonEmpty returns the first non-empty string.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func pickFromSrcset(srcset string) string {
	srcset = strings.TrimSpace(srcset)
	if srcset == "" {
		return ""
	}
	// "url1 320w, url2 640w" -> url1. Some sites embed commas in URLs, so
	// split only on comma followed by whitespace.
	first := srcsetSplitRe.Split(srcset, 2)[0]
	first, _, _ = strings.Cut(strings.TrimSpace(first), " ")
	return strings.TrimSpace(first)
}

// ExtractImgURL resolves a thumbnail URL from the usual lazy-load attribute
// soup, in decreasing order of trustworthiness.
func ExtractImgURL(img *goquery.Selection) string {
	if img == nil || img.Length() == 0 {
		return ""
	}
	return FirstNonEmpty(
		img.AttrOr("data-src", ""),
		img.AttrOr("data-original", ""),
		img.AttrOr("data-webp", ""),
		img.AttrOr("data-lazy-src", ""),
		pickFromSrcset(img.AttrOr("data-srcset", "")),
		pickFromSrcset(img.AttrOr("srcset", "")),
		img.AttrOr("src", ""),
	)
}

// ExtractTitle tries link title, then image alt/title, then link text.
func ExtractTitle(a, img *goquery.Selection) string {
	if a != nil && a.Length() > 0 {
		if t := strings.TrimSpace(a.AttrOr("title", "")); len(t) > 1 {
			return t
		}
	}
	if img != nil && img.Length() > 0 {
		t := strings.TrimSpace(FirstNonEmpty(img.AttrOr("alt", ""), img.AttrOr("title", "")))
		if len(t) > 1 {
			return t
		}
	}
	if a != nil && a.Length() > 0 {
		if t := collapseSpace(a.Text()); len(t) > 1 {
			return t
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ExtractCounts pulls best-effort (stars, views) out of card text. Many tube
// sites show metrics without labels, e.g. "5.6M 98% 11min": labeled counters
// win, then rating% stands in for likes, then the largest plausible unlabeled
// number stands in for views.
func ExtractCounts(text string) (stars, views *int) {
	t := collapseSpace(text)
	if t == "" {
		return nil, nil
	}

	if m := labeledViewsRe.FindStringSubmatch(t); m != nil {
		views = ParseCompactInt(m[1])
	}
	if m := labeledLikesRe.FindStringSubmatch(t); m != nil {
		stars = ParseCompactInt(m[1])
	}

	if stars == nil {
		if m := ratingPercentRe.FindStringSubmatch(t); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				stars = &v
			}
		}
	}

	if views == nil {
		var best *int
		for _, tok := range countTokenRe.FindAllString(t, -1) {
			c := ParseCompactInt(tok)
			if c == nil {
				continue
			}
			// Tiny bare numbers are usually durations or ratings, not a
			// popularity counter.
			upper := strings.ToUpper(tok)
			plausible := *c >= 1000 ||
				strings.ContainsAny(upper, "KMB") ||
				strings.Contains(tok, ",")
			if plausible && (best == nil || *c > *best) {
				best = c
			}
		}
		views = best
	}

	if stars == nil && views != nil {
		// Last resort: a secondary counter next to the views, often votes.
		// Without an identified views counter the remaining numbers are
		// usually durations, so this only runs once views is known.
		var best *int
		for _, tok := range countTokenRe.FindAllString(t, -1) {
			c := ParseCompactInt(tok)
			if c == nil || *c < 1 || *c == *views {
				continue
			}
			if best == nil || *c > *best {
				best = c
			}
		}
		stars = best
	}

	return stars, views
}

// ResolveURL joins a possibly relative href against the site base.
func ResolveURL(baseURL, href string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// ParseTubeList walks every anchor whose href matches one of linkPatterns,
// climbs to the surrounding card, and assembles HotItems with thumbnail,
// title, and whatever counters the card text yields. Duplicate video URLs
// are dropped; the result is truncated to limit.
func ParseTubeList(html, baseURL, sourceID, section string, linkPatterns []*regexp.Regexp, limit int) []HotItem {
	doc, err := parseDoc(html)
	if err != nil {
		return nil
	}

	var items []HotItem
	seen := map[string]bool{}

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := a.AttrOr("href", "")
		if href == "" || !matchAny(href, linkPatterns) {
			return true
		}

		fullURL := ResolveURL(baseURL, href)
		if seen[fullURL] {
			return true
		}
		seen[fullURL] = true

		container := bestContainer(a)

		img := a.Find("img").First()
		if img.Length() == 0 {
			img = a.Find("source").First()
		}
		if img.Length() == 0 && container != nil {
			img = container.Find("img").First()
			if img.Length() == 0 {
				img = container.Find("source").First()
			}
		}

		title := ExtractTitle(a, img)
		if title == "" {
			title = fullURL
		}
		cover := ExtractImgURL(img)
		if cover != "" && !strings.HasPrefix(cover, "http") {
			cover = ResolveURL(baseURL, cover)
		}

		var cardText string
		if container != nil {
			cardText = container.Text()
		}
		stars, views := ExtractCounts(cardText)

		items = append(items, HotItem{
			Source:   sourceID,
			Section:  section,
			Title:    title,
			URL:      fullURL,
			CoverURL: cover,
			Stars:    stars,
			Views:    views,
		})
		return len(items) < limit
	})

	return items
}

func matchAny(href string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(href) {
			return true
		}
	}
	return false
}

// bestContainer climbs up to 6 ancestors and picks the card-like element
// (article/div/li/section) with the most text, which in practice is the
// element holding both the thumbnail and the counters.
func bestContainer(a *goquery.Selection) *goquery.Selection {
	var best *goquery.Selection
	bestLen := -1

	cur := a
	for i := 0; i < 6; i++ {
		cur = cur.Parent()
		if cur.Length() == 0 {
			break
		}
		name := goquery.NodeName(cur)
		if name == "html" || name == "body" {
			break
		}
		if name != "article" && name != "div" && name != "li" && name != "section" {
			continue
		}
		if l := len(collapseSpace(cur.Text())); l > bestLen {
			best = cur
			bestLen = l
		}
	}
	if best == nil {
		if p := a.Parent(); p.Length() > 0 {
			return p
		}
		return nil
	}
	return best
}
