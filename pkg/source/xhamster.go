package source

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// XHamster works off the daily best chart. Listing cards mix video links
// with creator links, so candidates are over-fetched and filtered.
type XHamster struct {
	client *Client
}

func NewXHamster(client *Client) *XHamster { return &XHamster{client: client} }

const xhamsterBase = "https://xhamster.com"

var xhamsterLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/videos/`),
}

var (
	xhJSONViewsRe   = regexp.MustCompile(`(?i)"(?:views|viewCount|view_count|viewsCount)"\s*:\s*"?(\d[\d,]*)"?`)
	xhTextViewsRe   = regexp.MustCompile(`(?i)\b(\d[\d,]{3,})\s*views?\b`)
	xhLikePairRe    = regexp.MustCompile(`(?i)\b(\d[\d,\.]*[KMB]?)\s*/\s*(\d[\d,\.]*[KMB]?)\b`)
	xhLabelPairRe   = regexp.MustCompile(`(?i)(\d[\d,\.]*[KMB]?)\s*likes?.*?(\d[\d,\.]*[KMB]?)\s*dislikes?`)
	xhVideoSlugRe   = regexp.MustCompile(`/videos/[^/]*\d`)
	xhRatingRe      = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)%`)
)

func (x *XHamster) ID() string          { return "xhamster" }
func (x *XHamster) DisplayName() string { return "xHamster" }
func (x *XHamster) Sections() []string  { return []string{SectionReal} }

func (x *XHamster) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(x, section) {
		return nil, nil
	}

	html, err := x.client.GetText(ctx, xhamsterBase+"/best/daily", nil)
	if err != nil {
		return nil, err
	}

	over := limit * 8
	if over < limit {
		over = limit
	}
	candidates := ParseTubeList(html, xhamsterBase, x.ID(), section, xhamsterLinkPatterns, over)

	// Prefer real video URLs with covers, then covered cards, then anything.
	out := pickXHamster(candidates, limit, func(it HotItem) bool {
		return xhVideoSlugRe.MatchString(it.URL) && it.CoverURL != ""
	})
	if len(out) < limit {
		out = appendXHamster(out, candidates, limit, func(it HotItem) bool { return it.CoverURL != "" })
	}
	if len(out) < limit {
		out = appendXHamster(out, candidates, limit, func(HotItem) bool { return true })
	}

	return enrichDetails(ctx, x.client, nil, out, parseXHamsterDetail), nil
}

func pickXHamster(candidates []HotItem, limit int, keep func(HotItem) bool) []HotItem {
	var out []HotItem
	return appendXHamster(out, candidates, limit, keep)
}

func appendXHamster(out, candidates []HotItem, limit int, keep func(HotItem) bool) []HotItem {
	have := map[string]bool{}
	for _, it := range out {
		have[it.URL] = true
	}
	for _, it := range candidates {
		if len(out) >= limit {
			break
		}
		if have[it.URL] || strings.Contains(it.URL, "/creators/videos/") || !keep(it) {
			continue
		}
		have[it.URL] = true
		out = append(out, it)
	}
	return out
}

func parseXHamsterDetail(html string) detailStats {
	var st detailStats
	doc, err := parseDoc(html)
	if err != nil {
		return st
	}
	text := collapseSpace(doc.Text())

	doc.Find("[aria-label*='views']").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if v := ParseCompactInt(el.AttrOr("aria-label", "")); v != nil {
			st.Views = v
			return false
		}
		return true
	})
	if st.Views == nil {
		if icon := doc.Find("i.xh-icon.eye").First(); icon.Length() > 0 {
			if span := icon.NextFiltered("span"); span.Length() > 0 {
				st.Views = ParseCompactInt(collapseSpace(span.Text()))
			}
		}
	}
	for _, sel := range []string{"[itemprop='interactionCount']", "[itemprop='userInteractionCount']"} {
		if el := doc.Find(sel).First(); el.Length() > 0 {
			if v := ParseCompactInt(FirstNonEmpty(el.AttrOr("content", ""), collapseSpace(el.Text()))); v != nil {
				st.Views = v
				break
			}
		}
	}
	if st.Views == nil {
		st.Views = ParseCompactInt(extractFirst(html, xhJSONViewsRe))
	}
	if st.Views == nil {
		st.Views = ParseCompactInt(extractFirst(text, xhTextViewsRe))
	}

	var likes, dislikes, rating *int

	if info := doc.Find(".rb-new__info").First(); info.Length() > 0 {
		pairText := collapseSpace(info.Text())
		if m := xhLikePairRe.FindStringSubmatch(pairText); m != nil {
			likes = ParseCompactInt(m[1])
			dislikes = ParseCompactInt(m[2])
		}
		label := info.AttrOr("aria-label", "")
		if likes == nil || dislikes == nil {
			if m := xhLabelPairRe.FindStringSubmatch(label); m != nil {
				likes = ParseCompactInt(m[1])
				dislikes = ParseCompactInt(m[2])
			}
		}
		rating = ParsePercentInt(label)
	}

	// Many pages show a pair like "766,027 / 3,312" near the like controls.
	if likes == nil || dislikes == nil {
		for _, m := range xhLikePairRe.FindAllStringSubmatch(text, -1) {
			a, b := ParseCompactInt(m[1]), ParseCompactInt(m[2])
			if a == nil || b == nil || *a <= 0 || *b < 0 || *b > *a {
				continue
			}
			if st.Views != nil && *a > *st.Views {
				continue
			}
			likes, dislikes = a, b
			break
		}
	}

	if rating == nil {
		if el := doc.Find("[aria-label*='%'][aria-label*='like']").First(); el.Length() > 0 {
			rating = ParsePercentInt(el.AttrOr("aria-label", ""))
		}
	}
	if rating == nil {
		if pct := extractFirst(text, xhRatingRe); pct != "" {
			rating = ParsePercentInt(pct + "%")
		}
	}

	st.Stars = likes
	meta := map[string]MetaValue{}
	if dislikes != nil {
		meta["dislikes"] = MetaIntVal(*dislikes)
	}
	if rating != nil {
		meta["rating_percent"] = MetaIntVal(*rating)
	}
	if len(meta) > 0 {
		st.Meta = meta
	}
	return st
}
