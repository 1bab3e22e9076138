package source

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NoodleMagazine reads the daily popular list, over-collects, and samples a
// random subset so consecutive reports rotate through the chart.
type NoodleMagazine struct {
	client *Client
	rng    randSource
}

func NewNoodleMagazine(client *Client, rng randSource) *NoodleMagazine {
	return &NoodleMagazine{client: client, rng: rng}
}

const noodleBase = "https://noodlemagazine.com"

var (
	noodleDurationRe = regexp.MustCompile(`(\d{1,2}:\d{2}(?::\d{2})?)`)
	noodleViewsRe    = regexp.MustCompile(`(?i)\b(\d[\d,.]*[KMB]?)\s*views?\b`)
	noodleLikeRe     = regexp.MustCompile(`(?is)\b(\d[\d,.]*[KMB]?)\b\s*likes?\b`)
	noodleDislikeRe  = regexp.MustCompile(`(?is)\b(\d[\d,.]*[KMB]?)\b\s*dislikes?\b`)
)

func (n *NoodleMagazine) ID() string          { return "noodlemagazine" }
func (n *NoodleMagazine) DisplayName() string { return "NoodleMagazine" }
func (n *NoodleMagazine) Sections() []string  { return []string{SectionReal} }

func (n *NoodleMagazine) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(n, section) {
		return nil, nil
	}

	hotURL := noodleBase + "/popular/day?sort_by=views&sort_order=desc&p=0"
	html, err := n.client.GetText(ctx, hotURL, nil)
	if err != nil {
		return nil, err
	}
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	over := limit * 6
	if over < limit {
		over = limit
	}

	var items []HotItem
	seen := map[string]bool{}

	doc.Find(`a.item_link[href^="/watch/"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if !strings.HasPrefix(href, "/watch/") {
			return true
		}
		fullURL := ResolveURL(noodleBase, href)
		if seen[fullURL] {
			return true
		}
		seen[fullURL] = true

		img := a.Find("img").First()
		cover := ExtractImgURL(img)
		if strings.HasPrefix(cover, "//") {
			cover = "https:" + cover
		} else if strings.HasPrefix(cover, "/") {
			cover = ResolveURL(noodleBase, cover)
		}

		title := ExtractTitle(a, img)
		if title == "" {
			title = strings.TrimPrefix(href, "/watch/")
		}

		card := a.Closest("div.item")
		if card.Length() == 0 {
			card = a.Parent()
		}

		var views *int
		var duration string
		if el := card.Find(".m_views").First(); el.Length() > 0 {
			views = ParseCompactInt(collapseSpace(el.Text()))
		}
		if el := card.Find(".m_time").First(); el.Length() > 0 {
			duration = noodleDurationRe.FindString(collapseSpace(el.Text()))
		}

		var likes, dislikes *int
		if detail, err := n.client.GetText(ctx, fullURL, nil); err == nil {
			ddoc, derr := parseDoc(detail)
			if derr == nil {
				if el := ddoc.Find(".h_info .meta span").First(); el.Length() > 0 {
					views = ParseCompactInt(collapseSpace(el.Text()))
				}
				if el := ddoc.Find(".h_info .actions a.like span").First(); el.Length() > 0 {
					likes = ParseCompactInt(collapseSpace(el.Text()))
				}
				if el := ddoc.Find(".h_info .actions a.dislike span").First(); el.Length() > 0 {
					dislikes = ParseCompactInt(collapseSpace(el.Text()))
				}
				text := collapseSpace(ddoc.Text())
				if likes == nil {
					likes = ParseCompactInt(extractFirst(text, noodleLikeRe))
				}
				if dislikes == nil {
					dislikes = ParseCompactInt(extractFirst(text, noodleDislikeRe))
				}
				if views == nil {
					views = ParseCompactInt(extractFirst(text, noodleViewsRe))
				}
			}
		}

		meta := map[string]MetaValue{}
		if duration != "" {
			meta["duration"] = MetaStr(duration)
		}
		if dislikes != nil {
			meta["dislikes"] = MetaIntVal(*dislikes)
		}
		if len(meta) == 0 {
			meta = nil
		}

		items = append(items, HotItem{
			Source:   n.ID(),
			Section:  section,
			Title:    title,
			URL:      fullURL,
			CoverURL: cover,
			Stars:    likes,
			Views:    views,
			Meta:     meta,
		})
		return len(items) < over
	})

	return sampleItems(n.rng, items, limit), nil
}
