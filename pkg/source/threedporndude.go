package source

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ThreeDPornDude lists the front-page thumb grid. Cards carry eye/like badges;
// detail pages add vote buttons, an exact view counter and tags.
type ThreeDPornDude struct {
	client *Client
	rng    randSource
}

func NewThreeDPornDude(client *Client, rng randSource) *ThreeDPornDude {
	return &ThreeDPornDude{client: client, rng: rng}
}

const threedporndudeBase = "https://3dporndude.com"

var threedporndudeHeaders = map[string]string{
	"Referer": threedporndudeBase,
}

var (
	tpdRatePctRe = regexp.MustCompile(`(\d{1,3})\s*%`)
)

func (t *ThreeDPornDude) ID() string          { return "3dporndude" }
func (t *ThreeDPornDude) DisplayName() string { return "3DPornDude" }
func (t *ThreeDPornDude) Sections() []string  { return []string{Section3D} }

func (t *ThreeDPornDude) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(t, section) {
		return nil, nil
	}

	urls := []string{
		threedporndudeBase + "/most-viewed/",
		threedporndudeBase + "/top-rated/",
		threedporndudeBase + "/",
	}
	html, err := fetchFirst(ctx, t.client, urls, threedporndudeHeaders)
	if err != nil {
		return nil, err
	}
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	var items []HotItem
	seen := map[string]bool{}

	doc.Find("div.thumb-itm").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		a := card.Find("a[href]").First()
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return true
		}
		fullURL := ResolveURL(threedporndudeBase, href)
		if seen[fullURL] {
			return true
		}
		seen[fullURL] = true

		img := card.Find("img").First()
		cover := ExtractImgURL(img)
		if cover != "" && !strings.HasPrefix(cover, "http") {
			cover = ResolveURL(threedporndudeBase, cover)
		}

		title := ExtractTitle(a, img)
		if title == "" {
			title = collapseSpace(card.Find(".thumb-title, .title").First().Text())
		}
		if title == "" {
			title = fullURL
		}

		var stars, views *int
		card.Find(".thumb-item").Each(func(_ int, badge *goquery.Selection) {
			text := collapseSpace(badge.Text())
			switch {
			case badge.Find(".icon-eye, [class*='eye']").Length() > 0:
				if views == nil {
					views = ParseCompactInt(text)
				}
			case badge.Find(".icon-like, [class*='like']").Length() > 0:
				if stars == nil {
					if m := tpdRatePctRe.FindStringSubmatch(text); m != nil {
						stars = ParsePercentInt(m[1] + "%")
					} else {
						stars = ParseCompactInt(text)
					}
				}
			}
		})
		if stars == nil && views == nil {
			stars, views = ExtractCounts(card.Text())
		}

		items = append(items, HotItem{
			Source:   t.ID(),
			Section:  section,
			Title:    title,
			URL:      fullURL,
			CoverURL: cover,
			Stars:    stars,
			Views:    views,
		})
		return len(items) < limit*3
	})

	items = sampleItems(t.rng, items, limit)
	return enrichDetails(ctx, t.client, threedporndudeHeaders, items, parseThreeDPornDudeDetail), nil
}

func parseThreeDPornDudeDetail(html string) detailStats {
	var stats detailStats
	doc, err := parseDoc(html)
	if err != nil {
		return stats
	}

	likes := ParseCompactInt(collapseSpace(doc.Find(".rate-like").First().Text()))
	dislikes := ParseCompactInt(collapseSpace(doc.Find(".rate-dislike").First().Text()))
	if likes != nil {
		stats.Stars = likes
	}

	doc.Find(".count-item").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if item.Find("[class*='eye']").Length() == 0 {
			return true
		}
		if v := ParseCompactInt(collapseSpace(item.Text())); v != nil {
			stats.Views = v
			return false
		}
		return true
	})

	var tags []string
	doc.Find(".tags a, .video-tags a").Each(func(_ int, a *goquery.Selection) {
		if tag := collapseSpace(a.Text()); tag != "" && len(tags) < 12 {
			tags = append(tags, tag)
		}
	})

	if dislikes != nil || len(tags) > 0 {
		stats.Meta = map[string]MetaValue{}
		if dislikes != nil {
			stats.Meta["dislikes"] = MetaIntVal(*dislikes)
		}
		if len(tags) > 0 {
			stats.Meta["tags"] = MetaList(tags)
		}
	}
	return stats
}
