package source

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Vip91 parses the recent-favorites chart. The site serves Chinese-market
// card markup rather than the usual tube grid, so it gets its own selectors.
type Vip91 struct {
	client *Client
}

func NewVip91(client *Client) *Vip91 { return &Vip91{client: client} }

const vip91Base = "https://91porn.com"

var vip91Headers = map[string]string{
	"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
	"Referer":         vip91Base,
	"DNT":             "1",
}

func (v *Vip91) ID() string          { return "91vip" }
func (v *Vip91) DisplayName() string { return "91Porn" }
func (v *Vip91) Sections() []string  { return []string{SectionReal} }

func (v *Vip91) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(v, section) {
		return nil, nil
	}

	hotURL := vip91Base + "/v.php?category=rf&viewtype=basic&page=1"
	html, err := v.client.GetText(ctx, hotURL, vip91Headers)
	if err != nil {
		if !IsStatus(err, http.StatusForbidden) {
			return nil, err
		}
		html, err = v.client.GetTextViaJina(ctx, hotURL)
		if err != nil {
			if IsStatus(err, http.StatusForbidden) {
				return nil, blockedErr(v.DisplayName(), http.StatusForbidden)
			}
			return nil, err
		}
	}

	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	var items []HotItem
	doc.Find(".well-sm.videos-text-align").EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= limit*3 {
			return false
		}
		title := collapseSpace(card.Find(".video-title").First().Text())
		if title == "" {
			title = "无标题"
		}

		a := card.Find("a").First()
		href := a.AttrOr("href", "")
		if href == "" {
			return true
		}
		itemURL := ResolveURL(vip91Base, href)

		cover := card.Find("img").First().AttrOr("src", "")
		if strings.HasPrefix(cover, "//") {
			cover = "https:" + cover
		} else if strings.HasPrefix(cover, "/") {
			cover = ResolveURL(vip91Base, cover)
		}

		items = append(items, HotItem{
			Source:   v.ID(),
			Section:  section,
			Title:    title,
			URL:      itemURL,
			CoverURL: cover,
		})
		return len(items) < limit
	})

	return items, nil
}
