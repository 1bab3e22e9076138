package source

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ThreeDPorn parses the WordPress theme's thumb cards, then tops up missing
// counters through the theme's admin-ajax endpoint. Post ids come from the
// page markup or, failing that, a wp-json slug lookup.
type ThreeDPorn struct {
	client *Client
}

func NewThreeDPorn(client *Client) *ThreeDPorn { return &ThreeDPorn{client: client} }

const threedpornBase = "https://3d-porn.co"

var threedpornHeaders = map[string]string{
	"Referer": threedpornBase,
}

var (
	tdpFTTAjaxRe     = regexp.MustCompile(`(?is)(?:var\s+)?ftt_ajax_var\s*=\s*(\{.*?\});`)
	tdpPostIDRe      = regexp.MustCompile(`(?i)id=["']post-(\d+)["']`)
	tdpPostIDClassRe = regexp.MustCompile(`(?i)postid-(\d+)`)
)

func (t *ThreeDPorn) ID() string          { return "3dporn" }
func (t *ThreeDPorn) DisplayName() string { return "3D-Porn" }
func (t *ThreeDPorn) Sections() []string  { return []string{Section3D} }

func (t *ThreeDPorn) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(t, section) {
		return nil, nil
	}

	urls := []string{
		threedpornBase + "/?filter=most-viewed",
		threedpornBase + "/?filter=most-liked",
		threedpornBase + "/?filter=latest",
		threedpornBase + "/",
	}
	html, err := fetchFirst(ctx, t.client, urls, threedpornHeaders)
	if err != nil {
		return nil, err
	}
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	var items []HotItem
	seen := map[string]bool{}

	doc.Find("a.thumb[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return true
		}
		fullURL := ResolveURL(threedpornBase, href)
		if seen[fullURL] {
			return true
		}
		seen[fullURL] = true

		img := a.Find("img").First()
		cover := ExtractImgURL(img)
		if cover != "" && !strings.HasPrefix(cover, "http") {
			cover = ResolveURL(threedpornBase, cover)
		}

		infos := a.NextFiltered("a.infos")
		var title string
		if infos.Length() > 0 {
			title = ExtractTitle(infos, img)
		} else {
			title = ExtractTitle(nil, img)
		}
		if title == "" {
			title = fullURL
		}

		var cardText string
		if infos.Length() > 0 {
			cardText = infos.Text()
		}
		stars, views := ExtractCounts(cardText)

		var meta map[string]MetaValue
		if d := collapseSpace(a.Find("span.duration").First().Text()); d != "" {
			meta = map[string]MetaValue{"duration": MetaStr(d)}
		}

		items = append(items, HotItem{
			Source:   t.ID(),
			Section:  section,
			Title:    title,
			URL:      fullURL,
			CoverURL: cover,
			Stars:    stars,
			Views:    views,
			Meta:     meta,
		})
		return len(items) < limit
	})

	enriched := make([]HotItem, 0, len(items))
	for _, it := range items {
		if it.Stars != nil && it.Views != nil {
			enriched = append(enriched, it)
			continue
		}
		enriched = append(enriched, t.enrichPostStats(ctx, it))
	}
	return enriched, nil
}

type fttPostData struct {
	Likes    json.Number `json:"likes"`
	Dislikes json.Number `json:"dislikes"`
	Views    json.Number `json:"views"`
	Rating   string      `json:"rating"`
}

func (t *ThreeDPorn) enrichPostStats(ctx context.Context, item HotItem) HotItem {
	html, err := t.client.GetText(ctx, item.URL, threedpornHeaders)
	if err != nil {
		return item
	}

	m := tdpFTTAjaxRe.FindStringSubmatch(html)
	if m == nil {
		return item
	}
	var cfg struct {
		URL   string `json:"url"`
		Nonce string `json:"nonce"`
	}
	if json.Unmarshal([]byte(m[1]), &cfg) != nil {
		return item
	}
	ajaxURL := strings.TrimSpace(cfg.URL)
	nonce := strings.TrimSpace(cfg.Nonce)
	if strings.HasPrefix(ajaxURL, "//") {
		ajaxURL = "https:" + ajaxURL
	} else if !strings.HasPrefix(ajaxURL, "http") {
		ajaxURL = ResolveURL(threedpornBase, ajaxURL)
	}
	if ajaxURL == "" || nonce == "" {
		return item
	}

	postID := extractFirst(html, tdpPostIDRe, tdpPostIDClassRe)
	if postID == "" {
		postID = t.lookupPostID(ctx, item.URL)
	}
	if postID == "" {
		return item
	}

	form := url.Values{}
	form.Set("action", "get-post-data")
	form.Set("nonce", nonce)
	form.Set("post_id", postID)
	headers := map[string]string{
		"Referer":          item.URL,
		"X-Requested-With": "XMLHttpRequest",
		"Accept":           "application/json,*/*;q=0.8",
	}
	var data fttPostData
	if err := t.client.PostForm(ctx, ajaxURL, form, headers, &data); err != nil {
		return item
	}

	if item.Stars == nil {
		for _, cand := range []string{data.Likes.String(), data.Dislikes.String(), data.Rating} {
			if c := ParseCompactInt(cand); c != nil {
				item.Stars = c
				break
			}
		}
	}
	if item.Views == nil {
		item.Views = ParseCompactInt(data.Views.String())
	}

	if dd := ParseCompactInt(data.Dislikes.String()); dd != nil {
		if item.Meta == nil {
			item.Meta = map[string]MetaValue{}
		}
		if _, ok := item.Meta["dislikes"]; !ok {
			item.Meta["dislikes"] = MetaIntVal(*dd)
		}
	}
	if data.Rating != "" {
		if item.Meta == nil {
			item.Meta = map[string]MetaValue{}
		}
		if _, ok := item.Meta["rating"]; !ok {
			item.Meta["rating"] = MetaStr(data.Rating)
		}
	}
	return item
}

func (t *ThreeDPorn) lookupPostID(ctx context.Context, pageURL string) string {
	slug := pageURL
	slug = strings.TrimSuffix(slug, "/")
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		slug = slug[i+1:]
	}

	var posts []struct {
		ID int `json:"id"`
	}
	apiURL := threedpornBase + "/wp-json/wp/v2/posts?slug=" + url.QueryEscape(slug)
	if err := t.client.GetJSON(ctx, apiURL, map[string]string{"Accept": "application/json"}, &posts); err != nil {
		return ""
	}
	if len(posts) == 0 || posts[0].ID == 0 {
		return ""
	}
	return strconv.Itoa(posts[0].ID)
}
