package source

import (
	"context"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Hanime serves the 2.5d section from the views-sorted search listing.
// View counts render in Chinese numerals on the watch pages.
type Hanime struct {
	client *Client
}

func NewHanime(client *Client) *Hanime { return &Hanime{client: client} }

const hanimeBase = "https://hanime1.me"

var hanimeHeaders = map[string]string{
	"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8,ja;q=0.7",
	"Referer":         hanimeBase,
}

var (
	hanimeViewsLabeledRe = regexp.MustCompile(`(?i)觀看次數[：:]\s*([\d,.]+(?:万|萬)?)\s*次`)
	hanimeViewsLooseRe   = regexp.MustCompile(`(?i)([\d,.]+(?:万|萬)?)\s*次(?:觀看|观看)?`)
	hanimeLikeBtnRe      = regexp.MustCompile(`(?i)video-like-btn[\s\S]{0,400}?\((\d[\d,]*)\)`)
	hanimeThumbUpRe      = regexp.MustCompile(`(?i)thumb_up</i>[\s\S]{0,160}?\((\d[\d,]*)\)`)
	hanimeThumbPctRe     = regexp.MustCompile(`(?i)thumb_up</i>\s*(\d{1,3})%`)
	hanimeDetailTitleRe  = regexp.MustCompile(`(?i)<h3[^>]*class="[^"]*video-details-title[^"]*"[^>]*>([^<]+)</h3>`)
	hanimeTitleTagRe     = regexp.MustCompile(`(?i)<title>([^<]+)</title>`)
	hanimePosterRe       = regexp.MustCompile(`(?i)poster["']?\s*[=:]\s*["']([^"']+)["']`)
	hanimeOGImageRe      = regexp.MustCompile(`(?i)<meta\s+property="og:image"\s+content="([^"]+)"`)
)

func (h *Hanime) ID() string          { return "hanime" }
func (h *Hanime) DisplayName() string { return "Hanime" }
func (h *Hanime) Sections() []string  { return []string{Section25D} }

func (h *Hanime) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(h, section) {
		return nil, nil
	}

	listHTML, err := h.client.GetText(ctx, hanimeBase+"/search?sort=views", hanimeHeaders)
	if err != nil {
		return nil, err
	}
	doc, err := parseDoc(listHTML)
	if err != nil {
		return nil, err
	}

	var items []HotItem
	seen := map[string]bool{}

	doc.Find(`a.video-link[href*="watch?v="]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return true
		}
		fullURL := href
		if !strings.HasPrefix(fullURL, "http") {
			fullURL = ResolveURL(hanimeBase, href)
		}
		vid := watchVideoID(fullURL)
		if vid == "" || seen[vid] {
			return true
		}
		seen[vid] = true

		container := a.Closest(".video-item-container")
		title := ""
		if container.Length() > 0 {
			title = strings.TrimSpace(container.AttrOr("title", ""))
		}
		img := a.Find("img").First()
		if title == "" && img.Length() > 0 {
			title = strings.TrimSpace(FirstNonEmpty(img.AttrOr("alt", ""), img.AttrOr("title", "")))
		}
		if title == "" {
			title = "Video " + vid
		}

		thumb := strings.TrimSpace(FirstNonEmpty(img.AttrOr("data-src", ""), img.AttrOr("src", "")))
		if thumb != "" && !strings.HasPrefix(thumb, "http") {
			thumb = ResolveURL(hanimeBase, thumb)
		}

		var views, stars *int
		if detail, err := h.client.GetText(ctx, fullURL, hanimeHeaders); err == nil {
			views = hanimeViews(detail)
			stars = hanimeStars(detail)
			if strings.HasPrefix(title, "Video ") {
				if t := hanimeDetailTitle(detail); t != "" {
					title = t
				}
			}
			if thumb == "" {
				thumb = extractFirst(detail, hanimePosterRe, hanimeOGImageRe)
			}
		}

		items = append(items, HotItem{
			Source:   h.ID(),
			Section:  section,
			Title:    title,
			URL:      fullURL,
			CoverURL: thumb,
			Stars:    stars,
			Views:    views,
		})
		return len(items) < limit
	})

	return items, nil
}

func watchVideoID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(u.Query().Get("v"))
}

func hanimeViews(detail string) *int {
	m := hanimeViewsLabeledRe.FindStringSubmatch(detail)
	if m == nil {
		m = hanimeViewsLooseRe.FindStringSubmatch(detail)
	}
	if m == nil {
		return nil
	}
	return ParseCompactInt(strings.ReplaceAll(m[1], "萬", "万"))
}

// hanimeStars reads the like widget, which renders like "thumb_up</i>100% (4)".
func hanimeStars(detail string) *int {
	if s := extractFirst(detail, hanimeLikeBtnRe, hanimeThumbUpRe); s != "" {
		return ParseCompactInt(s)
	}
	if m := hanimeThumbPctRe.FindStringSubmatch(detail); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return &v
		}
	}
	return nil
}

func hanimeDetailTitle(detail string) string {
	if t := extractFirst(detail, hanimeDetailTitleRe, hanimeTitleTagRe); t != "" {
		return strings.TrimSpace(html.UnescapeString(t))
	}
	return ""
}
