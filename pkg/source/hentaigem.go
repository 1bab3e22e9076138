package source

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"html"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HentaiGem pulls the top-rated grid, switches it to the "today" ajax block
// when available, and samples a subset. An unreachable site degrades to a
// single drawn placeholder item so the section still renders.
type HentaiGem struct {
	client *Client
	rng    randSource
}

func NewHentaiGem(client *Client, rng randSource) *HentaiGem {
	return &HentaiGem{client: client, rng: rng}
}

const hentaigemBase = "https://hentaigem.com"

var (
	hgVideoHrefRe = regexp.MustCompile(`/videos/(\d+)/`)
	hgVotesRe     = regexp.MustCompile(`(?i)\((\d[\d,\.]*[KMB]?)\s*votes?\)`)
)

func (h *HentaiGem) ID() string          { return "hentaigem" }
func (h *HentaiGem) DisplayName() string { return "HentaiGem" }
func (h *HentaiGem) Sections() []string  { return []string{Section25D} }

func (h *HentaiGem) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(h, section) {
		return nil, nil
	}

	topURL := hentaigemBase + "/top-rated/"
	listHTML, err := h.client.GetText(ctx, topURL, nil)
	if err != nil {
		if limit < 1 {
			return nil, nil
		}
		return []HotItem{{
			Source:   h.ID(),
			Section:  section,
			Title:    "HentaiGem (offline)",
			URL:      hentaigemBase,
			CoverURL: hentaigemPlaceholder(),
		}}, nil
	}

	listHTML = h.applyTodayFilter(ctx, listHTML, topURL)
	doc, err := parseDoc(listHTML)
	if err != nil {
		return nil, err
	}

	var items []HotItem
	seen := map[string]bool{}

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href := link.AttrOr("href", "")
		m := hgVideoHrefRe.FindStringSubmatch(href)
		if m == nil || seen[m[1]] {
			return
		}
		videoID := m[1]
		seen[videoID] = true

		img := link.Find("img").First()
		thumb := FirstNonEmpty(
			img.AttrOr("data-original", ""),
			img.AttrOr("data-webp", ""),
			img.AttrOr("data-src", ""),
			img.AttrOr("src", ""),
		)
		if strings.HasPrefix(thumb, "data:") {
			thumb = FirstNonEmpty(img.AttrOr("data-original", ""), img.AttrOr("data-webp", ""))
		}

		title := collapseSpace(link.Find("strong.title").First().Text())
		if title == "" && img.Length() > 0 {
			title = FirstNonEmpty(img.AttrOr("alt", ""), img.AttrOr("title", ""))
		}
		if title == "" {
			title = link.AttrOr("title", "")
		}
		if title == "" {
			title = "Video " + videoID
		} else {
			title = html.UnescapeString(title)
		}

		duration := collapseSpace(link.Find("span.duration").First().Text())
		viewsText := collapseSpace(link.Find("span.views").First().Text())
		ratingText := collapseSpace(link.Find("span.rating").First().Text())

		meta := map[string]MetaValue{}
		if duration != "" {
			meta["duration"] = MetaStr(duration)
		}
		if ratingText != "" {
			meta["rating"] = MetaStr(ratingText)
		}
		if pct := ParsePercentInt(ratingText); pct != nil {
			meta["rating_percent"] = MetaIntVal(*pct)
		}
		if len(meta) == 0 {
			meta = nil
		}

		items = append(items, HotItem{
			Source:   h.ID(),
			Section:  section,
			Title:    title,
			URL:      ResolveURL(hentaigemBase, href),
			CoverURL: thumb,
			Views:    ParseCompactInt(viewsText),
			Meta:     meta,
		})
	})

	items = sampleItems(h.rng, items, limit)
	if len(items) == 0 {
		return items, nil
	}
	return enrichDetails(ctx, h.client, nil, items, parseHentaiGemDetail), nil
}

// applyTodayFilter swaps the all-time top-rated block for today's via the
// ajax endpoint the sort tabs use. Already-on-today pages pass through.
func (h *HentaiGem) applyTodayFilter(ctx context.Context, listHTML, baseURL string) string {
	doc, err := parseDoc(listHTML)
	if err != nil {
		return listHTML
	}
	sortEl := doc.Find(".sort").First()
	if sortEl.Length() == 0 {
		return listHTML
	}
	if strings.Contains(strings.ToLower(collapseSpace(sortEl.Find("strong").First().Text())), "today") {
		return listHTML
	}

	params := "sort_by:rating_today"
	blockID := "list_videos_common_videos_list"
	sortEl.Find("a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(collapseSpace(link.Text())), "today") {
			return true
		}
		if p := strings.TrimSpace(link.AttrOr("data-parameters", "")); p != "" {
			params = p
		}
		if b := strings.TrimSpace(link.AttrOr("data-block-id", "")); b != "" {
			blockID = b
		}
		return false
	})

	ajaxURL := baseURL + "?mode=async&function=get_block&block_id=" + blockID
	if q := ajaxParamsToQuery(params); q != "" {
		ajaxURL += "&" + q
	}

	resp, err := h.client.GetText(ctx, ajaxURL, nil)
	if err != nil {
		return listHTML
	}
	if strings.HasPrefix(strings.TrimSpace(resp), "{") {
		var payload struct {
			HTML string `json:"html"`
			Data string `json:"data"`
		}
		if json.Unmarshal([]byte(resp), &payload) == nil {
			if s := FirstNonEmpty(payload.HTML, payload.Data); s != "" {
				return s
			}
		}
	}
	if resp != "" {
		return resp
	}
	return listHTML
}

func parseHentaiGemDetail(page string) detailStats {
	var st detailStats
	doc, err := parseDoc(page)
	if err != nil {
		return st
	}

	var duration string
	doc.Find(".block-details .info span").Each(func(_ int, span *goquery.Selection) {
		label := strings.ToLower(collapseSpace(span.Text()))
		em := span.Find("em").First()
		if em.Length() == 0 {
			return
		}
		if strings.HasPrefix(label, "duration") {
			duration = collapseSpace(em.Text())
		}
		if strings.HasPrefix(label, "views") {
			st.Views = ParseCompactInt(collapseSpace(em.Text()))
		}
	})

	var rating *int
	if voters := doc.Find(".rating .voters").First(); voters.Length() > 0 {
		text := collapseSpace(voters.Text())
		rating = ParsePercentInt(text)
		if m := hgVotesRe.FindStringSubmatch(text); m != nil {
			st.Stars = ParseCompactInt(m[1])
		}
	}
	if st.Stars == nil {
		if scale := doc.Find(".rating .scale").First(); scale.Length() > 0 {
			st.Stars = ParseCompactInt(scale.AttrOr("data-votes", ""))
		}
	}

	meta := map[string]MetaValue{}
	if duration != "" {
		meta["duration"] = MetaStr(duration)
	}
	if rating != nil {
		meta["rating_percent"] = MetaIntVal(*rating)
	}
	if len(meta) > 0 {
		st.Meta = meta
	}
	return st
}

func hentaigemPlaceholder() string {
	img := image.NewRGBA(image.Rect(0, 0, 640, 360))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{15, 15, 19, 255}), image.Point{}, draw.Src)
	drawLabel(img, 24, 40, "HentaiGem", color.RGBA{255, 177, 0, 255})
	drawLabel(img, 24, 96, "offline", color.RGBA{220, 220, 220, 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
