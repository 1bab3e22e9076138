package source

import (
	"context"
	"encoding/json"
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Rule34Video pulls the top-rated block through the site's ajax endpoint,
// samples a subset, and reads stats off each video page. When only the
// voters widget ("94% (1.2K)") is present, likes are estimated from it.
type Rule34Video struct {
	client *Client
	rng    randSource
}

func NewRule34Video(client *Client, rng randSource) *Rule34Video {
	return &Rule34Video{client: client, rng: rng}
}

const rule34Base = "https://rule34video.com"

var (
	r34VideoLinkRe   = regexp.MustCompile(`(?i)href=["'](?:https?://[^"']+)?(/video/(\d+)/[^"']+/)["']`)
	r34TitleTagRe    = regexp.MustCompile(`(?i)<title>([^<]+)</title>`)
	r34TitleH1Re     = regexp.MustCompile(`(?i)<h1[^>]*class="[^"]*title[^"]*"[^>]*>([^<]+)</h1>`)
	r34ThumbOGRe     = regexp.MustCompile(`(?i)property\s*=\s*["']og:image["']\s+content\s*=\s*["']([^"']+)["']`)
	r34ThumbTWRe     = regexp.MustCompile(`(?i)name\s*=\s*["']twitter:image["']\s+content\s*=\s*["']([^"']+)["']`)
	r34ThumbPosterRe = regexp.MustCompile(`(?i)poster\s*=\s*["']([^"']+)["']`)
	r34ThumbURLRe    = regexp.MustCompile(`(?i)thumbnailUrl\\?["']\s*:\s*\\?["']([^"']+)\\?["']`)
	r34ThumbShotsRe  = regexp.MustCompile(`(?i)(https?://rule34video\.com/contents/videos_screenshots/[^\s"'<>]+\.(?:jpg|png|webp))`)
	r34ViewsRe       = regexp.MustCompile(`(?i)(\d[\d,\.]*)\s*(?:views?|播放)`)
	r34LikesDataRe   = regexp.MustCompile(`(?i)data-likes=["']?(\d+)["']?`)
	r34VotersRe      = regexp.MustCompile(`(?i)(\d{1,3}(?:\.\d+)?)%\s*\((\d[\d,\.]*[KMB]?)\)`)
)

func (r *Rule34Video) ID() string          { return "rule34video" }
func (r *Rule34Video) DisplayName() string { return "Rule34Video" }
func (r *Rule34Video) Sections() []string  { return []string{Section25D} }

func (r *Rule34Video) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(r, section) {
		return nil, nil
	}

	listHTML := r.fetchTopRatedList(ctx)

	var urls []string
	seen := map[string]bool{}
	for _, m := range r34VideoLinkRe.FindAllStringSubmatch(listHTML, -1) {
		u := ResolveURL(rule34Base, m[1])
		if seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	if len(urls) > limit {
		idx := r.rng.Perm(len(urls))
		sampled := make([]string, 0, limit)
		for _, i := range idx[:limit] {
			sampled = append(sampled, urls[i])
		}
		urls = sampled
	}

	var items []HotItem
	for _, u := range urls {
		page, err := r.client.GetText(ctx, u, nil)
		if err != nil {
			continue
		}

		title := extractFirst(page, r34TitleH1Re, r34TitleTagRe)
		if title == "" {
			title = "Untitled"
		}
		title = strings.TrimSpace(html.UnescapeString(title))

		thumb := extractFirst(page, r34ThumbOGRe, r34ThumbTWRe, r34ThumbURLRe, r34ThumbShotsRe, r34ThumbPosterRe)
		thumb = strings.ReplaceAll(thumb, `\/`, "/")
		if thumb != "" && !strings.HasPrefix(thumb, "http") {
			thumb = ResolveURL(rule34Base, thumb)
		}

		st := parseRule34Detail(page)

		items = append(items, HotItem{
			Source:   r.ID(),
			Section:  section,
			Title:    title,
			URL:      u,
			CoverURL: thumb,
			Stars:    st.Stars,
			Views:    st.Views,
			Meta:     st.Meta,
		})
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

// fetchTopRatedList asks the front page for its ajax block parameters, then
// requests the rating-sorted block. Any failure falls back to whatever HTML
// is already in hand.
func (r *Rule34Video) fetchTopRatedList(ctx context.Context) string {
	baseURL := rule34Base + "/"
	listHTML, err := r.client.GetText(ctx, baseURL, nil)
	if err != nil {
		return ""
	}

	params := "sort_by:rating"
	blockID := "custom_list_videos_most_recent_videos"
	if doc, derr := parseDoc(listHTML); derr == nil {
		link := doc.Find("a[data-action='ajax'][data-parameters*='sort_by:rating']").First()
		if link.Length() > 0 {
			if p := strings.TrimSpace(link.AttrOr("data-parameters", "")); p != "" {
				params = p
			}
			if b := strings.TrimSpace(link.AttrOr("data-block-id", "")); b != "" {
				blockID = b
			}
		}
	}

	ajaxURL := baseURL + "?mode=async&function=get_block&block_id=" + blockID
	if q := ajaxParamsToQuery(params); q != "" {
		ajaxURL += "&" + q
	}

	resp, err := r.client.GetText(ctx, ajaxURL, nil)
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

func ajaxParamsToQuery(params string) string {
	var parts []string
	for _, part := range regexp.MustCompile(`[;,]`).Split(params, -1) {
		part = strings.TrimSpace(part)
		key, value, ok := strings.Cut(part, ":")
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}
		parts = append(parts, strings.TrimSpace(key)+"="+strings.TrimSpace(value))
	}
	return strings.Join(parts, "&")
}

func parseRule34Detail(page string) detailStats {
	var st detailStats

	if doc, err := parseDoc(page); err == nil {
		doc.Find("div.info div.item_info").EachWithBreak(func(_ int, item *goquery.Selection) bool {
			if item.Find(".custom-eye").Length() == 0 {
				return true
			}
			if span := item.Find("span").First(); span.Length() > 0 {
				if v := ParseCompactInt(collapseSpace(span.Text())); v != nil {
					st.Views = v
					return false
				}
			}
			return true
		})

		if st.Views == nil {
			st.Views = ParseCompactInt(extractFirst(page, r34ViewsRe))
		}

		st.Stars = ParseCompactInt(extractFirst(page, r34LikesDataRe))

		if st.Stars == nil {
			if voters := doc.Find("div.voters.count").First(); voters.Length() > 0 {
				if m := r34VotersRe.FindStringSubmatch(collapseSpace(voters.Text())); m != nil {
					percent, perr := strconv.ParseFloat(m[1], 64)
					total := ParseCompactInt(m[2])
					if perr == nil && total != nil {
						likes := int(math.Round(float64(*total) * percent / 100.0))
						dislikes := *total - likes
						if dislikes < 0 {
							dislikes = 0
						}
						st.Stars = &likes
						st.Meta = map[string]MetaValue{
							"rating_percent": MetaIntVal(int(math.Round(percent))),
							"dislikes":       MetaIntVal(dislikes),
						}
					}
				}
			}
		}
	}
	return st
}
