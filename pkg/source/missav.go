package source

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// MissAV is manual-only: the site sits behind aggressive bot checks, so it is
// excluded from scheduled runs. Scraping the mirror hot pages comes first;
// when every mirror blocks, the public Recombee recommendation API stands in.
type MissAV struct {
	client *Client
	now    func() time.Time
}

func NewMissAV(client *Client) *MissAV {
	return &MissAV{client: client, now: time.Now}
}

var missavBases = []string{
	"https://missav.mrst.one",
	"https://missav.ws",
}

var missavHotPaths = []string{
	"/en/today-hot",
	"/en/weekly-hot",
	"/en/monthly-hot",
}

var missavVideoPathRe = regexp.MustCompile(`^/en/[a-z0-9-]+-\d+$`)

const (
	recombeeBase  = "https://client-rapi-missav.recombee.com"
	recombeeDB    = "missav-default"
	recombeeToken = "Ikkg568nlM51RHvldlPvc2GzZPE9R4XGzaH9Qj4zK9npbbbTly1gj9K4mgRn0QlV"
)

func (m *MissAV) ID() string          { return "missav" }
func (m *MissAV) DisplayName() string { return "MissAV" }
func (m *MissAV) Sections() []string  { return []string{SectionReal} }

func (m *MissAV) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(m, section) {
		return nil, nil
	}

	var lastErr error
	for _, base := range missavBases {
		for _, path := range missavHotPaths {
			html, err := m.client.GetText(ctx, base+path, map[string]string{"Referer": base + "/en"})
			if err != nil {
				lastErr = err
				continue
			}
			items, err := m.parseHotPage(base, section, html, limit)
			if err != nil {
				lastErr = err
				continue
			}
			if len(items) > 0 {
				return items, nil
			}
		}
	}

	items, err := m.fetchRecommended(ctx, section, limit)
	if err == nil && len(items) > 0 {
		return items, nil
	}
	if err != nil {
		lastErr = err
	}
	if lastErr != nil {
		return nil, fmt.Errorf("missav: all mirrors failed: %w", lastErr)
	}
	return nil, nil
}

func (m *MissAV) parseHotPage(base, section, html string, limit int) ([]HotItem, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	var items []HotItem
	seen := map[string]bool{}

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		path := href
		if i := strings.Index(path, "://"); i >= 0 {
			if j := strings.Index(path[i+3:], "/"); j >= 0 {
				path = path[i+3+j:]
			} else {
				path = "/"
			}
		}
		if i := strings.IndexAny(path, "?#"); i >= 0 {
			path = path[:i]
		}
		if !missavVideoPathRe.MatchString(path) {
			return true
		}
		fullURL := ResolveURL(base, href)
		if seen[fullURL] {
			return true
		}
		seen[fullURL] = true

		container := bestContainer(a)
		if container == nil {
			container = a
		}
		img := container.Find("img").First()
		cover := ExtractImgURL(img)
		if cover != "" && !strings.HasPrefix(cover, "http") {
			cover = ResolveURL(base, cover)
		}

		title := ExtractTitle(a, img)
		if title == "" {
			title = collapseSpace(container.Text())
		}
		if title == "" {
			title = fullURL
		}

		stars, views := ExtractCounts(container.Text())

		items = append(items, HotItem{
			Source:   m.ID(),
			Section:  section,
			Title:    title,
			URL:      fullURL,
			CoverURL: cover,
			Stars:    stars,
			Views:    views,
		})
		return len(items) < limit
	})
	return items, nil
}

type recombeeRecomm struct {
	ID     string `json:"id"`
	Values struct {
		TitleEn      string   `json:"title_en"`
		Duration     *int     `json:"duration"`
		ReleasedAt   string   `json:"released_at"`
		ActressNames []string `json:"actress_names"`
	} `json:"values"`
}

func (m *MissAV) fetchRecommended(ctx context.Context, section string, limit int) ([]HotItem, error) {
	reqPath := fmt.Sprintf("/%s/recomms/users/anonymous/items/?frontend_timestamp=%d",
		recombeeDB, m.now().Unix())
	mac := hmac.New(sha1.New, []byte(recombeeToken))
	mac.Write([]byte(reqPath))
	sign := hex.EncodeToString(mac.Sum(nil))

	body := map[string]any{
		"count":            limit,
		"scenario":         "home_page_for_you",
		"returnProperties": true,
		"cascadeCreate":    true,
	}
	var resp struct {
		Recomms []recombeeRecomm `json:"recomms"`
	}
	reqURL := recombeeBase + reqPath + "&frontend_sign=" + sign
	headers := map[string]string{
		"Origin":  "https://missav.ws",
		"Referer": "https://missav.ws/",
	}
	if err := m.client.PostJSON(ctx, reqURL, body, headers, &resp); err != nil {
		return nil, err
	}

	items := make([]HotItem, 0, len(resp.Recomms))
	for _, rec := range resp.Recomms {
		vid := strings.TrimSpace(rec.ID)
		if vid == "" {
			continue
		}
		title := strings.TrimSpace(rec.Values.TitleEn)
		if title == "" {
			title = strings.ToUpper(vid)
		}

		meta := map[string]MetaValue{}
		if rec.Values.Duration != nil {
			meta["duration"] = MetaIntVal(*rec.Values.Duration)
		}
		if rec.Values.ReleasedAt != "" {
			meta["released_at"] = MetaStr(rec.Values.ReleasedAt)
		}
		if names := rec.Values.ActressNames; len(names) > 0 {
			if len(names) > 10 {
				names = names[:10]
			}
			meta["actresses"] = MetaList(names)
		}
		if len(meta) == 0 {
			meta = nil
		}

		items = append(items, HotItem{
			Source:   m.ID(),
			Section:  section,
			Title:    title,
			URL:      "https://missav.ws/en/" + vid,
			CoverURL: fmt.Sprintf("https://fourhoi.com/%s/cover-t.jpg", vid),
			Meta:     meta,
		})
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}
