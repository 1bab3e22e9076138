package source

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// XVideos samples from the current month's best pages. The monthly charts
// barely move day to day, so a random sample keeps the daily report fresh
// instead of repeating the same top entries.
type XVideos struct {
	client *Client
	rng    randSource
	now    func() time.Time
}

func NewXVideos(client *Client, rng randSource) *XVideos {
	return &XVideos{client: client, rng: rng, now: time.Now}
}

const (
	xvideosBase         = "https://www.xvideos.com"
	xvideosMonthlyPages = 3
)

var xvideosLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^/video`),
}

var (
	xvDetailViewsRe    = regexp.MustCompile(`(?i)class=["']mobile-hide["'][^>]*>(\d[\d,\.]*[KMB]?)<`)
	xvDetailLikesRe    = regexp.MustCompile(`(?i)class=["']rating-good-nbr["'][^>]*>([^<]+)<`)
	xvDetailDislikesRe = regexp.MustCompile(`(?i)class=["']rating-bad-nbr["'][^>]*>([^<]+)<`)
)

func (x *XVideos) ID() string          { return "xvideos" }
func (x *XVideos) DisplayName() string { return "XVideos" }
func (x *XVideos) Sections() []string  { return []string{SectionReal} }

func (x *XVideos) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(x, section) {
		return nil, nil
	}

	pageLimit := limit * 8
	if pageLimit < 60 {
		pageLimit = 60
	}

	var candidates []HotItem
	seen := map[string]bool{}
	for _, u := range x.monthlyBestURLs() {
		html, err := x.client.GetText(ctx, u, nil)
		if err != nil {
			continue
		}
		for _, item := range ParseTubeList(html, xvideosBase, x.ID(), section, xvideosLinkPatterns, pageLimit) {
			if seen[item.URL] {
				continue
			}
			seen[item.URL] = true
			candidates = append(candidates, item)
		}
	}

	items := sampleItems(x.rng, candidates, limit)
	if len(items) == 0 {
		return items, nil
	}
	return enrichDetails(ctx, x.client, nil, items, parseXVideosDetail), nil
}

func (x *XVideos) monthlyBestURLs() []string {
	base := fmt.Sprintf("%s/best/%s", xvideosBase, x.now().UTC().Format("2006-01"))
	urls := []string{base}
	for i := 1; i < xvideosMonthlyPages; i++ {
		urls = append(urls, fmt.Sprintf("%s/%d", base, i))
	}
	return urls
}

func parseXVideosDetail(html string) detailStats {
	var st detailStats
	doc, err := parseDoc(html)
	if err != nil {
		return st
	}

	for _, sel := range []string{
		"#video-views strong",
		".video-views strong",
		".video-views .mobile-hide",
		"strong.mobile-hide",
	} {
		if el := doc.Find(sel).First(); el.Length() > 0 {
			if v := ParseCompactInt(collapseSpace(el.Text())); v != nil {
				st.Views = v
				break
			}
		}
	}
	if st.Views == nil {
		st.Views = ParseCompactInt(extractFirst(html, xvDetailViewsRe))
	}

	var likes, dislikes *int
	if el := doc.Find(".rating-good-nbr").First(); el.Length() > 0 {
		likes = ParseCompactInt(collapseSpace(el.Text()))
	}
	if el := doc.Find(".rating-bad-nbr").First(); el.Length() > 0 {
		dislikes = ParseCompactInt(collapseSpace(el.Text()))
	}
	if likes == nil {
		likes = ParseCompactInt(extractFirst(html, xvDetailLikesRe))
	}
	if dislikes == nil {
		dislikes = ParseCompactInt(extractFirst(html, xvDetailDislikesRe))
	}

	st.Stars = likes
	if dislikes != nil {
		st.Meta = map[string]MetaValue{"dislikes": MetaIntVal(*dislikes)}
	}
	return st
}
