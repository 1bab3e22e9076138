package source

import (
	"context"
	"regexp"
)

// XFreeHD scrapes the trending listings and reads exact vote counts off the
// per-video vote controls.
type XFreeHD struct {
	client *Client
}

func NewXFreeHD(client *Client) *XFreeHD { return &XFreeHD{client: client} }

const xfreehdBase = "https://xfreehd.com"

var xfreehdLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/video/\d+`),
}

var (
	xfVideoIDRe    = regexp.MustCompile(`(?i)/video/(\d+)`)
	xfDetailViewsRe = regexp.MustCompile(`(?i)\b(\d[\d,]*)\s*views?\b`)
)

func (x *XFreeHD) ID() string          { return "xfreehd" }
func (x *XFreeHD) DisplayName() string { return "XFreeHD" }
func (x *XFreeHD) Sections() []string  { return []string{SectionReal} }

func (x *XFreeHD) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(x, section) {
		return nil, nil
	}

	urls := []string{
		xfreehdBase + "/",
		xfreehdBase + "/trending",
		xfreehdBase + "/most-viewed",
		xfreehdBase + "/top",
	}
	html, err := fetchFirst(ctx, x.client, urls, nil)
	if err != nil {
		return nil, err
	}

	items := ParseTubeList(html, xfreehdBase, x.ID(), section, xfreehdLinkPatterns, limit)
	if len(items) == 0 {
		return items, nil
	}

	enriched := make([]HotItem, 0, len(items))
	for _, it := range items {
		detail, err := x.client.GetText(ctx, it.URL, nil)
		if err != nil {
			enriched = append(enriched, it)
			continue
		}
		st := parseXFreeHDDetail(it.URL, detail)
		if st.Stars != nil {
			it.Stars = st.Stars
		}
		if st.Views != nil {
			it.Views = st.Views
		}
		enriched = append(enriched, it)
	}
	return enriched, nil
}

func parseXFreeHDDetail(pageURL, html string) detailStats {
	var st detailStats
	doc, err := parseDoc(html)
	if err != nil {
		return st
	}

	if m := xfVideoIDRe.FindStringSubmatch(pageURL); m != nil {
		if span := doc.Find("#vote_like_" + m[1] + " span.btn.num").First(); span.Length() > 0 {
			st.Stars = ParseCompactInt(collapseSpace(span.Text()))
		}
	}
	if st.Stars == nil {
		if el := doc.Find("[id^='vote_like_'] span.btn.num").First(); el.Length() > 0 {
			st.Stars = ParseCompactInt(collapseSpace(el.Text()))
		}
	}

	if el := doc.Find(".big-views span.text-white:last-of-type").First(); el.Length() > 0 {
		st.Views = ParseCompactInt(collapseSpace(el.Text()))
	}
	if st.Views == nil {
		st.Views = ParseCompactInt(extractFirst(collapseSpace(doc.Text()), xfDetailViewsRe))
	}
	return st
}
