package source

import (
	"context"
	"regexp"
)

// Pornhub scrapes the most-viewed and trending listings.
type Pornhub struct {
	client *Client
}

func NewPornhub(client *Client) *Pornhub { return &Pornhub{client: client} }

const pornhubBase = "https://www.pornhub.com"

var pornhubHeaders = map[string]string{
	"Cookie": "age_verified=1; hasVisited=1; platform=pc",
}

var pornhubLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/view_video\.php\?viewkey=`),
}

var (
	phJSONViews    = regexp.MustCompile(`(?i)"(?:views|viewCount|view_count)"\s*:\s*"?(\d[\d,\.]*[KMB]?)"?`)
	phJSONLikes    = regexp.MustCompile(`(?i)"(?:votesUp|upVotes|likes|likeCount|votes_up|votesUpCount)"\s*:\s*"?(\d[\d,\.]*[KMB]?)"?`)
	phJSONDislikes = regexp.MustCompile(`(?i)"(?:votesDown|downVotes|dislikes|dislikeCount|votes_down|votesDownCount)"\s*:\s*"?(\d[\d,\.]*[KMB]?)"?`)
	phDOMLikes     = regexp.MustCompile(`(?is)(?:votesUp|likeCount|rateUp)[^<]{0,40}>\s*(\d[\d,\.]*[KMB]?)\s*<`)
	phDOMDislikes  = regexp.MustCompile(`(?is)(?:votesDown|dislikeCount|rateDown)[^<]{0,40}>\s*(\d[\d,\.]*[KMB]?)\s*<`)
)

func (p *Pornhub) ID() string          { return "pornhub" }
func (p *Pornhub) DisplayName() string { return "PornHub" }
func (p *Pornhub) Sections() []string  { return []string{SectionReal} }

func (p *Pornhub) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(p, section) {
		return nil, nil
	}

	urls := []string{
		pornhubBase + "/video?o=mv",
		pornhubBase + "/video?o=tr",
		pornhubBase + "/video",
	}
	html, err := fetchFirst(ctx, p.client, urls, pornhubHeaders)
	if err != nil {
		return nil, err
	}

	items := ParseTubeList(html, pornhubBase, p.ID(), section, pornhubLinkPatterns, limit)
	if len(items) == 0 {
		return items, nil
	}
	return enrichDetails(ctx, p.client, pornhubHeaders, items, parsePornhubDetail), nil
}

func parsePornhubDetail(html string) detailStats {
	var st detailStats
	doc, err := parseDoc(html)
	if err != nil {
		return st
	}

	if el := doc.Find("div.views .count").First(); el.Length() > 0 {
		st.Views = ParseCompactInt(collapseSpace(el.Text()))
	}
	for _, sel := range []string{
		"[itemprop='interactionCount']",
		"[itemprop='userInteractionCount']",
		"[data-video-views]",
	} {
		el := doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		t := FirstNonEmpty(el.AttrOr("content", ""), el.AttrOr("data-video-views", ""), collapseSpace(el.Text()))
		if v := ParseCompactInt(t); v != nil {
			st.Views = v
			break
		}
	}
	if st.Views == nil {
		st.Views = ParseCompactInt(extractFirst(html, phJSONViews))
	}

	var likes, dislikes *int
	if el := doc.Find(".votesUp").First(); el.Length() > 0 {
		likes = ParseCompactInt(FirstNonEmpty(el.AttrOr("data-rating", ""), collapseSpace(el.Text())))
	}
	if el := doc.Find(".votesDown").First(); el.Length() > 0 {
		dislikes = ParseCompactInt(FirstNonEmpty(el.AttrOr("data-rating", ""), collapseSpace(el.Text())))
	}

	for _, key := range []string{"data-votes-up", "data-video-votes-up", "data-likes"} {
		if likes != nil {
			break
		}
		if el := doc.Find("[" + key + "]").First(); el.Length() > 0 {
			likes = ParseCompactInt(el.AttrOr(key, ""))
		}
	}
	for _, key := range []string{"data-votes-down", "data-video-votes-down", "data-dislikes"} {
		if dislikes != nil {
			break
		}
		if el := doc.Find("[" + key + "]").First(); el.Length() > 0 {
			dislikes = ParseCompactInt(el.AttrOr(key, ""))
		}
	}

	if likes == nil {
		likes = ParseCompactInt(extractFirst(html, phJSONLikes, phDOMLikes))
	}
	if dislikes == nil {
		dislikes = ParseCompactInt(extractFirst(html, phJSONDislikes, phDOMDislikes))
	}

	st.Stars = likes
	if dislikes != nil {
		st.Meta = map[string]MetaValue{"dislikes": MetaIntVal(*dislikes)}
	}
	return st
}
