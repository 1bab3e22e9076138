package source

import (
	"context"
	"math"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// PornTrex samples from the daily top-rated chart. Detail pages often expose
// only rating% plus total votes; those are converted to an estimated
// like-count so stars stays comparable across sources.
type PornTrex struct {
	client *Client
	rng    randSource
}

func NewPornTrex(client *Client, rng randSource) *PornTrex {
	return &PornTrex{client: client, rng: rng}
}

const porntrexBase = "https://www.porntrex.com"

var porntrexLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/video/\d+`),
}

var (
	ptViewsRe        = regexp.MustCompile(`(?i)\b(\d[\d\s,]{3,})\s*views?\b`)
	ptAfterAgoRe     = regexp.MustCompile(`(?i)\b(?:seconds?|minutes?|hours?|days?|weeks?|months?|years?)\s+ago\b\s+(\d[\d\s,]{3,})`)
	ptJSONViewsRe    = regexp.MustCompile(`(?i)"(?:views|view_count|viewCount|viewsCount)"\s*:\s*"?(\d[\d,]*)"?`)
	ptJSONLikesRe    = regexp.MustCompile(`(?i)"(?:likes|like_count|votes_up|upVotes|votesUp|favorites|favourites)"\s*:\s*"?(\d[\d,]*)"?`)
	ptJSONDislikesRe = regexp.MustCompile(`(?i)"(?:dislikes|dislike_count|votes_down|downVotes|votesDown)"\s*:\s*"?(\d[\d,]*)"?`)
	ptRatingRe       = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)%`)
	ptVotesTotalRe   = regexp.MustCompile(`(?i)\b(\d[\d\s,]{2,})\s*(?:votes?|ratings?)\b`)
)

func (p *PornTrex) ID() string          { return "porntrex" }
func (p *PornTrex) DisplayName() string { return "PornTrex" }
func (p *PornTrex) Sections() []string  { return []string{SectionReal} }

func (p *PornTrex) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(p, section) {
		return nil, nil
	}

	html, err := p.client.GetText(ctx, porntrexBase+"/top-rated/daily/", nil)
	if err != nil {
		return nil, err
	}

	over := limit * 6
	if over < limit {
		over = limit
	}
	items := ParseTubeList(html, porntrexBase, p.ID(), section, porntrexLinkPatterns, over)
	items = sampleItems(p.rng, items, limit)
	if len(items) == 0 {
		return items, nil
	}
	return enrichDetails(ctx, p.client, nil, items, parsePornTrexDetail), nil
}

func parsePornTrexDetail(html string) detailStats {
	var st detailStats
	doc, err := parseDoc(html)
	if err != nil {
		return st
	}

	var likes, dislikes *int

	if el := doc.Find(".btn-subscribe .button-infow, .btn-subscribe-ajax .button-infow").First(); el.Length() > 0 {
		likes = ParseCompactInt(collapseSpace(el.Text()))
	}

	doc.Find(".info-block .fa-eye").EachWithBreak(func(_ int, icon *goquery.Selection) bool {
		badge := icon.Parent().Find("em.badge, span.badge").First()
		if badge.Length() == 0 {
			return true
		}
		if v := ParseCompactInt(collapseSpace(badge.Text())); v != nil {
			st.Views = v
			return false
		}
		return true
	})

	if st.Views == nil {
		doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, el *goquery.Selection) bool {
			if v := ParseCompactInt(extractFirst(el.Text(), ptJSONViewsRe)); v != nil {
				st.Views = v
				return false
			}
			return true
		})
	}
	if st.Views == nil {
		st.Views = ParseCompactInt(extractFirst(html, ptViewsRe, ptJSONViewsRe))
	}
	if st.Views == nil {
		st.Views = ParseCompactInt(extractFirst(html, ptAfterAgoRe))
	}

	if likes == nil {
		likes = ParseCompactInt(extractFirst(html, ptJSONLikesRe))
	}
	dislikes = ParseCompactInt(extractFirst(html, ptJSONDislikesRe))

	var rating *int
	if pct := extractFirst(html, ptRatingRe); pct != "" {
		rating = ParsePercentInt(pct + "%")
	}
	votesTotal := ParseCompactInt(extractFirst(html, ptVotesTotalRe))

	if likes == nil && rating != nil && votesTotal != nil {
		est := int(math.Round(float64(*votesTotal) * float64(*rating) / 100.0))
		likes = &est
	}

	st.Stars = likes
	meta := map[string]MetaValue{}
	if dislikes != nil {
		meta["dislikes"] = MetaIntVal(*dislikes)
	}
	if rating != nil {
		meta["rating_percent"] = MetaIntVal(*rating)
	}
	if votesTotal != nil {
		meta["votes_total"] = MetaIntVal(*votesTotal)
	}
	if len(meta) > 0 {
		st.Meta = meta
	}
	return st
}
