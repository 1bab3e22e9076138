package source

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// EPorner scrapes the front and most-viewed listings, then pulls exact
// counts from each video's Statistics block.
type EPorner struct {
	client *Client
}

func NewEPorner(client *Client) *EPorner { return &EPorner{client: client} }

const epornerBase = "https://www.eporner.com"

var epornerLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/hd-porn/`),
	regexp.MustCompile(`(?i)/video-`),
}

var (
	epStatsBlockRe    = regexp.MustCompile(`(?is)Statistics.*?(?:Comments|Report|Download)`)
	epViewsRe         = regexp.MustCompile(`(?i)\b(\d[\d,\.]*)\s*views?\b`)
	epLikesRe         = regexp.MustCompile(`(?i)\b(\d[\d,\.]*)\s*(?:likes?|upvotes?|votes?)\b`)
	epDislikesRe      = regexp.MustCompile(`(?i)\b(\d[\d,\.]*)\s*dislikes?\b`)
	epJSONLikesRe     = regexp.MustCompile(`(?i)"(?:likes|like_count|votes_up|upvotes?)"\s*:\s*"?(\d[\d,]*)"?`)
	epJSONDislikesRe  = regexp.MustCompile(`(?i)"(?:dislikes|dislike_count|votes_down|downvotes?)"\s*:\s*"?(\d[\d,]*)"?`)
	epJSONViewsRe     = regexp.MustCompile(`(?i)"(?:views|view_count|views_count|viewCount)"\s*:\s*"?(\d[\d,]*)"?`)
	epRatingPercentRe = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)%`)
	epCommentsBlockRe = regexp.MustCompile(`(?is)([\d,]{8,})\s*Comments?\s*\(\s*\d+\s*\)`)
	epBigNumberRe     = regexp.MustCompile(`\d[\d,]{2,}`)
)

func (e *EPorner) ID() string          { return "eporner" }
func (e *EPorner) DisplayName() string { return "EPorner" }
func (e *EPorner) Sections() []string  { return []string{SectionReal} }

func (e *EPorner) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(e, section) {
		return nil, nil
	}

	urls := []string{
		epornerBase + "/",
		epornerBase + "/most-viewed/",
		epornerBase + "/top-rated/",
	}
	html, err := fetchFirst(ctx, e.client, urls, nil)
	if err != nil {
		return nil, err
	}

	items := ParseTubeList(html, epornerBase, e.ID(), section, epornerLinkPatterns, limit)
	if len(items) == 0 {
		return items, nil
	}
	return enrichDetails(ctx, e.client, nil, items, parseEPornerDetail), nil
}

func parseEPornerDetail(html string) detailStats {
	var st detailStats
	doc, err := parseDoc(html)
	if err != nil {
		return st
	}

	var likes, dislikes *int

	if el := doc.Find("#cinemaviews1, #cinemaviews2").First(); el.Length() > 0 {
		st.Views = ParseCompactInt(collapseSpace(el.Text()))
	}
	if el := doc.Find(".likeup i, .likeup small").First(); el.Length() > 0 {
		likes = ParseCompactInt(collapseSpace(el.Text()))
	}
	if el := doc.Find(".likedown i, .likedown small").First(); el.Length() > 0 {
		dislikes = ParseCompactInt(collapseSpace(el.Text()))
	}

	if st.Views == nil {
		doc.Find("[itemprop='interactionCount'], [itemprop='userInteractionCount']").Each(func(_ int, el *goquery.Selection) {
			t := FirstNonEmpty(el.AttrOr("content", ""), collapseSpace(el.Text()))
			if c := ParseCompactInt(t); c != nil && (st.Views == nil || *c > *st.Views) {
				st.Views = c
			}
		})
	}

	block := extractMatch(html, epStatsBlockRe)
	text := block
	if text == "" {
		text = html
	}

	if st.Views == nil {
		st.Views = ParseCompactInt(extractFirst(text, epViewsRe, epJSONViewsRe))
	}
	if likes == nil {
		likes = ParseCompactInt(extractFirst(text, epLikesRe, epJSONLikesRe))
	}
	if dislikes == nil {
		dislikes = ParseCompactInt(extractFirst(text, epDislikesRe, epJSONDislikesRe))
	}

	// Unlabeled stats block: rank distinct counts, views >> likes >> dislikes.
	if (likes == nil || dislikes == nil) && block != "" {
		nums := distinctCountsDesc(block)
		if st.Views == nil && len(nums) >= 1 {
			st.Views = &nums[0]
		}
		if likes == nil && len(nums) >= 2 {
			likes = &nums[1]
		}
		if dislikes == nil && len(nums) >= 3 {
			dislikes = &nums[2]
		}
	}

	// Some pages concatenate numbers right before "Comments (N)", e.g.
	// "6,232,010158042659Comments (39)" -> 6,232,010 / 158,042 / 659.
	if likes == nil || dislikes == nil {
		if m := epCommentsBlockRe.FindStringSubmatch(html); m != nil {
			v2, l2, d2 := splitCompactedStats(m[1])
			if st.Views == nil {
				st.Views = v2
			}
			if likes == nil {
				likes = l2
			}
			if dislikes == nil {
				dislikes = d2
			}
		}
	}

	var rating *int
	if pct := extractFirst(html, epRatingPercentRe); pct != "" {
		rating = ParsePercentInt(pct + "%")
	}

	st.Stars = likes
	meta := map[string]MetaValue{}
	if dislikes != nil {
		meta["dislikes"] = MetaIntVal(*dislikes)
	}
	if rating != nil {
		meta["rating_percent"] = MetaIntVal(*rating)
	}
	if len(meta) > 0 {
		st.Meta = meta
	}
	return st
}

func extractMatch(content string, re *regexp.Regexp) string {
	return re.FindString(content)
}

func distinctCountsDesc(block string) []int {
	seen := map[int]bool{}
	var nums []int
	for _, s := range epBigNumberRe.FindAllString(block, -1) {
		if n := ParseCompactInt(s); n != nil && !seen[*n] {
			seen[*n] = true
			nums = append(nums, *n)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(nums)))
	return nums
}

// splitCompactedStats untangles a digit run into (views, likes, dislikes)
// under plausibility constraints: views >= 1000, likes <= views,
// dislikes <= likes, dislikes <= 5M, views <= 5B.
func splitCompactedStats(s string) (views, likes, dislikes *int) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if len(raw) < 10 {
		return nil, nil, nil
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return nil, nil, nil
		}
	}

	var best [3]int
	found := false
	for i := 4; i < len(raw)-2; i++ {
		for j := i + 1; j < len(raw)-1; j++ {
			a, err1 := strconv.Atoi(raw[:i])
			b, err2 := strconv.Atoi(raw[i:j])
			c, err3 := strconv.Atoi(raw[j:])
			if err1 != nil || err2 != nil || err3 != nil {
				continue
			}
			if a < 1000 || a > 5_000_000_000 {
				continue
			}
			if b < 0 || b > a {
				continue
			}
			if c < 0 || c > 5_000_000 || c > b {
				continue
			}
			if !found || better(a, b, c, best) {
				best = [3]int{a, b, c}
				found = true
			}
		}
	}
	if !found {
		return nil, nil, nil
	}
	return &best[0], &best[1], &best[2]
}

func better(a, b, c int, best [3]int) bool {
	if a != best[0] {
		return a > best[0]
	}
	if b != best[1] {
		return b > best[1]
	}
	return c < best[2]
}
