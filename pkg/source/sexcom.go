package source

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SexCom parses the React-rendered video cards, which expose stable
// data-testid hooks instead of semantic markup.
type SexCom struct {
	client *Client
}

func NewSexCom(client *Client) *SexCom { return &SexCom{client: client} }

const sexcomBase = "https://www.sex.com"

var (
	sexcomDurationRe = regexp.MustCompile(`(\d{1,2}:\d{2}(?::\d{2})?)`)
	sexcomRatingRe   = regexp.MustCompile(`(\d{1,3})%`)
)

func (s *SexCom) ID() string          { return "sexcom" }
func (s *SexCom) DisplayName() string { return "Sex.com" }
func (s *SexCom) Sections() []string  { return []string{SectionReal} }

func (s *SexCom) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(s, section) {
		return nil, nil
	}

	html, err := s.client.GetText(ctx, sexcomBase+"/en/videos", nil)
	if err != nil {
		return nil, err
	}
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	var items []HotItem
	seen := map[string]bool{}

	doc.Find(`[data-testid="video-card"]`).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		a := card.Find(`a[data-testid="video-link"]`).First()
		if a.Length() == 0 {
			a = card.Find("a[href]").First()
		}
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if !strings.HasPrefix(href, "/en/videos/") {
			return true
		}

		itemURL := ResolveURL(sexcomBase, href)
		if seen[itemURL] {
			return true
		}
		seen[itemURL] = true

		img := a.Find("img").First()
		if img.Length() == 0 {
			img = card.Find("img").First()
		}
		cover := ExtractImgURL(img)
		if strings.HasPrefix(cover, "//") {
			cover = "https:" + cover
		} else if strings.HasPrefix(cover, "/") {
			cover = ResolveURL(sexcomBase, cover)
		}

		title := ExtractTitle(a, img)
		if title == "" {
			title = itemURL
		}

		text := collapseSpace(card.Text())
		duration := sexcomDurationRe.FindString(text)

		var stars *int
		if m := sexcomRatingRe.FindStringSubmatch(text); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				stars = &v
			}
		}

		// The remaining standalone token is the view counter. Durations and
		// percentages were already claimed above.
		tail := text
		if duration != "" {
			tail = strings.Replace(tail, duration, " ", 1)
		}
		var views *int
		for _, tok := range strings.Fields(tail) {
			if strings.Contains(tok, ":") || strings.HasSuffix(tok, "%") {
				continue
			}
			bare := strings.ReplaceAll(strings.ReplaceAll(tok, ",", ""), ".", "")
			if strings.HasPrefix(tok, "<") ||
				strings.HasSuffix(tok, "K") || strings.HasSuffix(tok, "M") || strings.HasSuffix(tok, "B") ||
				isDigits(bare) {
				views = ParseCompactInt(strings.Trim(tok, "<>"))
				break
			}
		}

		var meta map[string]MetaValue
		if duration != "" {
			meta = map[string]MetaValue{"duration": MetaStr(duration)}
		}

		items = append(items, HotItem{
			Source:   s.ID(),
			Section:  section,
			Title:    title,
			URL:      itemURL,
			CoverURL: cover,
			Stars:    stars,
			Views:    views,
			Meta:     meta,
		})
		return len(items) < limit
	})

	return items, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
