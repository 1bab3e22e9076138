package source

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Smutba ranks MMD model projects by views. Stats only live on the project
// detail pages, so each candidate costs one extra fetch. Downloads stand in
// for stars since the site has no vote counter.
type Smutba struct {
	client *Client
}

func NewSmutba(client *Client) *Smutba { return &Smutba{client: client} }

const smutbaBase = "https://smutba.se"

var (
	smutbaProjectRe = regexp.MustCompile(`(?i)/project/([a-f0-9-]{8,36})/`)
	smutbaOGImageRe = regexp.MustCompile(`(?i)property="og:image"\s+content="([^"]+)"`)
	smutbaNumberRe  = regexp.MustCompile(`\d[\d,\.]*`)
)

func (s *Smutba) ID() string          { return "smutba" }
func (s *Smutba) DisplayName() string { return "Smutba" }
func (s *Smutba) Sections() []string  { return []string{Section3D} }

func (s *Smutba) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(s, section) {
		return nil, nil
	}

	html, err := s.client.GetText(ctx, smutbaBase+"/?sort=most_viewed", nil)
	if err != nil {
		return nil, err
	}
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	var items []HotItem
	seen := map[string]bool{}

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := a.AttrOr("href", "")
		m := smutbaProjectRe.FindStringSubmatch(href)
		if m == nil {
			return true
		}
		modelID := m[1]
		if seen[modelID] {
			return true
		}
		seen[modelID] = true

		fullURL := ResolveURL(smutbaBase, href)
		title := collapseSpace(a.Text())
		if title == "" {
			title = modelID
		}
		img := a.Find("img").First()
		thumb := FirstNonEmpty(img.AttrOr("src", ""), img.AttrOr("data-src", ""))
		if thumb != "" && !strings.HasPrefix(thumb, "http") {
			thumb = ResolveURL(smutbaBase, thumb)
		}

		var views, downloads *int
		if detail, err := s.client.GetText(ctx, fullURL, nil); err == nil {
			views = smutbaStat(detail, "Views")
			downloads = smutbaStat(detail, "Downloads")
			if thumb == "" {
				if mo := smutbaOGImageRe.FindStringSubmatch(detail); mo != nil {
					thumb = mo[1]
				}
			}
		}

		items = append(items, HotItem{
			Source:   s.ID(),
			Section:  section,
			Title:    title,
			URL:      fullURL,
			CoverURL: thumb,
			Stars:    downloads,
			Views:    views,
		})
		return len(items) < limit
	})

	return items, nil
}

// smutbaStat pulls the number following a <strong>Label</strong> stat cell.
func smutbaStat(html, label string) *int {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `\s*[^\d]{0,40}(\d[\d,\.]*)`)
	if m := re.FindStringSubmatch(html); m != nil {
		return ParseCompactInt(m[1])
	}
	return nil
}
