package source

import (
	"context"
	"net/http"
	"regexp"
)

// SpankBang sits behind Cloudflare; a 403 falls back to the r.jina.ai
// reader before giving up as blocked.
type SpankBang struct {
	client *Client
}

func NewSpankBang(client *Client) *SpankBang { return &SpankBang{client: client} }

const spankbangBase = "https://spankbang.com"

var spankbangLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/[^/]+/video/[^/]+`),
}

func (s *SpankBang) ID() string          { return "spankbang" }
func (s *SpankBang) DisplayName() string { return "SpankBang" }
func (s *SpankBang) Sections() []string  { return []string{SectionReal} }

func (s *SpankBang) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(s, section) {
		return nil, nil
	}

	urls := []string{
		spankbangBase + "/trending",
		spankbangBase + "/trending_videos",
		spankbangBase + "/",
	}

	var lastErr error
	for _, u := range urls {
		html, err := s.client.GetText(ctx, u, nil)
		if err == nil {
			return ParseTubeList(html, spankbangBase, s.ID(), section, spankbangLinkPatterns, limit), nil
		}
		lastErr = err
		if IsStatus(err, http.StatusForbidden) {
			html, jerr := s.client.GetTextViaJina(ctx, u)
			if jerr == nil {
				return ParseTubeList(html, spankbangBase, s.ID(), section, spankbangLinkPatterns, limit), nil
			}
			lastErr = jerr
		}
	}
	if IsStatus(lastErr, http.StatusForbidden) {
		return nil, blockedErr(s.DisplayName(), http.StatusForbidden)
	}
	return nil, lastErr
}
