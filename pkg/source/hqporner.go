package source

import (
	"context"
	"errors"
	"regexp"
)

// HQPorner is manual-only: its CDN frontend rate-limits datacenter ranges
// hard, so it only runs when asked for by id.
type HQPorner struct {
	client *Client
}

func NewHQPorner(client *Client) *HQPorner { return &HQPorner{client: client} }

const hqpornerBase = "https://hqporner.com"

var hqpornerHeaders = map[string]string{
	"Referer": hqpornerBase + "/",
}

var hqpornerLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/hdporn/\d+`),
}

func (h *HQPorner) ID() string          { return "hqporner" }
func (h *HQPorner) DisplayName() string { return "HQPorner" }
func (h *HQPorner) Sections() []string  { return []string{SectionReal} }

func (h *HQPorner) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(h, section) {
		return nil, nil
	}

	urls := []string{
		hqpornerBase + "/top/week",
		hqpornerBase + "/top/month",
		hqpornerBase + "/hdporn",
	}
	html, err := fetchFirst(ctx, h.client, urls, hqpornerHeaders)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && (se.Status == 403 || se.Status == 429) {
			return nil, blockedErr("hqporner", se.Status)
		}
		return nil, err
	}

	items := ParseTubeList(html, hqpornerBase, h.ID(), section, hqpornerLinkPatterns, limit)
	return items, nil
}
