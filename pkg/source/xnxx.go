package source

import (
	"context"
	"regexp"
)

// XNXX scrapes the best-of listing; card text already carries the counters.
type XNXX struct {
	client *Client
}

func NewXNXX(client *Client) *XNXX { return &XNXX{client: client} }

const xnxxBase = "https://www.xnxx.com"

var xnxxLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/video-`),
}

func (x *XNXX) ID() string          { return "xnxx" }
func (x *XNXX) DisplayName() string { return "XNXX" }
func (x *XNXX) Sections() []string  { return []string{SectionReal} }

func (x *XNXX) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(x, section) {
		return nil, nil
	}
	urls := []string{xnxxBase + "/best/", xnxxBase + "/"}
	html, err := fetchFirst(ctx, x.client, urls, nil)
	if err != nil {
		return nil, err
	}
	return ParseTubeList(html, xnxxBase, x.ID(), section, xnxxLinkPatterns, limit), nil
}
