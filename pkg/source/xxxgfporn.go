package source

import (
	"context"
	"regexp"
)

// XXXGFPorn scrapes the most-viewed listing.
type XXXGFPorn struct {
	client *Client
}

func NewXXXGFPorn(client *Client) *XXXGFPorn { return &XXXGFPorn{client: client} }

const xxxgfpornBase = "https://www.xxxgfporn.com"

var xxxgfpornLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/video/[^\s]+\.html`),
}

func (x *XXXGFPorn) ID() string          { return "xxxgfporn" }
func (x *XXXGFPorn) DisplayName() string { return "XXXGFPORN" }
func (x *XXXGFPorn) Sections() []string  { return []string{SectionReal} }

func (x *XXXGFPorn) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(x, section) {
		return nil, nil
	}
	headers := map[string]string{"Referer": xxxgfpornBase}
	html, err := x.client.GetText(ctx, xxxgfpornBase+"/most-viewed/", headers)
	if err != nil {
		return nil, err
	}
	return ParseTubeList(html, xxxgfpornBase, x.ID(), section, xxxgfpornLinkPatterns, limit), nil
}
