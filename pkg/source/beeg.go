package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Beeg skips HTML entirely and queries the store API its frontend uses.
type Beeg struct {
	client *Client
}

func NewBeeg(client *Client) *Beeg { return &Beeg{client: client} }

const (
	beegBase     = "https://beeg.com"
	beegStoreAPI = "https://store.externulls.com/facts/tag"

	// "Hot" tag id from the Beeg frontend config.
	beegHotTagID = 21868
)

type beegEntry struct {
	Facts []beegFact `json:"fc_facts"`
	File  *beegFile  `json:"file"`
}

type beegFact struct {
	ID             json.Number `json:"id"`
	Thumbs         []int       `json:"fc_thumbs"`
	ReactionsCount *int        `json:"reactions_count_unreg"`
	Views          *int        `json:"fc_st_views"`
}

type beegFile struct {
	ID       json.Number    `json:"id"`
	Duration int            `json:"fl_duration"`
	Data     []beegFileData `json:"data"`
}

type beegFileData struct {
	Column string `json:"cd_column"`
	Value  string `json:"cd_value"`
}

func (b *Beeg) ID() string          { return "beeg" }
func (b *Beeg) DisplayName() string { return "Beeg" }
func (b *Beeg) Sections() []string  { return []string{SectionReal} }

func (b *Beeg) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(b, section) {
		return nil, nil
	}

	apiLimit := limit
	if apiLimit < 10 {
		apiLimit = 10
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(apiLimit))
	params.Set("offset", "0")
	params.Set("id", strconv.Itoa(beegHotTagID))

	var entries []beegEntry
	headers := map[string]string{"Accept": "application/json"}
	if err := b.client.GetJSON(ctx, beegStoreAPI+"?"+params.Encode(), headers, &entries); err != nil {
		return nil, err
	}

	var items []HotItem
	seen := map[string]bool{}

	for _, entry := range entries {
		if len(entry.Facts) == 0 || entry.File == nil {
			continue
		}
		fact := entry.Facts[0]

		factID := strings.TrimSpace(fact.ID.String())
		fileID := strings.TrimSpace(entry.File.ID.String())
		if factID == "" || fileID == "" {
			continue
		}

		title := ""
		for _, d := range entry.File.Data {
			if d.Column == "sf_name" && strings.TrimSpace(d.Value) != "" {
				title = strings.TrimSpace(d.Value)
				break
			}
		}
		if title == "" {
			for _, d := range entry.File.Data {
				if strings.TrimSpace(d.Value) != "" {
					title = strings.TrimSpace(d.Value)
					break
				}
			}
		}
		if title == "" {
			title = "Beeg " + factID
		}

		thumbIdx := 0
		if len(fact.Thumbs) > 0 {
			thumbIdx = fact.Thumbs[0]
		}

		pageURL := beegBase + "/" + factID
		if seen[pageURL] {
			continue
		}
		seen[pageURL] = true

		var meta map[string]MetaValue
		if entry.File.Duration > 0 {
			meta = map[string]MetaValue{"duration": MetaIntVal(entry.File.Duration)}
		}

		items = append(items, HotItem{
			Source:   b.ID(),
			Section:  section,
			Title:    title,
			URL:      pageURL,
			CoverURL: fmt.Sprintf("https://thumbs.externulls.com/videos/%s/%d.webp?size=480x270", fileID, thumbIdx),
			Stars:    fact.ReactionsCount,
			Views:    fact.Views,
			Meta:     meta,
		})
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}
