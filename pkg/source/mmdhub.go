package source

import (
	"bytes"
	"context"
	"encoding/base64"
	"html"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"regexp"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// MMDHub lists trending MMD videos. The listing page only links slugs;
// titles, thumbs, and counters all come from the watch pages. Upload-photo
// covers are hotlink-protected, so those get a drawn placeholder instead.
type MMDHub struct {
	client *Client
}

func NewMMDHub(client *Client) *MMDHub { return &MMDHub{client: client} }

const mmdhubBase = "https://www.mmdhub.net"

var (
	mmdWatchRe        = regexp.MustCompile(`(?i)/en/watch/([^"'<>\s]+)\.html`)
	mmdTitleMetaRe    = regexp.MustCompile(`(?i)property="og:title"\s+content="([^"]+)"`)
	mmdTitleH1Re      = regexp.MustCompile(`(?i)<h1[^>]*>([^<]+)</h1>`)
	mmdTitleTagRe     = regexp.MustCompile(`(?i)<title>([^<]+)</title>`)
	mmdThumbRe        = regexp.MustCompile(`(?i)property="og:image"\s+content="([^"]+)"`)
	mmdViewsRe        = regexp.MustCompile(`(?i)(\d[\d,]*)\s*(?:views?|次观看|播放)`)
	mmdLikesDataRe    = regexp.MustCompile(`(?i)data-likes="(\d+)"`)
	mmdDislikesDataRe = regexp.MustCompile(`(?i)data-dislikes="(\d+)"`)
	mmdDurationRe     = regexp.MustCompile(`(\d{1,2}:\d{2}(?::\d{2})?)`)
)

func (m *MMDHub) ID() string          { return "mmdhub" }
func (m *MMDHub) DisplayName() string { return "MMDHub" }
func (m *MMDHub) Sections() []string  { return []string{Section3D} }

func (m *MMDHub) FetchHot(ctx context.Context, section string, limit int) ([]HotItem, error) {
	if !Supports(m, section) {
		return nil, nil
	}

	listHTML, err := m.client.GetText(ctx, mmdhubBase+"/videos/top", nil)
	if err != nil {
		return nil, err
	}

	slugCap := limit
	if slugCap < 8 {
		slugCap = 8
	}
	var slugs []string
	seen := map[string]bool{}
	for _, mm := range mmdWatchRe.FindAllStringSubmatch(listHTML, -1) {
		if seen[mm[1]] {
			continue
		}
		seen[mm[1]] = true
		slugs = append(slugs, mm[1])
		if len(slugs) >= slugCap {
			break
		}
	}

	var items []HotItem
	for _, slug := range slugs {
		pageURL := mmdhubBase + "/en/watch/" + slug + ".html"
		detail, err := m.client.GetText(ctx, pageURL, nil)
		if err != nil {
			continue
		}

		title := extractFirst(detail, mmdTitleMetaRe, mmdTitleH1Re, mmdTitleTagRe)
		if title == "" {
			title = slug
		}
		title = strings.TrimSpace(strings.NewReplacer(
			" - MMDHub", "", " | MMDHub", "",
		).Replace(html.UnescapeString(title)))

		thumb := extractFirst(detail, mmdThumbRe)
		if thumb != "" && !strings.HasPrefix(thumb, "http") {
			thumb = ResolveURL(mmdhubBase, thumb)
		}
		if thumb != "" {
			thumb = mmdFallbackCover(title, thumb)
		}

		views := ParseCompactInt(extractFirst(detail, mmdViewsRe))
		likes := ParseCompactInt(extractFirst(detail, mmdLikesDataRe))
		dislikes := ParseCompactInt(extractFirst(detail, mmdDislikesDataRe))
		duration := extractFirst(detail, mmdDurationRe)

		meta := map[string]MetaValue{}
		if duration != "" {
			meta["duration"] = MetaStr(duration)
		}
		if dislikes != nil {
			meta["dislikes"] = MetaIntVal(*dislikes)
		}
		if len(meta) == 0 {
			meta = nil
		}

		items = append(items, HotItem{
			Source:   m.ID(),
			Section:  section,
			Title:    title,
			URL:      pageURL,
			CoverURL: thumb,
			Stars:    likes,
			Views:    views,
			Meta:     meta,
		})
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

// mmdFallbackCover replaces hotlink-protected upload-photo covers with a
// drawn card carrying the site name and the title, inlined as a data URL.
func mmdFallbackCover(title, original string) string {
	if !strings.Contains(original, "mmdhub.net/upload/photos") {
		return original
	}

	img := image.NewRGBA(image.Rect(0, 0, 640, 360))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{15, 15, 19, 255}), image.Point{}, draw.Src)

	text := strings.TrimSpace(title)
	if text == "" {
		text = "MMDHub"
	}
	if r := []rune(text); len(r) > 32 {
		text = string(r[:32]) + "…"
	}
	drawLabel(img, 24, 40, "MMDHub", color.RGBA{255, 177, 0, 255})
	drawLabel(img, 24, 96, text, color.RGBA{240, 240, 240, 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return original
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func drawLabel(dst draw.Image, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
