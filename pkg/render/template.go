package render

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	"github.com/voidmaw/hotdaily/pkg/rank"
	"github.com/voidmaw/hotdaily/pkg/source"
)

// defaultTemplate is the built-in report layout sent to the external
// renderer. Covers are inlined as data URIs so the service needs no file
// access.
const defaultTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { margin: 0; padding: 24px; width: 640px; background: #14141e;
         font-family: "PingFang SC", "Noto Sans CJK SC", sans-serif; color: #eee; }
  h1 { font-size: 22px; margin: 0 0 4px; }
  .date { color: #888; font-size: 13px; margin-bottom: 18px; }
  .card { background: #1e1e2a; border-radius: 10px; overflow: hidden; margin-bottom: 16px; }
  .card img { width: 100%; aspect-ratio: 16/9; object-fit: cover; display: block; }
  .no-cover { width: 100%; aspect-ratio: 16/9; display: flex; align-items: center;
              justify-content: center; background: #2a2a38; color: #666; font-size: 14px; }
  .body { padding: 12px 14px; }
  .section { color: #7da7ff; font-size: 12px; letter-spacing: 1px; }
  .title { font-size: 15px; margin: 4px 0 8px; line-height: 1.4; }
  .stats { font-size: 12px; color: #999; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="date">{{.Date}}</div>
{{range .Cards}}
<div class="card">
  {{if .CoverSrc}}<img src="{{.CoverSrc}}">{{else}}<div class="no-cover">{{.Source}}</div>{{end}}
  <div class="body">
    <div class="section">{{.Section}} · {{.Source}}</div>
    <div class="title">{{.ItemTitle}}</div>
    <div class="stats">{{.Stats}}</div>
  </div>
</div>
{{end}}
</body>
</html>`

type reportCard struct {
	Section   string
	Source    string
	ItemTitle string
	Stats     string
	CoverSrc  template.URL
}

type reportData struct {
	Title string
	Date  string
	Cards []reportCard
}

func (r *Renderer) reportHTML(title string, picks []rank.Pick, covers map[string]string) (string, error) {
	text := defaultTemplate
	if r.opts.TemplatePath != "" {
		raw, err := os.ReadFile(r.opts.TemplatePath)
		if err != nil {
			return "", fmt.Errorf("read template: %w", err)
		}
		text = string(raw)
	}
	tmpl, err := template.New("report").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	data := reportData{
		Title: title,
		Date:  time.Now().Format("2006-01-02"),
	}
	for _, p := range picks {
		data.Cards = append(data.Cards, reportCard{
			Section:   source.SectionDisplay(p.Section),
			Source:    p.Item.Source,
			ItemTitle: p.Item.Title,
			Stats:     StatsLine(p.Item),
			CoverSrc:  coverDataURI(covers[p.Item.CoverURL]),
		})
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return b.String(), nil
}

// coverDataURI inlines a cached cover file; empty on any failure so the card
// falls back to the placeholder block.
func coverDataURI(path string) template.URL {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "data:") {
		return template.URL(path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	mime := "image/png"
	if looksJPEG(raw) {
		mime = "image/jpeg"
	}
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw))
}

// StatsLine formats an item's counters for display, skipping missing ones.
func StatsLine(item source.HotItem) string {
	var parts []string
	if item.Views != nil {
		parts = append(parts, fmt.Sprintf("▶ %s", compactCount(*item.Views)))
	}
	if item.Stars != nil {
		parts = append(parts, fmt.Sprintf("♥ %s", compactCount(*item.Stars)))
	}
	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, "   ")
}

func compactCount(n int) string {
	switch {
	case n >= 1_000_000:
		return strings.TrimSuffix(fmt.Sprintf("%.1f", float64(n)/1_000_000), ".0") + "M"
	case n >= 1_000:
		return strings.TrimSuffix(fmt.Sprintf("%.1f", float64(n)/1_000), ".0") + "K"
	default:
		return fmt.Sprintf("%d", n)
	}
}
