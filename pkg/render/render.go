// Package render turns section picks into a shareable report image, through
// an external HTML renderer when configured or a local bitmap fallback.
package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voidmaw/hotdaily/pkg/rank"
	"github.com/voidmaw/hotdaily/pkg/source"
)

// Options configures the renderer. Zero-value fields fall back to the local
// bitmap backend with PNG output.
type Options struct {
	Endpoint       string // external HTML-to-image service, empty = local only
	TemplatePath   string // custom report template, empty = built-in
	SendMode       string // file | url | base64
	ImageType      string // png | jpeg
	Quality        int    // jpeg quality 10..100
	FullPage       bool
	OmitBackground bool
	TimeoutMS      int
}

// Renderer produces report images in outDir.
type Renderer struct {
	client *source.Client
	opts   Options
	outDir string
}

// New creates a renderer writing images into outDir.
func New(client *source.Client, opts Options, outDir string) *Renderer {
	if opts.ImageType != "jpeg" {
		opts.ImageType = "png"
	}
	if opts.Quality < 10 || opts.Quality > 100 {
		opts.Quality = 85
	}
	if opts.TimeoutMS <= 0 {
		opts.TimeoutMS = 30000
	}
	return &Renderer{client: client, opts: opts, outDir: outDir}
}

// Report renders the picks into an image file and returns its path. covers
// maps a pick's cover URL to a local cached file; missing entries render a
// text placeholder. The external backend is tried first when configured; its
// failure falls through to the local backend.
func (r *Renderer) Report(ctx context.Context, title string, picks []rank.Pick, covers map[string]string) (string, error) {
	if len(picks) == 0 {
		return "", fmt.Errorf("render report: no picks")
	}

	if r.opts.Endpoint != "" {
		path, err := r.renderExternal(ctx, title, picks, covers)
		if err == nil {
			return path, nil
		}
		log.Warn().Err(err).Msg("external render failed, using local backend")
	}

	raw, err := r.renderLocal(title, picks, covers)
	if err != nil {
		return "", fmt.Errorf("local render: %w", err)
	}
	out, err := compress(raw, r.opts.ImageType, r.opts.Quality)
	if err != nil {
		return "", fmt.Errorf("compress report: %w", err)
	}
	return r.writeImage(out)
}

type renderRequest struct {
	HTML           string `json:"html"`
	Type           string `json:"type"`
	Quality        int    `json:"quality"`
	FullPage       bool   `json:"full_page"`
	OmitBackground bool   `json:"omit_background"`
	TimeoutMS      int    `json:"timeout_ms"`
	SendMode       string `json:"send_mode"`
}

type renderResponse struct {
	File   string `json:"file"`
	URL    string `json:"url"`
	Base64 string `json:"base64"`
	Error  string `json:"error"`
}

func (r *Renderer) renderExternal(ctx context.Context, title string, picks []rank.Pick, covers map[string]string) (string, error) {
	html, err := r.reportHTML(title, picks, covers)
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}

	req := renderRequest{
		HTML:           html,
		Type:           r.opts.ImageType,
		Quality:        r.opts.Quality,
		FullPage:       r.opts.FullPage,
		OmitBackground: r.opts.OmitBackground,
		TimeoutMS:      r.opts.TimeoutMS,
		SendMode:       r.opts.SendMode,
	}
	var resp renderResponse
	if err := r.client.PostJSON(ctx, r.opts.Endpoint, req, nil, &resp); err != nil {
		return "", fmt.Errorf("post render request: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("render service: %s", resp.Error)
	}

	switch {
	case r.opts.SendMode == "file" && resp.File != "":
		if _, err := os.Stat(resp.File); err != nil {
			return "", fmt.Errorf("render service file: %w", err)
		}
		return resp.File, nil
	case r.opts.SendMode == "url" && resp.URL != "":
		data, err := r.client.GetBytes(ctx, resp.URL, nil)
		if err != nil {
			return "", fmt.Errorf("fetch rendered image: %w", err)
		}
		return r.writeImage(data)
	case resp.Base64 != "":
		data, err := base64.StdEncoding.DecodeString(resp.Base64)
		if err != nil {
			return "", fmt.Errorf("decode rendered image: %w", err)
		}
		return r.writeImage(data)
	}
	return "", fmt.Errorf("render service returned no %s payload", r.opts.SendMode)
}

func (r *Renderer) writeImage(data []byte) (string, error) {
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	ext := ".png"
	if r.opts.ImageType == "jpeg" || looksJPEG(data) {
		ext = ".jpg"
	}
	path := filepath.Join(r.outDir, fmt.Sprintf("report-%d%s", time.Now().UnixNano(), ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report image: %w", err)
	}
	return path, nil
}

func looksJPEG(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF})
}
