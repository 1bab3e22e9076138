// Package cover caches video thumbnails on disk, optionally pixelated so the
// report image stays work-safe.
package cover

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/webp"

	"github.com/voidmaw/hotdaily/pkg/source"
)

// maxPixels caps decoded image size; anything larger is treated as a miss.
const maxPixels = 30_000_000

// Service fetches covers and stores a processed copy per (url, level).
type Service struct {
	client   *source.Client
	cacheDir string
	level    int
}

// NewService creates a cover service writing into cacheDir. level is the
// mosaic strength 0..100; 0 stores the original bytes untouched.
func NewService(client *source.Client, cacheDir string, level int) *Service {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	return &Service{client: client, cacheDir: cacheDir, level: level}
}

// CoverPath returns the local file for url, fetching and processing it on a
// cache miss. It never errors: a false means the caller should render without
// a cover.
func (s *Service) CoverPath(ctx context.Context, url string) (string, bool) {
	if url == "" {
		return "", false
	}

	path := s.cachePath(url)
	if _, err := os.Stat(path); err == nil {
		return path, true
	}

	raw, ok := s.client.SafeGetBytes(ctx, url)
	if !ok || len(raw) == 0 {
		return "", false
	}

	var out []byte
	if s.level == 0 {
		out = raw
	} else {
		processed, err := mosaic(raw, s.level)
		if err != nil {
			log.Debug().Str("url", url).Err(err).Msg("cover decode failed")
			return "", false
		}
		out = processed
	}

	if err := writeAtomic(path, out); err != nil {
		log.Warn().Str("path", path).Err(err).Msg("cover cache write failed")
		return "", false
	}
	return path, true
}

// Level returns the configured mosaic strength.
func (s *Service) Level() int { return s.level }

func (s *Service) cachePath(url string) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s|%d", url, s.level)))
	return filepath.Join(s.cacheDir, hex.EncodeToString(sum[:])+".png")
}

// mosaic pixelates the image by downscaling and blowing it back up with
// nearest-neighbor sampling. level 1..100 maps to block factor 2..40.
func mosaic(raw []byte, level int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode cover: %w", err)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || w*h > maxPixels {
		return nil, fmt.Errorf("cover dimensions %dx%d out of range", w, h)
	}

	factor := 2 + level*38/100
	smallW, smallH := w/factor, h/factor
	if smallW < 1 {
		smallW = 1
	}
	if smallH < 1 {
		smallH = 1
	}

	small := image.NewRGBA(image.Rect(0, 0, smallW, smallH))
	xdraw.NearestNeighbor.Scale(small, small.Bounds(), img, b, xdraw.Src, nil)

	big := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(big, big.Bounds(), small, small.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, big); err != nil {
		return nil, fmt.Errorf("encode cover: %w", err)
	}
	return buf.Bytes(), nil
}

// writeAtomic writes via a temp file and rename so readers never see a
// partial cover.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".cover-*")
	if err != nil {
		return fmt.Errorf("create temp cover: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cover: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close cover: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename cover: %w", err)
	}
	return nil
}
