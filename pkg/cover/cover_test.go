package cover

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidmaw/hotdaily/pkg/source"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 36))
	for y := 0; y < 36; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 4), uint8(y * 7), 128, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func dataURI(raw []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)
}

func TestCoverPathLevelZeroPassthrough(t *testing.T) {
	raw := testPNG(t)
	svc := NewService(source.NewClient(""), t.TempDir(), 0)

	path, ok := svc.CoverPath(context.Background(), dataURI(raw))
	require.True(t, ok)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, got, "level 0 must store the original bytes untouched")
}

func TestCoverPathDeterministicKey(t *testing.T) {
	raw := testPNG(t)
	dir := t.TempDir()
	svc := NewService(source.NewClient(""), dir, 40)
	url := dataURI(raw)

	path1, ok := svc.CoverPath(context.Background(), url)
	require.True(t, ok)
	path2, ok := svc.CoverPath(context.Background(), url)
	require.True(t, ok)
	assert.Equal(t, path1, path2)
	assert.Equal(t, ".png", filepath.Ext(path1))

	// Same URL at a different level lands in a different cache slot.
	other := NewService(source.NewClient(""), dir, 80)
	path3, ok := other.CoverPath(context.Background(), url)
	require.True(t, ok)
	assert.NotEqual(t, path1, path3)
}

func distinctColors(img image.Image) int {
	seen := make(map[color.Color]struct{})
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			seen[img.At(x, y)] = struct{}{}
		}
	}
	return len(seen)
}

func TestCoverPathMosaicDecodable(t *testing.T) {
	raw := testPNG(t)
	svc := NewService(source.NewClient(""), t.TempDir(), 100)

	path, ok := svc.CoverPath(context.Background(), dataURI(raw))
	require.True(t, ok)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(got))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 36), img.Bounds(), "mosaic keeps the original dimensions")
	assert.NotEqual(t, raw, got)

	orig, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	// Coarsest block factor is 40; the 64x36 fixture collapses to a single
	// sample, so the palette shrinks massively.
	assert.Less(t, distinctColors(img), distinctColors(orig))
	assert.LessOrEqual(t, distinctColors(img), 2)
}

func TestCoverPathBadInput(t *testing.T) {
	svc := NewService(source.NewClient(""), t.TempDir(), 50)

	_, ok := svc.CoverPath(context.Background(), "")
	assert.False(t, ok)

	_, ok = svc.CoverPath(context.Background(), "data:image/png;base64,not-an-image!!")
	assert.False(t, ok)
}
