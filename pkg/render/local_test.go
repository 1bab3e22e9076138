package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidmaw/hotdaily/pkg/rank"
	"github.com/voidmaw/hotdaily/pkg/source"
)

func testPicks() []rank.Pick {
	return []rank.Pick{
		{Section: source.Section3D, Item: source.HotItem{
			Source: "mmdhub", Title: "某个很长很长很长很长很长很长很长很长很长的标题需要换行和截断",
			URL: "https://example.com/1", Views: source.IntPtr(123456), Stars: source.IntPtr(789),
		}},
		{Section: source.Section25D, Item: source.HotItem{
			Source: "hanime", Title: "Short one",
			URL: "https://example.com/2", Views: source.IntPtr(42),
		}},
		{Section: source.SectionReal, Item: source.HotItem{
			Source: "pornhub", Title: "No counters at all",
			URL: "https://example.com/3",
		}},
	}
}

func TestRenderLocalProducesDecodablePNG(t *testing.T) {
	r := New(source.NewClient(""), Options{}, t.TempDir())

	raw, err := r.renderLocal("今日热门", testPicks(), nil)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
	assert.Positive(t, img.Bounds().Dy())
}

func TestGridColumns(t *testing.T) {
	assert.Equal(t, 1, gridColumns(1))
	assert.Equal(t, 1, gridColumns(2))
	assert.Equal(t, 2, gridColumns(3))
	assert.Equal(t, 2, gridColumns(6))
	assert.Equal(t, 3, gridColumns(7))
}

func TestWrapText(t *testing.T) {
	f := loadFaces()

	lines := wrapText(f.body, "short", cardWidth, 2)
	require.Len(t, lines, 1)
	assert.Equal(t, "short", lines[0])

	long := "a very long title that certainly cannot fit on two narrow lines of text"
	lines = wrapText(f.body, long, 80, 2)
	require.Len(t, lines, 2)
	assert.True(t, len(lines[1]) > 0)
	assert.Equal(t, "…", string([]rune(lines[1])[len([]rune(lines[1]))-1]))

	assert.Nil(t, wrapText(f.body, "   ", cardWidth, 2))
}

func TestStatsLine(t *testing.T) {
	assert.Equal(t, "—", StatsLine(source.HotItem{}))

	line := StatsLine(source.HotItem{Views: source.IntPtr(1_200_000), Stars: source.IntPtr(3400)})
	assert.Contains(t, line, "1.2M")
	assert.Contains(t, line, "3.4K")

	assert.Contains(t, StatsLine(source.HotItem{Views: source.IntPtr(999)}), "999")
}

func TestReportWritesFile(t *testing.T) {
	dir := t.TempDir()
	r := New(source.NewClient(""), Options{}, dir)

	path, err := r.Report(t.Context(), "测试报告", testPicks(), nil)
	require.NoError(t, err)
	assert.FileExists(t, path)
}
