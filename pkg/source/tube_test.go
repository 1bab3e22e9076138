package source

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tubeFixture = `<!DOCTYPE html>
<html><body>
<div class="list">
  <div class="card">
    <a href="/video/abc123/first-clip" title="First Clip">
      <img data-src="/thumbs/1.jpg" alt="First Clip">
    </a>
    <span class="meta">1.2M views 95% 10:31</span>
  </div>
  <div class="card">
    <a href="/video/def456/second-clip">
      <img src="/thumbs/2.jpg" alt="Second Clip">
    </a>
    <span class="meta">3,400 views</span>
  </div>
  <div class="card">
    <a href="/video/abc123/first-clip"><img src="/thumbs/dup.jpg" alt="dup"></a>
  </div>
  <a href="/category/other">not a video</a>
</div>
</body></html>`

func TestParseTubeList(t *testing.T) {
	patterns := []*regexp.Regexp{regexp.MustCompile(`/video/\w+/`)}
	items := ParseTubeList(tubeFixture, "https://example.com", "testsite", Section3D, patterns, 10)

	require.Len(t, items, 2, "duplicate URL and non-video link must be dropped")

	first := items[0]
	assert.Equal(t, "testsite", first.Source)
	assert.Equal(t, Section3D, first.Section)
	assert.Equal(t, "First Clip", first.Title)
	assert.Equal(t, "https://example.com/video/abc123/first-clip", first.URL)
	assert.Equal(t, "https://example.com/thumbs/1.jpg", first.CoverURL, "data-src wins over src")
	require.NotNil(t, first.Views)
	assert.Equal(t, 1_200_000, *first.Views)
	require.NotNil(t, first.Stars)
	assert.Equal(t, 95, *first.Stars)

	second := items[1]
	assert.Equal(t, "Second Clip", second.Title)
	require.NotNil(t, second.Views)
	assert.Equal(t, 3400, *second.Views)
}

func TestParseTubeListLimit(t *testing.T) {
	patterns := []*regexp.Regexp{regexp.MustCompile(`/video/\w+/`)}
	items := ParseTubeList(tubeFixture, "https://example.com", "testsite", Section3D, patterns, 1)
	assert.Len(t, items, 1)
}

func TestExtractCountsHeuristics(t *testing.T) {
	stars, views := ExtractCounts("5.6M 98% 11min")
	require.NotNil(t, views)
	assert.Equal(t, 5_600_000, *views)
	require.NotNil(t, stars)
	assert.Equal(t, 98, *stars)

	stars, views = ExtractCounts("12,345 views 678 likes")
	require.NotNil(t, views)
	assert.Equal(t, 12345, *views)
	require.NotNil(t, stars)
	assert.Equal(t, 678, *stars)

	stars, views = ExtractCounts("10:31")
	assert.Nil(t, stars)
	assert.Nil(t, views)
}
