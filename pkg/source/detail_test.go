package source

import (
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFirst(t *testing.T) {
	content := `<span class="votes">1,234</span><span class="rating">92%</span>`
	votesRe := regexp.MustCompile(`class="votes">([\d,]+)<`)
	ratingRe := regexp.MustCompile(`class="rating">(\d+)%`)

	assert.Equal(t, "1,234", extractFirst(content, votesRe, ratingRe))
	assert.Equal(t, "92", extractFirst(content, ratingRe))
	assert.Equal(t, "", extractFirst(content, regexp.MustCompile(`nope-(\d+)`)))
}

func TestSampleItems(t *testing.T) {
	items := make([]HotItem, 10)
	for i := range items {
		items[i].URL = string(rune('a' + i))
	}

	rng := rand.New(rand.NewSource(1))
	picked := sampleItems(rng, items, 4)
	require.Len(t, picked, 4)

	seen := map[string]bool{}
	for _, it := range picked {
		assert.False(t, seen[it.URL], "duplicate pick %q", it.URL)
		seen[it.URL] = true
	}

	// Fewer candidates than k returns them untouched.
	few := items[:3]
	assert.Equal(t, few, sampleItems(rng, few, 4))
}
