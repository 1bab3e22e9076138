package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHotItemScore(t *testing.T) {
	assert.Equal(t, 0, HotItem{}.Score())
	assert.Equal(t, 7000, HotItem{Views: IntPtr(1000)}.Score())
	assert.Equal(t, 300, HotItem{Stars: IntPtr(100)}.Score())
	assert.Equal(t, 7300, HotItem{Views: IntPtr(1000), Stars: IntPtr(100)}.Score())
}

func TestHotItemLess(t *testing.T) {
	low := HotItem{Views: IntPtr(10)}
	high := HotItem{Views: IntPtr(100)}
	assert.True(t, low.Less(high))
	assert.False(t, high.Less(low))

	// Equal scores (both 210), tie broken by raw views.
	viewsHeavy := HotItem{Views: IntPtr(30)}
	starsHeavy := HotItem{Stars: IntPtr(70)}
	assert.Equal(t, viewsHeavy.Score(), starsHeavy.Score())
	assert.True(t, starsHeavy.Less(viewsHeavy))
	assert.False(t, viewsHeavy.Less(starsHeavy))

	// Exact tie on both score and views is not Less either way.
	a := HotItem{Views: IntPtr(50)}
	b := HotItem{Views: IntPtr(50)}
	assert.False(t, a.Less(b))
	assert.False(t, b.Less(a))
}
