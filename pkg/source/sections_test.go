package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSection(t *testing.T) {
	cases := map[string]string{
		"3d":      Section3D,
		"3D":      Section3D,
		" 3d区 ":   Section3D,
		"2.5d":    Section25D,
		"2d":      Section25D,
		"2.5D专区":  Section25D,
		"real":    SectionReal,
		"真人":      SectionReal,
		"真人榜":     SectionReal,
		"all":     SectionAll,
		"全部":      SectionAll,
		"总榜":      SectionAll,
		"":        "",
		"unknown": "",
		"4d":      "",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizeSection(input), "input %q", input)
	}
}

func TestNormalizeSectionIdempotent(t *testing.T) {
	for _, s := range AllSections() {
		assert.Equal(t, s.Key, NormalizeSection(s.Key))
	}
	assert.Equal(t, SectionAll, NormalizeSection(SectionAll))
}

func TestExpandSection(t *testing.T) {
	assert.Equal(t, []string{Section3D, Section25D, SectionReal}, ExpandSection(SectionAll))
	assert.Equal(t, []string{SectionReal}, ExpandSection(SectionReal))
	assert.Nil(t, ExpandSection("bogus"))
}

func TestSectionDisplay(t *testing.T) {
	assert.Equal(t, "3D", SectionDisplay(Section3D))
	assert.Equal(t, "真人", SectionDisplay(SectionReal))
	assert.Equal(t, "mystery", SectionDisplay("mystery"))
}
