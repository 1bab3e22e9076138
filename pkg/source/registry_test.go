package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	id       string
	sections []string
	items    []HotItem
	err      error
}

func (f *fakeAdapter) ID() string          { return f.id }
func (f *fakeAdapter) DisplayName() string { return f.id }
func (f *fakeAdapter) Sections() []string  { return f.sections }
func (f *fakeAdapter) FetchHot(_ context.Context, section string, limit int) ([]HotItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !Supports(f, section) {
		return nil, nil
	}
	if len(f.items) > limit {
		return f.items[:limit], nil
	}
	return f.items, nil
}

func TestRegistryEnabledFor(t *testing.T) {
	enabled := map[string]bool{"alpha": true, "beta": true, "missav": true}
	reg := NewRegistry(
		func(id string) bool { return enabled[id] },
		&fakeAdapter{id: "alpha", sections: []string{Section3D}},
		&fakeAdapter{id: "beta", sections: []string{Section3D, SectionReal}},
		&fakeAdapter{id: "gamma", sections: []string{SectionReal}},
		&fakeAdapter{id: "missav", sections: []string{SectionReal}},
	)

	ids := func(adapters []Adapter) []string {
		var out []string
		for _, a := range adapters {
			out = append(out, a.ID())
		}
		return out
	}

	assert.Equal(t, []string{"alpha", "beta"}, ids(reg.EnabledFor(Section3D)))
	// gamma is disabled, missav is manual-only even though enabled.
	assert.Equal(t, []string{"beta"}, ids(reg.EnabledFor(SectionReal)))
	assert.Empty(t, reg.EnabledFor(Section25D))
}

func TestRegistryGetAndList(t *testing.T) {
	reg := NewRegistry(nil,
		&fakeAdapter{id: "zulu", sections: []string{Section3D}},
		&fakeAdapter{id: "alpha", sections: []string{SectionReal}},
	)

	require.NotNil(t, reg.Get("zulu"))
	assert.Nil(t, reg.Get("nope"))

	infos := reg.List()
	require.Len(t, infos, 2)
	assert.Equal(t, "alpha", infos[0].ID)
	assert.Equal(t, "zulu", infos[1].ID)
	assert.False(t, infos[0].Enabled)
}

func TestDefaultAdaptersManualOnly(t *testing.T) {
	assert.True(t, IsManualOnly("missav"))
	assert.True(t, IsManualOnly("hqporner"))
	assert.False(t, IsManualOnly("pornhub"))
}
