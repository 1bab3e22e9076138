package source

import "sort"

// Manual-only sources can be fetched on demand but never join scheduled
// ranking, regardless of config.
var manualOnly = map[string]bool{
	"hqporner": true,
	"missav":   true,
}

// Info is a diagnostic snapshot of one registered adapter.
type Info struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Sections    []string `json:"sections"`
	Enabled     bool     `json:"enabled"`
	ManualOnly  bool     `json:"manual_only"`
}

// EnabledFunc reports whether a source id is switched on in config.
type EnabledFunc func(id string) bool

// Registry holds every adapter keyed by id.
type Registry struct {
	adapters map[string]Adapter
	enabled  EnabledFunc
}

// NewRegistry builds a registry over the given adapters. enabled decides
// which sources participate in scheduled fetches; nil means none.
func NewRegistry(enabled EnabledFunc, adapters ...Adapter) *Registry {
	if enabled == nil {
		enabled = func(string) bool { return false }
	}
	m := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.ID()] = a
	}
	return &Registry{adapters: m, enabled: enabled}
}

// Get returns the adapter for id, or nil.
func (r *Registry) Get(id string) Adapter {
	return r.adapters[id]
}

// All returns every adapter, manual-only included, in id order.
func (r *Registry) All() []Adapter {
	out := make([]Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// EnabledFor returns the adapters that serve section, are enabled in config,
// and are not manual-only.
func (r *Registry) EnabledFor(section string) []Adapter {
	var out []Adapter
	for _, a := range r.All() {
		if manualOnly[a.ID()] {
			continue
		}
		if !r.enabled(a.ID()) {
			continue
		}
		if !Supports(a, section) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// List returns diagnostic info for every adapter, sorted by id.
func (r *Registry) List() []Info {
	var out []Info
	for _, a := range r.All() {
		secs := append([]string(nil), a.Sections()...)
		sort.Strings(secs)
		out = append(out, Info{
			ID:          a.ID(),
			DisplayName: a.DisplayName(),
			Sections:    secs,
			Enabled:     r.enabled(a.ID()),
			ManualOnly:  manualOnly[a.ID()],
		})
	}
	return out
}

// IsManualOnly reports whether id is excluded from scheduled ranking.
func IsManualOnly(id string) bool { return manualOnly[id] }
