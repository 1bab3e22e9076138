package source

import "strings"

// Section keys. "all" is a meta key meaning every section.
const (
	Section3D   = "3d"
	Section25D  = "2.5d"
	SectionReal = "real"
	SectionAll  = "all"
)

// SectionInfo pairs a section key with its display name.
type SectionInfo struct {
	Key     string `json:"key"`
	Display string `json:"display"`
}

// AllSections returns the real sections in report order. "all" is not
// included, it is an alias that expands to these.
func AllSections() []SectionInfo {
	return []SectionInfo{
		{Key: Section3D, Display: "3D"},
		{Key: Section25D, Display: "2.5D"},
		{Key: SectionReal, Display: "真人"},
	}
}

var sectionAliases = map[string]string{
	"3d": Section3D, "3d区": Section3D, "3d专区": Section3D, "3d分区": Section3D, "3d榜": Section3D,
	"2.5d": Section25D, "2d": Section25D, "2.5d区": Section25D, "2.5d专区": Section25D,
	"2.5d分区": Section25D, "2.5d榜": Section25D,
	"real": SectionReal, "真人": SectionReal, "真人区": SectionReal, "真人专区": SectionReal,
	"真人分区": SectionReal, "真人榜": SectionReal,
	"all": SectionAll, "全部": SectionAll, "综合": SectionAll, "总榜": SectionAll,
}

// NormalizeSection maps user input (aliases, mixed case, localized names) to a
// canonical section key. Unknown input returns "". Normalizing an already
// canonical key returns it unchanged.
func NormalizeSection(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return ""
	}
	if key, ok := sectionAliases[v]; ok {
		return key
	}
	return ""
}

// SectionDisplay returns the display name for a section key, or the key
// itself when unknown.
func SectionDisplay(key string) string {
	for _, s := range AllSections() {
		if s.Key == key {
			return s.Display
		}
	}
	return key
}

// ExpandSection resolves "all" to the full section list; a concrete key maps
// to itself. Unknown input yields nil.
func ExpandSection(key string) []string {
	switch key {
	case SectionAll:
		keys := make([]string, 0, 3)
		for _, s := range AllSections() {
			keys = append(keys, s.Key)
		}
		return keys
	case Section3D, Section25D, SectionReal:
		return []string{key}
	}
	return nil
}
