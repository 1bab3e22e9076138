package source

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	viewsNoiseRe   = regexp.MustCompile(`(?i)\bviews?\b`)
	compactRe      = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)([kmb])?$`)
	cnCompactRe    = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)(万|亿|w)$`)
	firstIntRe     = regexp.MustCompile(`\d+`)
	percentRe      = regexp.MustCompile(`(\d{1,3})\s*%`)
)

var suffixMult = map[string]int{
	"k": 1_000,
	"m": 1_000_000,
	"b": 1_000_000_000,
	"万": 10_000,
	"w": 10_000,
	"亿": 100_000_000,
}

// ParseCompactInt turns human-formatted counters into an integer:
// "1.2K" -> 1200, "3M" -> 3000000, "5万" -> 50000, "1.2w" -> 12000.
// Label noise ("views", "观看", "播放") and separators are stripped first.
// Percentages are ratings, not counts, and yield nil. As a last resort the
// first run of digits wins. Unparseable input returns nil.
func ParseCompactInt(value string) *int {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil
	}

	s = viewsNoiseRe.ReplaceAllString(s, "")
	for _, noise := range []string{"次观看", "观看", "播放", ",", " "} {
		s = strings.ReplaceAll(s, noise, "")
	}

	if strings.HasSuffix(s, "%") {
		return nil
	}

	if m := compactRe.FindStringSubmatch(s); m != nil {
		return scaled(m[1], m[2])
	}
	if m := cnCompactRe.FindStringSubmatch(s); m != nil {
		return scaled(m[1], m[2])
	}

	if digits := firstIntRe.FindString(s); digits != "" {
		if v, err := strconv.Atoi(digits); err == nil {
			return &v
		}
	}
	return nil
}

func scaled(num, suffix string) *int {
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return nil
	}
	mult := 1
	if suffix != "" {
		if m, ok := suffixMult[strings.ToLower(suffix)]; ok {
			mult = m
		}
	}
	v := int(f * float64(mult))
	return &v
}

// ParsePercentInt extracts a percentage like "87%" clamped to 0..100.
// Input with no percent sign returns nil.
func ParsePercentInt(value string) *int {
	m := percentRe.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	if v > 100 {
		v = 100
	}
	if v < 0 {
		v = 0
	}
	return &v
}
