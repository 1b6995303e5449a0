package utils

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// NormalizeHex returns a lowercase "#rrggbb" form of a hex color, accepting
// input with or without the leading hash.
func NormalizeHex(hex string) string {
	trimmed := strings.TrimSpace(hex)
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, "#") {
		trimmed = "#" + trimmed
	}
	return strings.ToLower(trimmed)
}

// NormalizeHexSlice normalizes every color in a stop list so equivalent
// inputs ("FF0000", "#ff0000") persist identically.
func NormalizeHexSlice(stops []string) []string {
	if len(stops) == 0 {
		return nil
	}
	normalized := make([]string, len(stops))
	for i, stop := range stops {
		normalized[i] = NormalizeHex(stop)
	}
	return normalized
}

// ValidHex reports whether the value parses as an sRGB hex color.
func ValidHex(hex string) bool {
	normalized := NormalizeHex(hex)
	if len(normalized) != 7 {
		return false
	}
	_, err := colorful.Hex(normalized)
	return err == nil
}

// MidpointHex blends an ordered list of gradient stops down to the single
// swatch color shown in compact listings. A single stop is returned as-is.
func MidpointHex(stops []string) string {
	if len(stops) == 0 {
		return ""
	}
	if len(stops) == 1 {
		return NormalizeHex(stops[0])
	}

	first, err := colorful.Hex(NormalizeHex(stops[0]))
	if err != nil {
		return NormalizeHex(stops[0])
	}
	last, err := colorful.Hex(NormalizeHex(stops[len(stops)-1]))
	if err != nil {
		return NormalizeHex(stops[0])
	}

	return first.BlendLuv(last, 0.5).Clamped().Hex()
}
