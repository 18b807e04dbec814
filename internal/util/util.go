// Package util provides small helpers shared across the arena client.
package util

import (
	"strings"
	"unicode/utf16"
)

// RollingHash returns the 32-bit polynomial hash of s (h = h*31 + unit) over
// its UTF-16 code units, wrapping on overflow. Every peer must derive the
// same value from the same string, so this is the only hash used for
// team assignment and spawn selection.
func RollingHash(s string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(unit)
	}
	return h
}

// Bucket maps a hash onto [0, n) as abs(h) % n. n must be positive.
func Bucket(h int32, n int) int {
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v % int64(n))
}

// SanitizeName makes a display name safe to use in a file name.
func SanitizeName(s string) string {
	r := strings.NewReplacer(" ", "_", ":", "_", "/", "_", "\\", "_")
	return r.Replace(strings.TrimSpace(s))
}
