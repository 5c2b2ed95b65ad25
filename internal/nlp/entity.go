package nlp

import (
	"errors"
	"strings"
)

// ErrNoEntity means no marker word (or no text after it) was found.
var ErrNoEntity = errors.New("no customer name found")

// nameMarkers are tried in order; only the first occurrence of the first
// matching marker is honored. Text before the marker is discarded.
var nameMarkers = []string{"customer", "for"}

// ExtractCustomerName pulls a customer-name search fragment out of free text.
// Marker matching is case-insensitive but the remainder keeps its original
// casing: "orders for John Smith" yields "John Smith". This is intentionally
// naive first-marker splitting, not tokenization; the search fragment is used
// as-is for substring matching downstream.
func ExtractCustomerName(text string) (string, error) {
	for _, marker := range nameMarkers {
		idx := indexFold(text, marker)
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(text[idx+len(marker):])
		if name == "" {
			return "", ErrNoEntity
		}
		return name, nil
	}
	return "", ErrNoEntity
}

// indexFold returns the byte offset in s of the first case-insensitive
// occurrence of marker, or -1. The marker must be lowercase ASCII. Matching
// byte-by-byte against s keeps the offset valid for slicing s itself; a
// whole-string ToLower can change byte lengths and shift offsets.
func indexFold(s, marker string) int {
	if len(marker) == 0 || len(s) < len(marker) {
		return -1
	}
	for i := 0; i <= len(s)-len(marker); i++ {
		if foldEqualASCII(s[i:i+len(marker)], marker) {
			return i
		}
	}
	return -1
}

func foldEqualASCII(s, lower string) bool {
	for i := 0; i < len(lower); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != lower[i] {
			return false
		}
	}
	return true
}
