package validators

import "strings"

// SanitizeString trims surrounding whitespace and caps the value at
// maxLen runes. Register ids, barcodes and sale notes all pass through
// here before they reach a service; the cap counts runes so a note
// never gets cut mid-character.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 {
		return trimmed
	}
	runes := []rune(trimmed)
	if len(runes) <= maxLen {
		return trimmed
	}
	return strings.TrimSpace(string(runes[:maxLen]))
}
