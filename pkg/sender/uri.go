package sender

import (
	"strings"
	"unicode"
)

// SanitizeURI returns the part of the value spanning the first to the last
// letter or digit, inclusive. Leading and trailing separators, whitespace
// or protocol fragments accidentally supplied by the caller are dropped,
// internal characters such as slashes and hyphens are preserved.
// A value without any letter or digit is not a usable URI and results
// in an InvalidURIError.
func SanitizeURI(value string) (string, error) {
	runes := []rune(value)
	begin := -1
	for i, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			begin = i
			break
		}
	}
	if begin < 0 {
		return "", &InvalidURIError{Value: value}
	}
	end := -1
	for i := len(runes) - 1; i >= 0; i-- {
		if unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) {
			end = i
			break
		}
	}
	return string(runes[begin : end+1]), nil
}

// ValidURI converts a request path to the "/path" form appended to the
// base URL: the path is sanitized and prefixed with exactly one slash.
// An empty or whitespace-only path yields an empty string, so a caller
// can target the bare base URL.
func ValidURI(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", nil
	}
	portion, err := SanitizeURI(trimmed)
	if err != nil {
		return "", err
	}
	return "/" + portion, nil
}
