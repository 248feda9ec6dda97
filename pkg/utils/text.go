package utils

import "unicode/utf8"

// RuneBoundary returns the largest index <= n that does not split a UTF-8
// sequence in s. It returns len(s) when s is no longer than n.
func RuneBoundary(s string, n int) int {
	if n >= len(s) {
		return len(s)
	}
	if n <= 0 {
		return 0
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}
