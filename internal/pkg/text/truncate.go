// Package text holds small string helpers for log and error messages.
package text

import (
	"strings"
	"unicode/utf8"
)

// Truncate 截断到最多 max 个字符并追加 "..."，不会切开多字节字符。
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

// Snippet flattens whitespace so a response body fits on one log line.
func Snippet(body []byte, max int) string {
	return Truncate(strings.Join(strings.Fields(string(body)), " "), max)
}
