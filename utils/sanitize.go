package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxErrorMessageLen = 2000

// SanitizeErrorMessage makes an error string safe to persist: invalid
// UTF-8 and NUL/control bytes are stripped, long messages truncated.
// Backend errors can embed raw response bodies, which MySQL text
// columns reject when they carry NUL bytes.
func SanitizeErrorMessage(msg string) string {
	msg = strings.ToValidUTF8(msg, "")

	var b strings.Builder
	b.Grow(len(msg))
	for _, r := range msg {
		if r == 0 || (unicode.IsControl(r) && r != '\n' && r != '\t') {
			continue
		}
		b.WriteRune(r)
	}

	out := strings.TrimSpace(b.String())
	if len(out) > maxErrorMessageLen {
		out = out[:maxErrorMessageLen]
		for !utf8.ValidString(out) {
			out = out[:len(out)-1]
		}
	}
	return out
}
