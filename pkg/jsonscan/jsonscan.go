// Package jsonscan reads values out of JSON-like text without parsing it.
//
// Model replies and provider envelopes are untrusted: they may wrap JSON in
// prose, leave strings unterminated or nest arrays the caller does not care
// about. The scanner locates keys by text search and decodes only the value it
// is asked for, so damage elsewhere in the input does not prevent extraction.
// Every function is total: malformed input yields "not found", never a panic.
package jsonscan

import (
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// FindKey returns the index just past the colon that follows the first
// occurrence of "key" at or after from, or -1. Occurrences not followed by a
// colon (for example the key text appearing as a value) are skipped.
func FindKey(s, key string, from int) int {
	if from < 0 {
		from = 0
	}
	pattern := `"` + key + `"`
	for from <= len(s) {
		i := strings.Index(s[from:], pattern)
		if i < 0 {
			return -1
		}
		j := skipSpace(s, from+i+len(pattern))
		if j < len(s) && s[j] == ':' {
			return j + 1
		}
		from += i + 1
	}
	return -1
}

// ReadString decodes the string literal whose opening quote is at s[i]. It
// returns the decoded text and the index just past the closing quote. An
// unterminated literal yields the text read up to the end of s.
func ReadString(s string, i int) (string, int, bool) {
	if i < 0 || i >= len(s) || s[i] != '"' {
		return "", i, false
	}

	var sb strings.Builder
	for j := i + 1; j < len(s); {
		c := s[j]
		switch c {
		case '"':
			return sb.String(), j + 1, true
		case '\\':
			if j+1 >= len(s) {
				return sb.String(), len(s), true
			}
			j = readEscape(s, j+1, &sb)
		default:
			sb.WriteByte(c)
			j++
		}
	}
	return sb.String(), len(s), true
}

// readEscape decodes the escape whose letter is at s[j] and returns the index
// after it.
func readEscape(s string, j int, sb *strings.Builder) int {
	switch s[j] {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'u':
		r, ok := hex4(s, j+1)
		if !ok {
			sb.WriteByte('u')
			return j + 1
		}
		next := j + 5
		if utf16.IsSurrogate(r) {
			if lo, ok := lowSurrogate(s, next); ok {
				r = utf16.DecodeRune(r, lo)
				next += 6
			} else {
				r = unicode.ReplacementChar
			}
		}
		sb.WriteRune(r)
		return next
	default:
		// \" \\ \/ and unknown escapes keep the escaped character.
		_, size := utf8.DecodeRuneInString(s[j:])
		sb.WriteString(s[j : j+size])
		return j + size
	}
	return j + 1
}

func lowSurrogate(s string, i int) (rune, bool) {
	if i+1 >= len(s) || s[i] != '\\' || s[i+1] != 'u' {
		return 0, false
	}
	r, ok := hex4(s, i+2)
	if !ok || r < 0xDC00 || r > 0xDFFF {
		return 0, false
	}
	return r, true
}

func hex4(s string, i int) (rune, bool) {
	if i+4 > len(s) {
		return 0, false
	}
	var r rune
	for _, c := range []byte(s[i : i+4]) {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			r |= rune(c-'A') + 10
		default:
			return 0, false
		}
	}
	return r, true
}

// StringField returns the string value of the first key occurrence whose value
// is a string literal.
func StringField(s, key string) (string, bool) {
	for from := 0; ; {
		i := FindKey(s, key, from)
		if i < 0 {
			return "", false
		}
		i = skipSpace(s, i)
		if v, _, ok := ReadString(s, i); ok {
			return v, true
		}
		from = i
	}
}

// Value returns the value of key as text. A quoted value is decoded; a bare
// value is the token up to the next ',', '}', ']' or whitespace. An empty bare
// token counts as absent.
func Value(s, key string) (string, bool) {
	i := FindKey(s, key, 0)
	if i < 0 {
		return "", false
	}
	i = skipSpace(s, i)
	if i >= len(s) {
		return "", false
	}
	if s[i] == '"' {
		v, _, ok := ReadString(s, i)
		return v, ok
	}

	end := i
	for end < len(s) {
		c := s[end]
		if c == ',' || c == '}' || c == ']' || isSpace(c) {
			break
		}
		end++
	}
	if end == i {
		return "", false
	}
	return s[i:end], true
}

// ArrayField returns the bracketed array that follows key, brackets included.
// Nesting is tracked by counting '[' and ']'. A missing key, a missing '[' or
// an array that never closes all report false.
func ArrayField(s, key string) (string, bool) {
	i := FindKey(s, key, 0)
	if i < 0 {
		return "", false
	}
	start := strings.IndexByte(s[i:], '[')
	if start < 0 {
		return "", false
	}
	start += i

	depth := 0
	for j := start; j < len(s); j++ {
		switch s[j] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : j+1], true
			}
		}
	}
	return "", false
}

// NextObject returns the span of the next object at or after from: the first
// '{' and the first '}' after it. The end index is exclusive.
func NextObject(s string, from int) (start, end int, ok bool) {
	if from < 0 {
		from = 0
	}
	if from >= len(s) {
		return 0, 0, false
	}
	open := strings.IndexByte(s[from:], '{')
	if open < 0 {
		return 0, 0, false
	}
	open += from
	closing := strings.IndexByte(s[open+1:], '}')
	if closing < 0 {
		return 0, 0, false
	}
	return open, open + 1 + closing + 1, true
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
