package js_parser

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// unquote decodes a quoted JavaScript string literal. Invalid escapes are
// kept as the escaped character.
func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	s := raw[1 : len(raw)-1]
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch c = s[i]; c {
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
		case 'v':
			sb.WriteByte('\v')
		case '0':
			sb.WriteByte(0)
		case '\r':
			// line continuation
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case '\n':
			// line continuation
		case 'x':
			if r, ok := parseHex(s, i+1, i+3); ok {
				sb.WriteRune(r)
				i += 2
			} else {
				sb.WriteByte(c)
			}
		case 'u':
			if i+1 < len(s) && s[i+1] == '{' {
				if end := strings.IndexByte(s[i:], '}'); end > 0 {
					if r, ok := parseHex(s, i+2, i+end); ok {
						sb.WriteRune(r)
						i += end
						continue
					}
				}
				sb.WriteByte(c)
			} else if r, ok := parseHex(s, i+1, i+5); ok {
				i += 4
				if utf16IsHighSurrogate(r) && i+6 < len(s) && s[i+1] == '\\' && s[i+2] == 'u' {
					if low, ok := parseHex(s, i+3, i+7); ok && low >= 0xDC00 && low <= 0xDFFF {
						r = (r-0xD800)<<10 + (low - 0xDC00) + 0x10000
						i += 6
					}
				}
				if !utf8.ValidRune(r) {
					r = utf8.RuneError
				}
				sb.WriteRune(r)
			} else {
				sb.WriteByte(c)
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func parseHex(s string, start int, end int) (rune, bool) {
	if start >= end || end > len(s) {
		return 0, false
	}
	n, err := strconv.ParseUint(s[start:end], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}

func utf16IsHighSurrogate(r rune) bool {
	return r >= 0xD800 && r <= 0xDBFF
}
