package jsonc

import "bytes"

// Strip turns JSONC into JSON by blanking out the comments and the trailing
// commas. The result has the length and the line breaks of the source, so an
// offset reported by the JSON decoder points into the source as well.
func Strip(src []byte) []byte {
	dst := make([]byte, len(src))
	copy(dst, src)
	comma := -1
	for i := 0; i < len(dst); i++ {
		switch dst[i] {
		case '"':
			comma = -1
			i = stringEnd(dst, i)
		case '/':
			end := commentEnd(dst, i)
			if end < 0 {
				comma = -1
				continue
			}
			blank(dst[i:end])
			i = end - 1
		case ',':
			comma = i
		case '}', ']':
			if comma >= 0 {
				dst[comma] = ' '
			}
			comma = -1
		case ' ', '\t', '\r', '\n':
		default:
			comma = -1
		}
	}
	return dst
}

// Position returns the 1-based line and column of the byte offset.
func Position(src []byte, offset int) (line int, column int) {
	if offset > len(src) {
		offset = len(src)
	}
	if offset < 0 {
		offset = 0
	}
	head := src[:offset]
	line = bytes.Count(head, []byte{'\n'}) + 1
	column = offset - (bytes.LastIndexByte(head, '\n') + 1) + 1
	return
}

// stringEnd returns the index of the closing quote of the string at i.
func stringEnd(src []byte, i int) int {
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '"':
			return j
		}
	}
	return len(src) - 1
}

// commentEnd returns the end of the comment at i, or -1 if there is none.
func commentEnd(src []byte, i int) int {
	if i+1 >= len(src) {
		return -1
	}
	switch src[i+1] {
	case '/':
		if j := bytes.IndexByte(src[i:], '\n'); j >= 0 {
			return i + j
		}
		return len(src)
	case '*':
		if j := bytes.Index(src[i+2:], []byte("*/")); j >= 0 {
			return i + 2 + j + 2
		}
		return len(src)
	}
	return -1
}

func blank(b []byte) {
	for i, c := range b {
		if c != '\n' && c != '\r' {
			b[i] = ' '
		}
	}
}
