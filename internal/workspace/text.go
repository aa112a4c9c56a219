package workspace

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// wordPattern follows the editor's default word definition: numeric
// literals stay whole, everything else splits on punctuation and space.
var wordPattern = regexp.MustCompile(`(-?\d*\.\d\w*)|([^` + "`" + `~!@#$%^&*()=+\[{\]}\\|;:'",<>/?\s]+)`)

// WordAt returns the word touching offset, or "" when there is none. A
// word ending exactly at offset counts as touching it.
func WordAt(text string, offset int) string {
	if offset < 0 || offset > len(text) {
		return ""
	}
	for _, span := range wordPattern.FindAllStringIndex(text, -1) {
		if span[0] > offset {
			break
		}
		if offset <= span[1] {
			return text[span[0]:span[1]]
		}
	}
	return ""
}

// OffsetAt converts a zero-based line and UTF-16 character position into
// a byte offset, clamping to the line end and to the document end.
func OffsetAt(text string, line, character int) int {
	offset := 0
	for current := 0; current < line; current++ {
		index := strings.IndexByte(text[offset:], '\n')
		if index < 0 {
			return len(text)
		}
		offset += index + 1
	}
	for units := 0; units < character && offset < len(text); {
		r, size := utf8.DecodeRuneInString(text[offset:])
		if r == '\n' {
			break
		}
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
		offset += size
	}
	return offset
}

// PositionAt converts a byte offset to a zero-based line and UTF-16 character.
func PositionAt(text string, offset int) (int, int) {
	if offset > len(text) {
		offset = len(text)
	}
	line, character := 0, 0
	for _, r := range text[:offset] {
		switch {
		case r == '\n':
			line++
			character = 0
		case r >= 0x10000:
			character += 2
		default:
			character++
		}
	}
	return line, character
}
