package schema

import (
	"sort"
	"unicode/utf8"
)

// lineIndex holds the byte offset at which each line starts.
type lineIndex []int

func newLineIndex(data []byte) lineIndex {
	index := lineIndex{0}
	for i, b := range data {
		if b == '\n' {
			index = append(index, i+1)
		}
	}
	return index
}

// position converts a byte offset to a zero-based line and a UTF-16 column.
func (l lineIndex) position(data []byte, offset int) (int, int) {
	line := sort.Search(len(l), func(i int) bool { return l[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	column := 0
	for rest := data[l[line]:offset]; len(rest) > 0; {
		r, size := utf8.DecodeRune(rest)
		if r >= 0x10000 {
			column += 2
		} else {
			column++
		}
		rest = rest[size:]
	}
	return line, column
}
