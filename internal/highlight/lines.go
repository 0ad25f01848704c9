package highlight

import (
	"strings"
	"unicode/utf8"
)

// lineIndex holds the start offset and length of every line of a text,
// splitting on '\n' only.
type lineIndex struct {
	starts  []int
	lengths []int
}

func newLineIndex(text string) lineIndex {
	idx := lineIndex{}
	offset := 0
	for {
		idx.starts = append(idx.starts, offset)
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			idx.lengths = append(idx.lengths, len(text)-offset)
			return idx
		}
		idx.lengths = append(idx.lengths, nl)
		offset += nl + 1
	}
}

func (l lineIndex) count() int {
	return len(l.starts)
}

// clamp converts a 1-indexed line number into a valid 0-indexed line.
func (l lineIndex) clamp(lineStart int) int {
	line := lineStart - 1
	if line > l.count()-1 {
		line = l.count() - 1
	}
	if line < 0 {
		line = 0
	}
	return line
}

// offset returns the byte offset where the 1-indexed line begins, after clamping.
func (l lineIndex) offset(lineStart int) int {
	return l.starts[l.clamp(lineStart)]
}

// prefixLen returns the byte length of the first maxRunes characters of
// the line, never splitting a UTF-8 sequence.
func (l lineIndex) prefixLen(text string, lineStart, maxRunes int) int {
	line := l.clamp(lineStart)
	rest := text[l.starts[line] : l.starts[line]+l.lengths[line]]
	n := 0
	for i := 0; i < maxRunes && n < len(rest); i++ {
		_, size := utf8.DecodeRuneInString(rest[n:])
		n += size
	}
	return n
}
