package outline

import (
	"sort"
	"strings"
	"unicode"
)

// foldedText supports case-insensitive substring search with offsets that
// stay valid in the unfolded text. Offsets are rune indexes: lowercasing
// can change a rune's UTF-8 width, so byte offsets into the lowered copy
// would not line up with the source.
type foldedText struct {
	orig   []rune
	lower  string
	starts []int // byte offset in lower of each rune
}

func newFoldedText(s string) *foldedText {
	orig := []rune(s)
	var sb strings.Builder
	sb.Grow(len(s))
	starts := make([]int, len(orig))
	for i, r := range orig {
		starts[i] = sb.Len()
		sb.WriteRune(unicode.ToLower(r))
	}
	return &foldedText{orig: orig, lower: sb.String(), starts: starts}
}

func foldString(s string) string {
	return strings.Map(unicode.ToLower, s)
}

// index returns the rune offset of the first match of the folded needle at
// or after rune offset from, or -1.
func (t *foldedText) index(needle string, from int) int {
	if from < 0 {
		from = 0
	}
	if from > len(t.orig) {
		return -1
	}
	byteFrom := len(t.lower)
	if from < len(t.starts) {
		byteFrom = t.starts[from]
	}
	i := strings.Index(t.lower[byteFrom:], needle)
	if i < 0 {
		return -1
	}
	b := byteFrom + i
	return sort.SearchInts(t.starts, b)
}

// slice returns orig[start:end]; end < 0 means to the end of the text.
func (t *foldedText) slice(start, end int) string {
	if start < 0 || start > len(t.orig) {
		return ""
	}
	if end < 0 || end > len(t.orig) {
		end = len(t.orig)
	}
	if end < start {
		return ""
	}
	return string(t.orig[start:end])
}
