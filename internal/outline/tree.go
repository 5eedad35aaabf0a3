package outline

import (
	"math"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/pdfdoc"
	"github.com/dgallion1/docoutline/internal/textnorm"
)

// BuildTree nests flat outline entries by level. An entry becomes a child of
// the closest preceding entry with a lower level; level gaps are accepted.
// Titles are punctuation-normalized. Content is left empty.
func BuildTree(entries []pdfdoc.TOCEntry) doctree.Forest {
	type stackEntry struct {
		children *[]*doctree.Node
		level    int
	}

	roots := []*doctree.Node{}
	stack := []stackEntry{{children: &roots, level: math.MinInt}}

	for _, e := range entries {
		for len(stack) > 1 && stack[len(stack)-1].level >= e.Level {
			stack = stack[:len(stack)-1]
		}
		node := &doctree.Node{
			Title:    textnorm.Punctuation(e.Title),
			Page:     e.Page,
			Children: []*doctree.Node{},
		}
		top := stack[len(stack)-1].children
		*top = append(*top, node)
		stack = append(stack, stackEntry{children: &node.Children, level: e.Level})
	}

	return doctree.Forest(roots)
}
