package outline

import "github.com/dgallion1/docoutline/internal/doctree"

// SegmentByParagraph fills every node with the text between its title and
// the next title of the pre-order title list. titles must be
// forest.Titles(). Matching is case-insensitive and moves forward through
// the text, so a title is never matched before an earlier section.
func SegmentByParagraph(forest doctree.Forest, text string, titles []string) {
	folded := make([]string, len(titles))
	for i, t := range titles {
		folded[i] = foldString(t)
	}
	segmentParagraphs(forest, newFoldedText(text), folded, 0, 0)
}

// segmentParagraphs walks nodes in pre-order. idx is the position of the
// first node in the title list and cursor the offset searches start from.
// It returns the position after the last visited node and the cursor the
// following siblings continue from.
func segmentParagraphs(nodes []*doctree.Node, text *foldedText, titles []string, idx, cursor int) (int, int) {
	for _, node := range nodes {
		start := text.index(foldString(node.Title), cursor)

		end := -1
		if idx+1 < len(titles) {
			end = text.index(titles[idx+1], cursor)
		}

		if start >= 0 {
			node.Content = text.slice(start, end)
		} else {
			node.Content = ""
		}
		if end >= 0 {
			cursor = end
		}
		idx++

		if len(node.Children) > 0 {
			from := start
			if from < 0 {
				from = cursor
			}
			idx, cursor = segmentParagraphs(node.Children, text, titles, idx, from)
		}
	}
	return idx, cursor
}
