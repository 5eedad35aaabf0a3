package outline

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/pdfdoc"
)

// SegmentByPageRange fills every node with the body text of the pages from
// its own start page up to, not including, the start page of the next title
// in the pre-order list. When both start on the same page that page is
// kept. The last title runs to the end of the document. A node whose title
// is not in the outline gets empty content.
func SegmentByPageRange(forest doctree.Forest, doc pdfdoc.Document, loc *Locator, body float64, titles []string) {
	idx := 0
	forest.Walk(func(node *doctree.Node, _ int) {
		node.Content = pageRangeContent(doc, loc, body, node.Title, titles, idx)
		idx++
	})
}

// SectionPages returns the page range assigned to the title at position idx
// of the pre-order title list.
func SectionPages(loc *Locator, titles []string, idx int) (PageRange, bool) {
	if idx < 0 || idx >= len(titles) {
		return PageRange{}, false
	}
	start, ok := loc.PageOf(titles[idx])
	if !ok {
		return PageRange{}, false
	}
	r := PageRange{From: start}
	if idx+1 < len(titles) {
		if next, ok := loc.PageOf(titles[idx+1]); ok {
			r.To = max(next, start+1)
		}
	}
	return r, true
}

func pageRangeContent(doc pdfdoc.Document, loc *Locator, body float64, title string, titles []string, idx int) string {
	if idx >= len(titles) || titles[idx] != title {
		return ""
	}
	r, ok := SectionPages(loc, titles, idx)
	if !ok {
		return ""
	}
	return strings.Join(ExtractBlocks(doc, body, r), "\n")
}
