package outline

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/dgallion1/docoutline/internal/pdfdoc"
)

// PageRange is a half-open range of one-based pages [From, To).
// To <= 0 means through the last page.
type PageRange struct {
	From int
	To   int
}

// Contains reports whether page n falls inside the range.
func (r PageRange) Contains(n int) bool {
	if n < r.From {
		return false
	}
	return r.To <= 0 || n < r.To
}

// ExtractBlocks returns one string per layout block on the pages in r,
// keeping only runs in the body font. Lines and blocks that read as a bare
// number (page numbers, footers) are dropped; every other block is kept,
// even when empty, so block positions stay aligned with the source.
// Pages that fail to load are skipped.
func ExtractBlocks(doc pdfdoc.Document, body float64, r PageRange) []string {
	var out []string
	from := r.From
	if from < 1 {
		from = 1
	}
	for n := from; n <= doc.NumPages() && r.Contains(n); n++ {
		page, err := doc.Page(n)
		if err != nil {
			continue
		}
		for _, block := range page.Blocks {
			text := blockText(block, body)
			if isNumber(text) {
				continue
			}
			out = append(out, text)
		}
	}
	return out
}

func blockText(block pdfdoc.Block, body float64) string {
	var sb strings.Builder
	for _, line := range block.Lines {
		var lb strings.Builder
		for _, run := range line.Runs {
			if isBodySize(run.Size, body) {
				lb.WriteString(run.Text)
			}
		}
		if lb.Len() == 0 || isNumber(lb.String()) {
			continue
		}
		sb.WriteString(lb.String())
	}
	return sb.String()
}

// isNumber reports whether s, trimmed, is a floating point literal.
// Full-width digits and signs count, as do out-of-range literals.
func isNumber(s string) bool {
	s = width.Narrow.String(strings.TrimSpace(s))
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil || errors.Is(err, strconv.ErrRange)
}
