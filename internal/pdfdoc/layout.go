package pdfdoc

import (
	"math"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

const (
	// baselineTolerance is the fraction of the font size two glyphs may
	// differ in Y and still share a line.
	baselineTolerance = 0.5
	// wordGapRatio is the horizontal gap, relative to font size, that
	// separates words when the PDF carries no explicit space glyph.
	wordGapRatio = 0.25
	// blockGapRatio is the line advance, relative to font size, above which
	// the next line opens a new block.
	blockGapRatio = 1.6
)

// groupBlocks turns glyphs in content-stream order into blocks of lines of
// runs. Lines break on baseline changes; runs break on font or size changes;
// blocks break on a large vertical gap, an upward jump or a size change
// between consecutive lines.
func groupBlocks(glyphs []pdflib.Text) []Block {
	var (
		blocks []Block
		cur    Block
		line   *lineBuilder
		prev   *lineBuilder
	)

	flushLine := func() {
		if line == nil || len(line.runs) == 0 {
			line = nil
			return
		}
		if prev != nil && startsNewBlock(prev, line) && len(cur.Lines) > 0 {
			blocks = append(blocks, cur)
			cur = Block{}
		}
		cur.Lines = append(cur.Lines, line.build())
		prev = line
		line = nil
	}

	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		if line != nil && !line.sameBaseline(g) {
			flushLine()
		}
		if line == nil {
			line = &lineBuilder{y: g.Y}
		}
		line.add(g)
	}
	flushLine()
	if len(cur.Lines) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

func startsNewBlock(prev, next *lineBuilder) bool {
	advance := prev.y - next.y
	if advance < 0 {
		return true
	}
	if math.Abs(prev.maxSize-next.maxSize) > 0.001 {
		return true
	}
	return advance > math.Max(prev.maxSize, next.maxSize)*blockGapRatio
}

type lineBuilder struct {
	runs    []Run
	texts   []*strings.Builder
	font    string
	y       float64
	maxSize float64
	endX    float64
}

func (l *lineBuilder) sameBaseline(g pdflib.Text) bool {
	tol := math.Max(l.maxSize, g.FontSize) * baselineTolerance
	if tol < 1 {
		tol = 1
	}
	return math.Abs(g.Y-l.y) <= tol
}

func (l *lineBuilder) add(g pdflib.Text) {
	n := len(l.runs)
	if n == 0 || l.runs[n-1].Size != g.FontSize || l.font != g.Font {
		l.runs = append(l.runs, Run{Size: g.FontSize, X: g.X, Y: g.Y})
		l.texts = append(l.texts, &strings.Builder{})
		l.font = g.Font
		n++
	} else if g.X-l.endX > g.FontSize*wordGapRatio {
		if !endsWithSpace(l.texts[n-1]) && !strings.HasPrefix(g.S, " ") {
			l.texts[n-1].WriteByte(' ')
		}
	}
	l.texts[n-1].WriteString(g.S)
	l.endX = g.X + g.W
	if g.FontSize > l.maxSize {
		l.maxSize = g.FontSize
	}
}

func (l *lineBuilder) build() Line {
	runs := make([]Run, len(l.runs))
	for i, r := range l.runs {
		r.Text = l.texts[i].String()
		runs[i] = r
	}
	return Line{Runs: runs}
}

func endsWithSpace(b *strings.Builder) bool {
	s := b.String()
	return s != "" && s[len(s)-1] == ' '
}
