package outline

import "github.com/dgallion1/docoutline/internal/pdfdoc"

func run(text string, size float64) pdfdoc.Run {
	return pdfdoc.Run{Text: text, Size: size}
}

func line(runs ...pdfdoc.Run) pdfdoc.Line {
	return pdfdoc.Line{Runs: runs}
}

func block(lines ...pdfdoc.Line) pdfdoc.Block {
	return pdfdoc.Block{Lines: lines}
}

// para is a single-line, single-run block.
func para(text string, size float64) pdfdoc.Block {
	return block(line(run(text, size)))
}

func page(blocks ...pdfdoc.Block) pdfdoc.Page {
	return pdfdoc.Page{Blocks: blocks}
}

// countingOpener hands out the same in-memory document and counts opens so
// tests can check that every handle is released.
type countingOpener struct {
	doc   *pdfdoc.Memory
	err   error
	opens int
}

func (c *countingOpener) open(path string) (pdfdoc.Document, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.opens++
	return c.doc, nil
}
