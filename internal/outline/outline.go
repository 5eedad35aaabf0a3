// Package outline rebuilds a document's outline as a tree and assigns each
// section the body text that belongs to it.
//
// A pass runs in order: read the outline, profile font sizes to find the
// body font, extract and normalize body text, nest the outline, measure how
// many titles occur in the text, then segment by paragraph offsets when all
// of them do and by page ranges otherwise.
package outline

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/pdfdoc"
	"github.com/dgallion1/docoutline/internal/textnorm"
)

// Result is the outcome of one pass over a document.
type Result struct {
	Forest    doctree.Forest    `json:"outline"`
	Entries   []pdfdoc.TOCEntry `json:"-"`
	Titles    []string          `json:"-"`
	Text      string            `json:"-"`
	Histogram []FontCount       `json:"font_histogram"`
	BodyFont  float64           `json:"body_font"`
	Accuracy  float64           `json:"accuracy"`
	Strategy  Strategy          `json:"strategy,omitempty"`
}

// Empty reports whether the document produced no outline at all, which is
// the case for documents without a table of contents.
func (r *Result) Empty() bool {
	return len(r.Forest) == 0
}

// Builder runs outline passes. Every stage opens its own document handle
// through the Opener and closes it before the next stage starts.
type Builder struct {
	open pdfdoc.Opener
	log  *slog.Logger
}

// NewBuilder creates a Builder. A nil logger discards output.
func NewBuilder(open pdfdoc.Opener, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Builder{open: open, log: log}
}

// Build runs the whole pass over the document at path.
func (b *Builder) Build(path string) (*Result, error) {
	res, loc, err := b.prepare(path)
	if err != nil || res.Empty() {
		return res, err
	}

	switch res.Strategy {
	case StrategyParagraph:
		SegmentByParagraph(res.Forest, res.Text, res.Titles)
	case StrategyPageRange:
		if err := b.segmentPages(path, res.Forest, loc, res.BodyFont, res.Titles); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Inspect runs every stage up to strategy selection and leaves node content
// empty.
func (b *Builder) Inspect(path string) (*Result, error) {
	res, _, err := b.prepare(path)
	return res, err
}

func (b *Builder) prepare(path string) (*Result, *Locator, error) {
	log := b.log.With("path", path)

	entries, err := b.readTOC(path)
	if err != nil {
		return nil, nil, err
	}
	loc := NewLocator(entries)
	first, ok := loc.FirstPage()
	if !ok {
		log.Info("document has no outline")
		return &Result{Forest: doctree.Forest{}}, loc, nil
	}

	hist, err := b.profile(path, first)
	if err != nil {
		return nil, nil, err
	}
	body, err := hist.BodyFont()
	if err != nil {
		return nil, nil, fmt.Errorf("profile fonts from page %d: %w", first, err)
	}
	log.Debug("profiled fonts", "sizes", hist.Len(), "body_font", body)

	blocks, err := b.extract(path, body, PageRange{From: first})
	if err != nil {
		return nil, nil, err
	}
	text := textnorm.Punctuation(textnorm.CollapseNewlines(strings.Join(blocks, "\n")))

	forest := BuildTree(entries)
	titles := forest.Titles()
	accuracy := Accuracy(titles, text)
	strategy := ChooseStrategy(accuracy)
	log.Info("outline prepared",
		"entries", len(entries),
		"blocks", len(blocks),
		"accuracy", accuracy,
		"strategy", strategy,
	)

	return &Result{
		Forest:    forest,
		Entries:   entries,
		Titles:    titles,
		Text:      text,
		Histogram: hist.Buckets(),
		BodyFont:  body,
		Accuracy:  accuracy,
		Strategy:  strategy,
	}, loc, nil
}

func (b *Builder) readTOC(path string) ([]pdfdoc.TOCEntry, error) {
	doc, err := b.open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	entries, err := doc.TOC()
	if err != nil {
		return nil, fmt.Errorf("read outline: %w", err)
	}
	return entries, nil
}

func (b *Builder) profile(path string, first int) (*Histogram, error) {
	doc, err := b.open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	return Profile(doc, first), nil
}

func (b *Builder) extract(path string, body float64, r PageRange) ([]string, error) {
	doc, err := b.open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	return ExtractBlocks(doc, body, r), nil
}

func (b *Builder) segmentPages(path string, forest doctree.Forest, loc *Locator, body float64, titles []string) error {
	doc, err := b.open(path)
	if err != nil {
		return err
	}
	defer doc.Close()

	SegmentByPageRange(forest, doc, loc, body, titles)
	return nil
}
