package outline

import (
	"errors"
	"math"

	"github.com/dgallion1/docoutline/internal/pdfdoc"
)

// ErrEmptyHistogram is returned when a body font is requested from a
// histogram that saw no text runs.
var ErrEmptyHistogram = errors.New("font histogram is empty")

// BodyFontTolerance is how far a run's size may be from the body font and
// still count as body text.
const BodyFontTolerance = 0.001

// FontCount is one histogram bucket.
type FontCount struct {
	Size  float64 `json:"size"`
	Count int     `json:"count"`
}

// Histogram counts text runs per font size, sizes rounded to 4 decimals.
// Buckets keep the order in which sizes were first seen.
type Histogram struct {
	buckets []FontCount
	index   map[float64]int
}

func newHistogram() *Histogram {
	return &Histogram{index: make(map[float64]int)}
}

func (h *Histogram) add(size float64) {
	size = roundSize(size)
	if i, ok := h.index[size]; ok {
		h.buckets[i].Count++
		return
	}
	h.index[size] = len(h.buckets)
	h.buckets = append(h.buckets, FontCount{Size: size, Count: 1})
}

// Len returns the number of distinct sizes.
func (h *Histogram) Len() int { return len(h.buckets) }

// Count returns the number of runs seen at size (after rounding).
func (h *Histogram) Count(size float64) int {
	if i, ok := h.index[roundSize(size)]; ok {
		return h.buckets[i].Count
	}
	return 0
}

// Buckets returns a copy of the buckets in first-seen order.
func (h *Histogram) Buckets() []FontCount {
	out := make([]FontCount, len(h.buckets))
	copy(out, h.buckets)
	return out
}

// BodyFont returns the most frequent size. Ties go to the size seen first.
func (h *Histogram) BodyFont() (float64, error) {
	if len(h.buckets) == 0 {
		return 0, ErrEmptyHistogram
	}
	best := h.buckets[0]
	for _, b := range h.buckets[1:] {
		if b.Count > best.Count {
			best = b
		}
	}
	return best.Size, nil
}

// Profile builds the font histogram over every run on pages firstPage
// onward. Pages that fail to load are skipped.
func Profile(doc pdfdoc.Document, firstPage int) *Histogram {
	h := newHistogram()
	if firstPage < 1 {
		firstPage = 1
	}
	for n := firstPage; n <= doc.NumPages(); n++ {
		page, err := doc.Page(n)
		if err != nil {
			continue
		}
		for _, block := range page.Blocks {
			for _, line := range block.Lines {
				for _, run := range line.Runs {
					h.add(run.Size)
				}
			}
		}
	}
	return h
}

func roundSize(size float64) float64 {
	return math.Round(size*1e4) / 1e4
}

func isBodySize(size, body float64) bool {
	return math.Abs(size-body) <= BodyFontTolerance
}
