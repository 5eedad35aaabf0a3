package outline

import (
	"github.com/dgallion1/docoutline/internal/pdfdoc"
	"github.com/dgallion1/docoutline/internal/textnorm"
)

// Locator maps outline titles to the page they start on.
type Locator struct {
	entries []pdfdoc.TOCEntry
}

// NewLocator builds a locator over raw outline entries.
func NewLocator(entries []pdfdoc.TOCEntry) *Locator {
	return &Locator{entries: entries}
}

// FirstPage returns the page of the first outline entry. It reports false
// when the document has no outline.
func (l *Locator) FirstPage() (int, bool) {
	if len(l.entries) == 0 {
		return 0, false
	}
	return l.entries[0].Page, true
}

// PageOf returns the page of the first entry whose normalized title equals
// title exactly.
func (l *Locator) PageOf(title string) (int, bool) {
	for _, e := range l.entries {
		if textnorm.Punctuation(e.Title) == title {
			return e.Page, true
		}
	}
	return 0, false
}
