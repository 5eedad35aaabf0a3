package pdfdoc

import "fmt"

// Memory is a Document backed by already-parsed pages and outline entries.
type Memory struct {
	Pages   []Page
	Entries []TOCEntry

	closed int
}

// NumPages returns the number of pages.
func (m *Memory) NumPages() int { return len(m.Pages) }

// Page returns page n (one-based).
func (m *Memory) Page(n int) (Page, error) {
	if n < 1 || n > len(m.Pages) {
		return Page{}, fmt.Errorf("page %d out of range [1, %d]", n, len(m.Pages))
	}
	p := m.Pages[n-1]
	if p.Number == 0 {
		p.Number = n
	}
	return p, nil
}

// TOC returns the outline entries.
func (m *Memory) TOC() ([]TOCEntry, error) { return m.Entries, nil }

// Close records the release of the handle.
func (m *Memory) Close() error {
	m.closed++
	return nil
}

// Closed reports how many times Close has been called.
func (m *Memory) Closed() int { return m.closed }
