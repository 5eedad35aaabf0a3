package pdfdoc

import (
	"errors"
	"fmt"
	"os"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// Outline reading needs neither pdfcpu's config.yml nor user fonts.
func init() {
	api.DisableConfigDir()
}

// File is a PDF on disk. Glyph text and font sizes come from ledongthuc/pdf;
// the outline comes from pdfcpu, which resolves bookmark destinations to
// page numbers.
type File struct {
	path   string
	f      *os.File
	reader *pdflib.Reader
}

// Open opens the PDF at path. Failures are reported as *OpenError.
func Open(path string) (Document, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	return &File{path: path, f: f, reader: reader}, nil
}

// NumPages returns the page count.
func (d *File) NumPages() int {
	return d.reader.NumPage()
}

// Page lays out page n (one-based) into blocks, lines and runs.
func (d *File) Page(n int) (page Page, err error) {
	total := d.reader.NumPage()
	if n < 1 || n > total {
		return Page{}, fmt.Errorf("page %d out of range [1, %d]", n, total)
	}
	p := d.reader.Page(n)
	if p.V.IsNull() {
		return Page{Number: n}, nil
	}

	// Malformed content streams panic inside the reader.
	defer func() {
		if r := recover(); r != nil {
			page = Page{}
			err = fmt.Errorf("read page %d: %v", n, r)
		}
	}()

	content := p.Content()
	return Page{Number: n, Blocks: groupBlocks(content.Text)}, nil
}

// TOC returns the bookmark tree flattened depth-first, top level = 1.
// A document without bookmarks has an empty TOC.
func (d *File) TOC() ([]TOCEntry, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("open for outline: %w", err)
	}
	defer f.Close()

	bookmarks, err := api.Bookmarks(f, nil)
	if err != nil {
		if errors.Is(err, api.ErrNoOutlines) {
			return nil, nil
		}
		return nil, fmt.Errorf("read outline: %w", err)
	}
	return flattenBookmarks(bookmarks, 1, nil), nil
}

// Close releases the underlying file.
func (d *File) Close() error {
	return d.f.Close()
}

func flattenBookmarks(bookmarks []pdfcpu.Bookmark, level int, out []TOCEntry) []TOCEntry {
	for _, bm := range bookmarks {
		out = append(out, TOCEntry{Level: level, Title: bm.Title, Page: bm.PageFrom})
		out = flattenBookmarks(bm.Kids, level+1, out)
	}
	return out
}

// PageCount returns the number of pages without laying any of them out.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &OpenError{Path: path, Err: err}
	}
	defer f.Close()

	n, err := api.PageCount(f, nil)
	if err != nil {
		return 0, &OpenError{Path: path, Err: err}
	}
	return n, nil
}
