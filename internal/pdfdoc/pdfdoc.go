// Package pdfdoc exposes a paged document as blocks of lines of font-sized
// text runs, plus its table of contents.
package pdfdoc

import "fmt"

// Run is a contiguous piece of text rendered in a single font size.
type Run struct {
	Text string  `json:"text"`
	Size float64 `json:"size"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Line is one baseline of runs, in reading order.
type Line struct {
	Runs []Run `json:"runs"`
}

// Block is a paragraph-like group of lines.
type Block struct {
	Lines []Line `json:"lines"`
}

// Page holds the layout blocks of a single one-based page.
type Page struct {
	Number int     `json:"number"`
	Blocks []Block `json:"blocks"`
}

// TOCEntry is one row of the document outline.
type TOCEntry struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	Page  int    `json:"page"`
}

// Document is an opened paged document. Pages are one-based.
type Document interface {
	NumPages() int
	Page(n int) (Page, error)
	TOC() ([]TOCEntry, error)
	Close() error
}

// Opener acquires a Document for a path. Every component that reads a
// document opens its own handle and closes it before returning.
type Opener func(path string) (Document, error)

// OpenError reports a document that could not be opened or parsed.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open document %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }
