// Package render writes an outline forest in one of the export formats.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// ErrUnknownFormat is returned by ForFormat for names it does not know.
var ErrUnknownFormat = errors.New("unknown output format")

// Renderer writes a titled outline forest to w.
type Renderer interface {
	Render(w io.Writer, title string, forest doctree.Forest) error
	ContentType() string
	Extension() string
}

// Formats lists the canonical format names in the order they are offered.
var Formats = []string{"json", "yaml", "markdown", "html", "docx"}

// ForFormat returns the renderer for a format name or common alias.
func ForFormat(name string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return &JSONRenderer{}, nil
	case "yaml", "yml":
		return &YAMLRenderer{}, nil
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	case "html", "htm":
		return &HTMLRenderer{}, nil
	case "docx":
		return &DOCXRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
}

// headingLevel maps a tree depth to a heading level, capped at 6.
func headingLevel(depth int) int {
	return min(depth+1, 6)
}

// contentLines splits section content into non-blank, trimmed lines.
func contentLines(content string) []string {
	var out []string
	for _, l := range strings.Split(content, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
