package render

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/yuin/goldmark"
)

// HTMLRenderer converts the Markdown rendering to a standalone HTML page.
type HTMLRenderer struct{}

func (r *HTMLRenderer) Render(w io.Writer, title string, forest doctree.Forest) error {
	var src bytes.Buffer
	writeMarkdown(&src, "", forest)

	var body bytes.Buffer
	if err := goldmark.New().Convert(src.Bytes(), &body); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}

	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(title), body.Bytes())
	return err
}

func (r *HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }
func (r *HTMLRenderer) Extension() string   { return ".html" }
