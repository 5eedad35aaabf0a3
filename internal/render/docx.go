package render

import (
	"fmt"
	"io"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXRenderer writes a Word document with one HeadingN paragraph per node
// and one body paragraph per content line.
type DOCXRenderer struct{}

func (r *DOCXRenderer) Render(w io.Writer, title string, forest doctree.Forest) error {
	doc := docx.New().WithDefaultTheme()

	shift := 0
	if title != "" {
		doc.AddParagraph().Style("Title").AddText(title).Bold().Size("36")
		shift = 1
	}
	forest.Walk(func(n *doctree.Node, depth int) {
		style := fmt.Sprintf("Heading%d", headingLevel(depth+shift))
		doc.AddParagraph().Style(style).AddText(n.Title).Bold()
		for _, l := range contentLines(n.Content) {
			doc.AddParagraph().AddText(l)
		}
	})

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func (r *DOCXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}
func (r *DOCXRenderer) Extension() string { return ".docx" }
