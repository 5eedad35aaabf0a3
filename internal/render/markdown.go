package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// MarkdownRenderer writes one ATX heading per node followed by its content.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(w io.Writer, title string, forest doctree.Forest) error {
	bw := bufio.NewWriter(w)
	writeMarkdown(bw, title, forest)
	return bw.Flush()
}

func (r *MarkdownRenderer) ContentType() string { return "text/markdown; charset=utf-8" }
func (r *MarkdownRenderer) Extension() string   { return ".md" }

// writeMarkdown shifts node headings down one level when a document title
// takes the top heading.
func writeMarkdown(w io.StringWriter, title string, forest doctree.Forest) {
	shift := 0
	if title != "" {
		w.WriteString("# " + escapeHeading(title) + "\n\n")
		shift = 1
	}
	forest.Walk(func(n *doctree.Node, depth int) {
		w.WriteString(strings.Repeat("#", headingLevel(depth+shift)) + " " + escapeHeading(n.Title) + "\n\n")
		lines := contentLines(n.Content)
		if len(lines) == 0 {
			return
		}
		for i, l := range lines {
			lines[i] = escapeLine(l)
		}
		w.WriteString(strings.Join(lines, "\n\n") + "\n\n")
	})
}

// inlineEscaper backslash-escapes characters that open inline Markdown
// constructs.
var inlineEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
	`&`, `\&`,
)

func escapeHeading(s string) string {
	return strings.ReplaceAll(inlineEscaper.Replace(s), "#", `\#`)
}

// escapeLine escapes a content line so it stays one plain paragraph: inline
// constructs anywhere, and heading, list or break markers at its start.
func escapeLine(s string) string {
	s = inlineEscaper.Replace(s)
	if s == "" {
		return s
	}
	switch s[0] {
	case '#', '+', '-', '=':
		return `\` + s
	}
	digits := 0
	for digits < len(s) && digits < 9 && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(s) && (s[digits] == '.' || s[digits] == ')') &&
		(digits+1 == len(s) || s[digits+1] == ' ') {
		return s[:digits] + `\` + s[digits:]
	}
	return s
}
