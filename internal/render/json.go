package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// JSONRenderer writes the forest as a JSON array, indented four spaces,
// with non-ASCII text and HTML characters left unescaped.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, _ string, forest doctree.Forest) error {
	if forest == nil {
		forest = doctree.Forest{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(forest); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func (r *JSONRenderer) ContentType() string { return "application/json" }
func (r *JSONRenderer) Extension() string   { return ".json" }
