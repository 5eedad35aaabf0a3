package render

import (
	"fmt"
	"io"

	"github.com/dgallion1/docoutline/internal/doctree"
	"gopkg.in/yaml.v3"
)

// YAMLRenderer writes the forest as a YAML sequence.
type YAMLRenderer struct{}

func (r *YAMLRenderer) Render(w io.Writer, _ string, forest doctree.Forest) error {
	if forest == nil {
		forest = doctree.Forest{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(forest); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func (r *YAMLRenderer) ContentType() string { return "application/yaml" }
func (r *YAMLRenderer) Extension() string   { return ".yaml" }
