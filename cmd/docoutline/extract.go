package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pdfdoc"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/render"
)

var (
	extractOutput  string
	extractFormat  string
	extractNoCache bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file.pdf>",
	Short: "Write a PDF's outline with the text of every section",
	Long: `Extract builds the outline tree of a PDF and writes it to stdout or to the
file given with -o. The default format is JSON: a list of nodes with title,
page, content and children.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		format := extractFormat
		if format == "" {
			format = cfg.OutputFormat
		}
		rend, err := render.ForFormat(format)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return &pdfdoc.OpenError{Path: path, Err: err}
		}

		log := newLogger(cmd.ErrOrStderr(), false)
		cache, closeCache, err := openCache(!extractNoCache)
		if err != nil {
			return err
		}
		defer closeCache()

		worker := pipeline.NewWorker(outline.NewBuilder(pdfdoc.Open, log), cache, log)
		out, err := worker.Outline(cmd.Context(), filepath.Base(path), data)
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if extractOutput != "" {
			f, err := os.Create(extractOutput)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			w = f
		}
		if err := rend.Render(w, documentTitle(path), out.Forest); err != nil {
			return err
		}

		if extractOutput != "" {
			printExtractSummary(cmd.ErrOrStderr(), path, extractOutput, out)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "output file (default: stdout)")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "", "output format: "+strings.Join(render.Formats, ", ")+" (default from config)")
	extractCmd.Flags().BoolVar(&extractNoCache, "no-cache", false, "skip the outline cache")

	rootCmd.AddCommand(extractCmd)
}

func documentTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func printExtractSummary(w io.Writer, in, out string, o *pipeline.Outcome) {
	if len(o.Forest) == 0 {
		fmt.Fprintln(w, warnStyle.Render("no outline found in "+in+"; wrote an empty tree"))
		return
	}
	source := "built"
	if o.Cached {
		source = "from cache"
	}
	lines := []string{
		titleStyle.Render(filepath.Base(in)) + " " + dimStyle.Render("→ "+out),
		fmt.Sprintf("sections  %d (depth %d)", o.Forest.Count(), o.Forest.Depth()),
		fmt.Sprintf("strategy  %s", o.Strategy),
		fmt.Sprintf("accuracy  %.0f%%", o.Accuracy*100),
		fmt.Sprintf("body font %.2f", o.BodyFont),
		successStyle.Render("✓ " + source),
	}
	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
}
