package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pdfdoc"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.pdf>",
	Short: "Show the font histogram, outline and chosen strategy without extracting sections",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		log := newLogger(cmd.ErrOrStderr(), false)

		pages, err := pdfdoc.PageCount(path)
		if err != nil {
			return err
		}
		res, err := outline.NewBuilder(pdfdoc.Open, log).Inspect(path)
		if err != nil {
			return err
		}

		if inspectJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "    ")
			enc.SetEscapeHTML(false)
			return enc.Encode(res)
		}
		printInspection(cmd.OutOrStdout(), path, pages, res)
		return nil
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the inspection as JSON")
	rootCmd.AddCommand(inspectCmd)
}

func printInspection(w io.Writer, path string, pages int, res *outline.Result) {
	fmt.Fprintln(w, titleStyle.Render(documentTitle(path))+" "+dimStyle.Render(fmt.Sprintf("(%d pages)", pages)))

	if res.Empty() {
		fmt.Fprintln(w, warnStyle.Render("no outline; nothing to segment"))
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Font sizes"))
	maxCount := 0
	for _, b := range res.Histogram {
		maxCount = max(maxCount, b.Count)
	}
	for _, b := range res.Histogram {
		bar := strings.Repeat("█", max(1, b.Count*30/max(1, maxCount)))
		row := fmt.Sprintf("%8.2f %6d %s", b.Size, b.Count, bar)
		if b.Size == res.BodyFont {
			fmt.Fprintln(w, highlightStyle.Render(row+"  body"))
			continue
		}
		fmt.Fprintln(w, dimStyle.Render(row))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Outline"))
	for _, e := range res.Entries {
		indent := strings.Repeat("  ", max(0, e.Level-1))
		found := successStyle.Render("✓")
		if !strings.Contains(res.Text, e.Title) {
			found = warnStyle.Render("✗")
		}
		fmt.Fprintf(w, "%s %s%s %s\n", found, indent, e.Title, dimStyle.Render(fmt.Sprintf("p.%d", e.Page)))
	}

	fmt.Fprintln(w)
	summary := []string{
		fmt.Sprintf("entries   %d", len(res.Entries)),
		fmt.Sprintf("accuracy  %.0f%%", res.Accuracy*100),
		fmt.Sprintf("strategy  %s", res.Strategy),
	}
	fmt.Fprintln(w, boxStyle.Render(strings.Join(summary, "\n")))
}
