package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/inbox"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pdfdoc"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/render"
)

var (
	watchOutDir       string
	watchSkipExisting bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Outline every PDF dropped into a directory",
	Long: `Watch outlines each PDF that appears in dir (default: watch_dir from config)
and writes <name>.<ext> in the configured output format next to it, or into
--out when given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.WatchDir
		if len(args) == 1 {
			dir = args[0]
		}
		if dir == "" {
			return fmt.Errorf("no directory to watch: pass one or set watch_dir")
		}
		outDir := watchOutDir
		if outDir == "" {
			outDir = cfg.OutputDir
		}
		if outDir != "" {
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}

		rend, err := render.ForFormat(cfg.OutputFormat)
		if err != nil {
			return err
		}
		log := newLogger(cmd.ErrOrStderr(), false)
		cache, closeCache, err := openCache(true)
		if err != nil {
			return err
		}
		defer closeCache()

		worker := pipeline.NewWorker(outline.NewBuilder(pdfdoc.Open, log), cache, log)
		handle := func(ctx context.Context, path string) error {
			data, err := os.ReadFile(path)
			if err != nil {
				return &pdfdoc.OpenError{Path: path, Err: err}
			}
			out, err := worker.Outline(ctx, filepath.Base(path), data)
			if err != nil {
				return err
			}

			target := outputPath(path, outDir, rend.Extension())
			f, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			if err := rend.Render(f, documentTitle(path), out.Forest); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ ")+filepath.Base(path)+dimStyle.Render(" → "+target))
			return nil
		}

		w := inbox.New(dir, inbox.Options{SkipExisting: watchSkipExisting, Logger: log})
		return w.Run(cmd.Context(), handle)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchOutDir, "out", "", "directory for outline files (default: next to each PDF)")
	watchCmd.Flags().BoolVar(&watchSkipExisting, "skip-existing", false, "ignore PDFs already in the directory at startup")
	rootCmd.AddCommand(watchCmd)
}

// outputPath places <name><ext> in outDir, or beside the PDF when outDir is
// empty.
func outputPath(pdfPath, outDir, ext string) string {
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(pdfPath)
	}
	return filepath.Join(dir, documentTitle(pdfPath)+ext)
}
