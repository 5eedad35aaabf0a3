package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/store"
	"github.com/dgallion1/docoutline/internal/version"
)

var (
	cfgFile  string
	logLevel string

	// cfg is loaded before any subcommand runs.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "docoutline",
	Short: "Rebuild a PDF's table of contents as a tree of sections with their text",
	Long: `docoutline reads a PDF's outline (bookmarks), works out which font size
is body text, and assigns every outline entry the body text of its section.

Sections are cut by title position in the text when every title can be found
there, and by page ranges from the outline otherwise.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if f := cmd.Flag("log-level"); f != nil && f.Changed {
			loaded.LogLevel = logLevel
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("docoutline %s\n", version.String()))

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./docoutline.yaml or ~/.docoutline/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)",
	)
}

// newLogger returns a JSON logger for long-running services and a text
// logger otherwise, at the configured level.
func newLogger(w io.Writer, json bool) *slog.Logger {
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openCache opens the configured outline cache. It returns a nil store when
// caching is disabled.
func openCache(enabled bool) (*store.Store, func(), error) {
	if !enabled || cfg.CachePath == "" {
		return nil, func() {}, nil
	}
	s, err := store.Open(os.ExpandEnv(cfg.CachePath))
	if err != nil {
		return nil, nil, err
	}
	return s, func() { s.Close() }, nil
}
