package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/api"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pdfdoc"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve accepts PDF uploads on POST /api/outline, outlines them on a worker
pool, and serves job status and exports. Requests need a bearer token equal to
DOCOUTLINE_API_KEY.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != "" {
			cfg.Port = servePort
		}
		if err := cfg.ValidateServe(); err != nil {
			return err
		}
		log := newLogger(os.Stdout, true)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		cache, closeCache, err := openCache(true)
		if err != nil {
			return err
		}
		defer closeCache()

		// Initialize pipeline.
		worker := pipeline.NewWorker(outline.NewBuilder(pdfdoc.Open, log), cache, log)
		orch := pipeline.NewOrchestrator(cfg, worker, cache, log)
		orch.Start(ctx)

		// Initialize HTTP server.
		srv := api.NewServer(orch, cache, log, cfg)
		httpServer := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      srv,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Graceful shutdown.
		go func() {
			<-ctx.Done()
			log.Info("shutting down...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpServer.Shutdown(shutdownCtx)
		}()

		log.Info("starting docoutline", "port", cfg.Port, "workers", cfg.WorkerCount, "cache", cfg.CachePath != "")
		err = httpServer.ListenAndServe()
		cancel()
		orch.Stop()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
