package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pdfprep/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI and JSON API",
	Long: `Serve a single page for uploading a PDF and asking questions about it,
plus the equivalent JSON endpoints under /api.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	sessions := api.NewSessionStore(a.newSession, a.cfg.SessionMaxAge, a.cfg.MaxSessions, logger)
	srv, err := api.NewServer(sessions, a.cfg.AppPort, a.cfg.MaxUploadBytes(), logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}
