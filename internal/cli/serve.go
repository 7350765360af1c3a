package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datasheet/internal/core"
	"github.com/JonMunkholm/datasheet/internal/metrics"
	"github.com/JonMunkholm/datasheet/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		db   string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload page and JSON API",
		Long: `Starts the HTTP server. Without a database target the server still
previews files and runs dry-run imports; committed imports then report
that no target is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if db != "" {
				a.cfg.Database.Target = db
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&db, "db", "", "SQLite path or postgres:// URL (default from config)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from config)")
	return cmd
}

func (a *app) serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("configuration loaded", "config", a.cfg.String())

	var persister core.Persister
	if a.cfg.Database.Target != "" {
		st, err := a.openStore(ctx, a.cfg.Database.Target)
		if err != nil {
			return err
		}
		defer st.Close()
		persister = st
	} else {
		slog.Warn("no database target configured, commits will fail")
	}

	reg := prometheus.NewRegistry()
	service := core.NewService(persister, core.WithRecorder(metrics.New(reg)))
	server := web.NewServer(service, a.cfg, metrics.Handler(reg))

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("shutdown error", "error", err)
		return err
	}
	return <-errCh
}
