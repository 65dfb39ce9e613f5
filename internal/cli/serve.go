package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kouk/grawity-code/internal/database"
	"github.com/kouk/grawity-code/internal/router"

	"cdr.dev/slog/v3"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the presence table over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := database.InitReadOnly(cfg.Database)
			if err != nil {
				return err
			}
			defer closeDB(db)

			r := router.SetupRouter(cfg, database.NewSessionStore(db), a.clock, logger)
			srv := &http.Server{
				Addr:              cfg.Addr(),
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info(ctx, "server listening", slog.F("addr", srv.Addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			logger.Info(context.Background(), "shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "", "listen address")
	flags.Int("port", 0, "listen port")
	_ = a.v.BindPFlag("server.address", flags.Lookup("addr"))
	_ = a.v.BindPFlag("server.port", flags.Lookup("port"))
	return cmd
}
