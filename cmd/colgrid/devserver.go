package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/statementkit/colgrid/internal/devserver"
)

func devserverCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run a fake analysis backend with synthetic previews",
		Long: `Serves the backend API the editor talks to, with canned column
detection and synthetic parse results. Point the editor at it with
--backend to try colgrid without the real pipeline.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mux := http.NewServeMux()
			devserver.NewHandler().RegisterRoutes(mux)

			srv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			go func() {
				<-cmd.Context().Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			slog.Info("Dev server listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8099", "listen address")
	return cmd
}
