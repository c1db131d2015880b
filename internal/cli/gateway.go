package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cache-viewer/internal/app"
	"cache-viewer/internal/routes"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Serve the viewer over HTTP and websocket",
	Long: `Serve the viewer's snapshot and intents as a JSON API, and stream every
new snapshot to websocket clients on /ws.

Endpoints:
  GET    /api/snapshot
  GET    /api/activity
  POST   /api/refresh
  POST   /api/entries
  DELETE /api/entries
  DELETE /api/entries/:key
  POST   /api/entries/:key/refresh
  GET    /ws
  GET    /health`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		gin.SetMode(gin.ReleaseMode)

		a, err := app.New(cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := &http.Server{
			Addr:              cfg.GatewayAddr,
			Handler:           routes.SetupGatewayRoutes(a.Gateway(), log),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return serve(cmd.Context(), srv)
	},
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("gateway listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func init() {
	rootCmd.AddCommand(gatewayCmd)
}
