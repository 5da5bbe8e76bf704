package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/kiritoko1029/glmcode/internal/api"
	"github.com/kiritoko1029/glmcode/internal/monitor"
	"github.com/spf13/cobra"
)

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default settings.api_port)")
	serveCmd.Flags().StringP("host", "H", "localhost", "Host to listen on")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve quota data and Prometheus metrics over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, target, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.Settings.APIPort
		}
		host, _ := cmd.Flags().GetString("host")
		addr := net.JoinHostPort(host, strconv.Itoa(port))

		client := monitor.NewClient(target.AuthToken, logger)
		server := api.NewServer(client, target, api.Options{
			Addr:     addr,
			CacheTTL: cfg.Settings.CacheTTL,
			Timeout:  cfg.Settings.Timeout,
			Logger:   logger,
		})

		fmt.Fprintf(cmd.OutOrStdout(), "Starting API server on %s...\n", addr)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-cmd.Context().Done():
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(ctx)
		}
	},
}
