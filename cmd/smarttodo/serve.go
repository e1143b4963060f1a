package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/smarttodo/internal/server"
	"github.com/nhle/smarttodo/internal/sync"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API for local front-ends",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr := a.cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		interval := time.Duration(a.cfg.Sync.RefreshIntervalSec) * time.Second
		refresher := sync.New(a.store, a.svc.Board(), interval, a.log)
		refresher.Start()
		defer refresher.Stop()

		srv := server.New(a.svc, server.Options{
			AllowedOrigins: a.cfg.Server.AllowedOrigins,
			Refresher:      refresher,
			Logger:         a.log,
		})
		fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", addr)
		return srv.Run(ctx, addr)
	}),
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}
