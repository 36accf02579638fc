package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tinyvectordb/tinyvectordb/internal/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := openRuntime()
		if err != nil {
			fatal(err)
		}
		defer rt.Close()

		server := api.NewServer(rt)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := server.StartWithContext(ctx, serveAddr, 10*time.Second); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "HTTP listen address")
}
