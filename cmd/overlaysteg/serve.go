package main

import (
	"github.com/spf13/cobra"

	"github.com/ivlev/overlaysteg/internal/overlay"
	"github.com/ivlev/overlaysteg/internal/server"
)

var serveFlags struct {
	Addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interactive web interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr = serveFlags.Addr
		}

		srv, err := server.New(cfg, overlay.NewEmbedder(nil))
		if err != nil {
			return err
		}
		return srv.ListenAndServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveFlags.Addr, "addr", ":8501", "Listen address (default from config)")
}
