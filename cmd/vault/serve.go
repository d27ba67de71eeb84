package main

import (
	"github.com/spf13/cobra"

	"github.com/becomeliminal/memory-vault/log"
	"github.com/becomeliminal/memory-vault/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cfg, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.New(ctx, server.Config{
			Addr:         cfg.Addr,
			ModelTimeout: cfg.ModelTimeout,
			TopK:         cfg.Pipeline.TopK,
		}, a.vault, a.ingestor, a.responder, a.media)

		if err := srv.Run(ctx); err != nil {
			return err
		}
		log.FromCtx(ctx).Info().Msg("vault has been shut down gracefully")
		return nil
	},
}
