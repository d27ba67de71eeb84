package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/becomeliminal/memory-vault/config"
	"github.com/becomeliminal/memory-vault/log"
)

var (
	debug   bool
	envFile string
)

var rootCmd = &cobra.Command{
	Use:          "vault",
	Short:        "Living Memory Vault",
	Long:         `Store photos, recordings and documents as searchable memories and ask questions about them.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")

	rootCmd.AddCommand(serveCmd, ingestCmd, askCmd, searchCmd, countCmd)
}

// setup loads configuration and installs the logger. The returned cleanup flushes logs.
func setup() (context.Context, *config.Config, func(), error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	ctx, flushLog := log.NewContextWithLogger(ctx, debug || cfg.Debug)

	return ctx, cfg, func() {
		flushLog()
		stop()
	}, nil
}
