package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/becomeliminal/memory-vault/core"
)

var askK int

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about your memories",
	Args:  cobra.MinimumNArgs(1),
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

		k := askK
		if k <= 0 {
			k = cfg.Pipeline.TopK
		}

		ctx, cancel := withModelTimeout(ctx, cfg.ModelTimeout)
		defer cancel()

		ans, err := a.responder.Answer(ctx, strings.Join(args, " "), k)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ans.Response)
		printMedia(cmd, "image", ans.Images, a.media.Root())
		printMedia(cmd, "audio", ans.Audio, a.media.Root())
		return nil
	},
}

var searchK int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "List the memories nearest to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cfg, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		a, err := storeOnly(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		k := searchK
		if k <= 0 {
			k = cfg.Pipeline.TopK
		}

		results, err := a.vault.Search(ctx, strings.Join(args, " "), k)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no memories stored yet")
			return nil
		}
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%.3f  %s\n", r.Distance, core.FormatForDisplay(r))
		}
		return nil
	},
}

func init() {
	askCmd.Flags().IntVarP(&askK, "k", "k", 0, "number of memories to retrieve (default VAULT_TOP_K)")
	searchCmd.Flags().IntVarP(&searchK, "k", "k", 0, "number of memories to list (default VAULT_TOP_K)")
}

func printMedia(cmd *cobra.Command, kind string, refs []core.MediaRef, root string) {
	for _, ref := range refs {
		fmt.Fprintf(cmd.OutOrStdout(), "  [%s] %s -> %s\n", kind, ref.Filename, filepath.Join(root, ref.Path))
	}
}

func withModelTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
