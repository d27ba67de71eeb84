package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of stored memories",
	Args:  cobra.NoArgs,
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

		n, err := a.vault.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}
