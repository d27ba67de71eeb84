package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/becomeliminal/memory-vault/core"
)

var (
	ingestType        string
	ingestDescription string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Add files to the vault",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cfg, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		var override core.SourceType
		if ingestType != "" {
			if override, err = core.ParseSourceType(ingestType); err != nil {
				return err
			}
		}

		uploads := make([]core.Upload, 0, len(args))
		for _, path := range args {
			st := override
			if st == "" {
				if st, err = core.DetectSourceType(path); err != nil {
					return err
				}
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			uploads = append(uploads, core.Upload{
				Filename:    filepath.Base(path),
				Data:        data,
				SourceType:  st,
				Description: ingestDescription,
			})
		}

		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := withModelTimeout(ctx, cfg.ModelTimeout)
		defer cancel()

		var records []core.Record
		for _, o := range a.ingestor.Process(ctx, uploads) {
			if !o.OK() {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %v\n", o.Upload.Filename, o.Err)
				continue
			}
			records = append(records, o.Record)
		}

		if err := a.vault.AddBatch(ctx, records); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ingested %d of %d files\n", len(records), len(uploads))
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestType, "type", "t", "", "source type for every file (text, word, audio, image); inferred from the extension when empty")
	ingestCmd.Flags().StringVar(&ingestDescription, "description", "", "note prepended to every file's content")
}
