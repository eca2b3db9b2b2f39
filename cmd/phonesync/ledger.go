package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studio1767/phonesync/internal/ledger"
)

func newLedgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Back up or restore the ledger of seen hashes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "push",
		Short: "Upload the ledger as the next numbered backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, err := newS3Client(ctx, cfg)
			if err != nil {
				return err
			}

			seen, err := ledger.Open(cfg.LedgerPath)
			if err != nil {
				return err
			}
			defer seen.Close()

			// make sure the file exists even for an empty ledger
			if err := seen.Flush(); err != nil {
				return err
			}

			key, err := ledger.Push(ctx, client, seen.Path(), cfg.S3.LedgerName)
			if err != nil {
				return err
			}
			fmt.Printf("- uploaded: %s (%d hashes)\n", key, seen.Len())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "pull",
		Short: "Merge the newest ledger backup into the local ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, err := newS3Client(ctx, cfg)
			if err != nil {
				return err
			}

			seen, err := ledger.Open(cfg.LedgerPath)
			if err != nil {
				return err
			}
			defer seen.Close()

			key, added, err := ledger.Pull(ctx, client, cfg.S3.LedgerName, seen)
			if err != nil {
				return err
			}
			if err := seen.Flush(); err != nil {
				return err
			}
			fmt.Printf("- restored: %s (%d new, %d total)\n", key, added, seen.Len())
			return nil
		},
	})

	return cmd
}
