package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var toS3 bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sync, upload and archive, then clean up the device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			stats, manifest, err := runSync(ctx, cfg)
			if err != nil {
				return err
			}
			printSyncSummary(stats, manifest)
			if err := ctx.Err(); err != nil {
				return err
			}

			clean := true
			if cfg.RequireServer() == nil {
				ustats, err := runUpload(ctx, cfg)
				if err != nil {
					return err
				}
				printUploadSummary(ustats)
				clean = ustats.failed == 0
			} else {
				slog.Warn("no media server configured, skipping upload")
			}

			if _, err := runArchive(ctx, cfg, toS3); err != nil {
				return err
			}

			if err := deleteRemote(ctx, cfg, stats.Transferred, yes); err != nil {
				return err
			}

			if !clean {
				fmt.Printf("Keeping %s: some uploads failed\n", cfg.StagingDir)
				return nil
			}

			ok := yes
			if !ok {
				ok, err = confirm(fmt.Sprintf("Remove local staging directory %s? (y/N)", cfg.StagingDir))
				if err != nil {
					return err
				}
			}
			if ok {
				if err := os.RemoveAll(cfg.StagingDir); err != nil {
					return fmt.Errorf("failed to remove staging directory: %w", err)
				}
				fmt.Printf("- removed: %s\n", cfg.StagingDir)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&toS3, "s3", false, "upload the archive to the configured bucket")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "don't ask before deleting")

	return cmd
}
