package main

import (
	"context"
	"fmt"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/studio1767/phonesync/internal/config"
	"github.com/studio1767/phonesync/internal/ops"
)

type uploadStats struct {
	total      int
	uploaded   int
	duplicates int
	failed     int
	bytes      int64
}

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Upload the staging directory to the media server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			stats, err := runUpload(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			printUploadSummary(stats)
			return nil
		},
	}
}

func runUpload(ctx context.Context, cfg *config.Config) (uploadStats, error) {
	var stats uploadStats

	client, namer, err := newImmich(cfg)
	if err != nil {
		return stats, err
	}

	ch := ops.NewFsScanner(ctx, cfg.StagingDir)
	ch = ops.NewFileExtensionFilter(ctx, ch, cfg.IncludeExtensions, true)
	ch = ops.NewHashGenerator(ctx, ch)
	ch = ops.NewUploader(ctx, ch, client, namer)

	for ei := range ch {
		stats.total++

		switch ei.Action {
		case ops.Uploaded:
			if ei.Status == ops.StatusDuplicate {
				stats.duplicates++
				if verbose {
					fmt.Printf("-  present: %s\n", ei.Local)
				}
				continue
			}
			stats.uploaded++
			stats.bytes += ei.RawSize
			fmt.Printf("- uploaded: %s (%s)\n", ei.Local, humanize.Bytes(uint64(ei.RawSize)))
		case ops.Failed:
			stats.failed++
			fmt.Printf("-   failed: %s: %s\n", ei.Local, ei.ActionMessage)
		}
	}

	return stats, ctx.Err()
}

func printUploadSummary(stats uploadStats) {
	fmt.Println()
	fmt.Printf("Upload Summary\n")
	fmt.Printf(" files:\n")
	fmt.Printf("        total: %d\n", stats.total)
	fmt.Printf("     uploaded: %d (%s bytes)\n", stats.uploaded, humanize.Comma(stats.bytes))
	fmt.Printf("    on server: %d\n", stats.duplicates)
	fmt.Printf("       failed: %d\n", stats.failed)
	fmt.Println()
}
