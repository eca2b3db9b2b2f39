package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/studio1767/phonesync/internal/config"
	"github.com/studio1767/phonesync/internal/engine"
	"github.com/studio1767/phonesync/internal/ledger"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Pull new media from the device into the staging directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			stats, manifest, err := runSync(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			printSyncSummary(stats, manifest)
			return nil
		},
	}
}

// runSync runs one engine pass and returns the stats and the manifest
// written for it.
func runSync(ctx context.Context, cfg *config.Config) (engine.SyncStats, string, error) {
	dev := newDevice(cfg)
	if err := dev.Connected(ctx); err != nil {
		return engine.SyncStats{}, "", err
	}

	if err := os.MkdirAll(cfg.StagingDir, 0755); err != nil {
		return engine.SyncStats{}, "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	seen, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return engine.SyncStats{}, "", err
	}
	defer seen.Close()

	manifest := filepath.Join(cfg.StagingDir, fmt.Sprintf("phonesync-%d.csv", time.Now().Unix()))
	mwriter, err := os.Create(manifest)
	if err != nil {
		return engine.SyncStats{}, "", err
	}
	defer mwriter.Close()

	eng := engine.New(dev, newNormalizer(cfg), seen, engine.Options{
		Roots:      cfg.RemoteRoots,
		Staging:    cfg.StagingDir,
		Extensions: cfg.IncludeExtensions,
		Manifest:   mwriter,
	})

	stats, err := eng.Sync(ctx)
	return stats, manifest, err
}

func printSyncSummary(stats engine.SyncStats, manifest string) {
	fmt.Println()
	fmt.Printf("Sync Summary\n")
	fmt.Printf(" files:\n")
	fmt.Printf("         seen: %d\n", stats.Seen)
	fmt.Printf("       pulled: %d\n", stats.Pulled)
	fmt.Printf("   duplicates: %d\n", stats.Duplicates)
	fmt.Printf("       failed: %d\n", stats.Failed)
	if stats.RootFailures > 0 {
		fmt.Printf(" roots failed: %d\n", stats.RootFailures)
	}
	fmt.Printf(" manifest: %s\n", manifest)
	fmt.Println()
}
