package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/studio1767/phonesync/internal/archive"
	"github.com/studio1767/phonesync/internal/config"
)

func newArchiveCmd() *cobra.Command {
	var toS3 bool

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Zip the staging directory, optionally storing the zip in S3",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			_, err = runArchive(cmd.Context(), cfg, toS3)
			return err
		},
	}
	cmd.Flags().BoolVar(&toS3, "s3", false, "upload the zip to the configured bucket")

	return cmd
}

func runArchive(ctx context.Context, cfg *config.Config, toS3 bool) (archive.Result, error) {
	result, err := archive.Compress(cfg.StagingDir, cfg.Archive.Prefix, time.Now())
	if err != nil {
		return result, err
	}

	fmt.Printf("- archived: %s (%d files, %s)\n", result.Path, result.Files, humanize.Bytes(uint64(result.Bytes)))

	if !toS3 {
		return result, nil
	}

	key, size, err := storeArchive(ctx, cfg, result.Path)
	if err != nil {
		return result, err
	}
	if size >= 0 {
		fmt.Printf("- uploaded: %s (%s bytes)\n", key, humanize.Comma(size))
	}
	return result, nil
}

// storeArchive uploads the zip under archives/. It returns a negative size
// when the key was already present and nothing was sent.
func storeArchive(ctx context.Context, cfg *config.Config, path string) (string, int64, error) {
	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return "", 0, err
	}

	key := "archives/" + filepath.Base(path)
	exists, err := client.Exists(ctx, key)
	if err != nil {
		return key, 0, err
	}
	if exists {
		fmt.Printf("-  present: %s\n", key)
		return key, -1, nil
	}

	source, err := os.Open(path)
	if err != nil {
		return key, 0, err
	}
	defer source.Close()

	if client.CanEncrypt() {
		size, err := client.UploadEncrypted(ctx, key, source, false)
		return key, size, err
	}

	slog.Warn("no recipients in bucket, uploading archive unencrypted", "key", key)
	size, err := client.Upload(ctx, key, source)
	return key, size, err
}
