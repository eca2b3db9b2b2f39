package main

import (
	"context"
	"log/slog"
	"os/exec"

	"github.com/studio1767/phonesync/internal/config"
	"github.com/studio1767/phonesync/internal/device"
	"github.com/studio1767/phonesync/internal/immich"
	"github.com/studio1767/phonesync/internal/media"
	"github.com/studio1767/phonesync/internal/s3io"
	"github.com/studio1767/phonesync/internal/shell"
)

func newDevice(cfg *config.Config) *device.Device {
	sh := shell.NewExecutor(cfg.Adb.Path, cfg.Adb.IsQuiet(), cfg.Adb.CommandTimeout)
	return device.New(sh, device.Options{
		StagingPath:      cfg.Adb.DeviceStaging,
		EnumerateTimeout: cfg.Adb.EnumerateTimeout,
		CommandTimeout:   cfg.Adb.CommandTimeout,
	})
}

// newNormalizer runs without tag embedding when exiftool isn't installed.
func newNormalizer(cfg *config.Config) *media.Normalizer {
	if _, err := exec.LookPath(cfg.Exiftool.Path); err != nil {
		slog.Warn("exiftool not found, only jpeg files will be tagged", "path", cfg.Exiftool.Path)
		return media.NewNormalizer(nil, cfg.Exiftool.Timeout)
	}
	tool := shell.NewExecutor(cfg.Exiftool.Path, cfg.Adb.IsQuiet(), cfg.Exiftool.Timeout)
	return media.NewNormalizer(tool, cfg.Exiftool.Timeout)
}

func newImmich(cfg *config.Config) (*immich.Client, immich.AlbumNamer, error) {
	if err := cfg.RequireServer(); err != nil {
		return nil, immich.AlbumNamer{}, err
	}
	namer := immich.AlbumNamer{
		Fixed: cfg.Album.Name,
		Skip:  cfg.Album.Skip(),
	}
	return immich.New(cfg.ServerURL, cfg.APIKey), namer, nil
}

func newS3Client(ctx context.Context, cfg *config.Config) (s3io.Client, error) {
	if err := cfg.RequireBucket(); err != nil {
		return nil, err
	}
	return s3io.NewClient(ctx, cfg.S3.Profile, cfg.S3.Bucket, cfg.S3.IdentitiesFile, cfg.S3.SecretsFile)
}
