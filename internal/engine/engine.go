// Package engine runs one sync pass: every configured root is enumerated,
// its media files pulled, normalized and deduplicated against the ledger.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/studio1767/phonesync/internal/ledger"
	"github.com/studio1767/phonesync/internal/media"
	"github.com/studio1767/phonesync/internal/ops"
)

// Device is the remote side of a sync.
type Device interface {
	ops.Lister
	ops.Puller
	ops.TimeResolver
}

type Options struct {
	Roots   []string
	Staging string

	// Extensions limits the files pulled; empty means the media extensions.
	Extensions []string

	// Manifest, when set, receives one line per attempted file.
	Manifest io.Writer
}

type SyncStats struct {
	Seen         int
	Pulled       int
	Duplicates   int
	Failed       int
	RootFailures int

	// Attempted lists every remote path a pull was tried for.
	Attempted []string

	// Transferred lists the remote paths that were pulled and placed, kept
	// or duplicate. These are the paths it is safe to delete from the device.
	Transferred []string
}

type Engine struct {
	device     Device
	normalizer ops.Normalizer
	seen       ledger.Ledger
	opts       Options
}

func New(device Device, normalizer ops.Normalizer, seen ledger.Ledger, opts Options) *Engine {
	if len(opts.Extensions) == 0 {
		opts.Extensions = media.Extensions
	}
	return &Engine{
		device:     device,
		normalizer: normalizer,
		seen:       seen,
		opts:       opts,
	}
}

// Sync runs the pass and returns its counts. The ledger is flushed when the
// pass ends for any reason; only a flush failure is returned as an error.
// Cancelling ctx stops new pulls but lets the file in flight finish.
func (e *Engine) Sync(ctx context.Context) (SyncStats, error) {
	var stats SyncStats

	// build the chain
	entries := ops.NewRemoteScanner(ctx, e.device, e.opts.Roots)
	entries = ops.NewFileExtensionFilter(ctx, entries, e.opts.Extensions, true)
	entries = ops.NewPuller(ctx, entries, e.device, e.opts.Staging)
	entries = ops.NewTimestamper(ctx, entries, e.device)
	entries = ops.NewNormalizer(ctx, entries, e.normalizer)
	entries = ops.NewHashGenerator(ctx, entries)
	entries = ops.NewDeduplicator(ctx, entries, e.seen)
	if e.opts.Manifest != nil {
		entries = ops.NewManifestWriter(ctx, entries, e.opts.Manifest)
	}

	for info := range entries {
		stats.record(info)
	}

	if err := e.seen.Flush(); err != nil {
		return stats, fmt.Errorf("failed to save ledger: %w", err)
	}

	slog.Info("sync finished",
		"seen", stats.Seen,
		"pulled", stats.Pulled,
		"duplicates", stats.Duplicates,
		"failed", stats.Failed,
		"ledger", e.seen.Len(),
	)
	return stats, nil
}

func (s *SyncStats) record(info *ops.EntryInfo) {
	if info.Status == ops.StatusRootFailed {
		s.RootFailures++
		return
	}

	s.Seen++
	s.Attempted = append(s.Attempted, info.Remote)

	if info.Action == ops.Failed {
		s.Failed++
		slog.Warn("file not synced", "path", info.Remote, "error", info.ActionMessage)
		return
	}

	s.Transferred = append(s.Transferred, info.Remote)
	switch info.Status {
	case ops.StatusKept:
		s.Pulled++
	case ops.StatusDuplicate:
		s.Duplicates++
	}
}
