package ops

import (
	"context"
	"log/slog"
	"os"

	"github.com/studio1767/phonesync/internal/ledger"
)

// NewDeduplicator keeps the first local copy of any content and deletes the
// rest. Hashes are recorded in the ledger as they are kept.
func NewDeduplicator(ctx context.Context, in <-chan *EntryInfo, seen ledger.Ledger) <-chan *EntryInfo {
	out := make(chan *EntryInfo, 10)
	dd := deduplicator{
		in:   in,
		out:  out,
		seen: seen,
	}
	go dd.run()

	return out
}

type deduplicator struct {
	in   <-chan *EntryInfo
	out  chan<- *EntryInfo
	seen ledger.Ledger
}

func (dd *deduplicator) run() {
	defer close(dd.out)

	for info := range dd.in {
		dd.process(info)
	}
}

func (dd *deduplicator) process(info *EntryInfo) {
	if info.Action != Pulled || info.Hash == "" {
		dd.out <- info
		return
	}

	if ledger.ShouldKeep(dd.seen, info.Hash) {
		info.Status = StatusKept
		dd.out <- info
		return
	}

	info.Status = StatusDuplicate
	slog.Info("duplicate content, removing local copy", "file", info.Local, "hash", info.Hash[:12])
	if err := os.Remove(info.Local); err != nil {
		slog.Warn("failed to remove duplicate", "file", info.Local, "error", err)
	}
	dd.out <- info
}
