package ops

import (
	"context"
	"log/slog"
)

// Lister enumerates the regular files under a remote root.
type Lister interface {
	ListFiles(ctx context.Context, root string) ([]string, error)
}

// NewRemoteScanner emits an entry for every file under each root in turn.
// A root that can't be enumerated is logged and emitted as a single
// StatusRootFailed entry so the counts downstream see it. Scanning stops
// between calls once ctx is done.
func NewRemoteScanner(ctx context.Context, lister Lister, roots []string) <-chan *EntryInfo {
	out := make(chan *EntryInfo, 10)
	rs := remoteScanner{
		ctx:    ctx,
		out:    out,
		lister: lister,
		roots:  roots,
	}
	go rs.run()

	return out
}

type remoteScanner struct {
	ctx    context.Context
	out    chan<- *EntryInfo
	lister Lister
	roots  []string
}

func (rs *remoteScanner) run() {
	defer close(rs.out)

	for _, root := range rs.roots {
		if rs.ctx.Err() != nil {
			return
		}

		slog.Info("scanning", "root", root)
		files, err := rs.lister.ListFiles(rs.ctx, root)
		if err != nil {
			slog.Error("skipping root", "root", root, "error", err)
			rs.out <- &EntryInfo{
				Status:        StatusRootFailed,
				Root:          root,
				Action:        Failed,
				ActionMessage: err.Error(),
			}
			continue
		}

		for _, remote := range files {
			if rs.ctx.Err() != nil {
				return
			}
			rs.out <- &EntryInfo{
				Status: StatusNew,
				Root:   root,
				Remote: remote,
			}
		}
	}
}
