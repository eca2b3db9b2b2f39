package ops

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Normalizer places a pulled file under its final name in destDir.
type Normalizer interface {
	Normalize(ctx context.Context, pulled, destDir, name string, ts time.Time, hasTS bool) (string, error)
}

// NewNormalizer moves each pulled file out of its pull directory into the
// local directory, embedding the capture time on the way, and removes the
// pull directory.
func NewNormalizer(ctx context.Context, in <-chan *EntryInfo, normalizer Normalizer) <-chan *EntryInfo {
	out := make(chan *EntryInfo, 10)
	nm := normalizerOp{
		ctx:        ctx,
		in:         in,
		out:        out,
		normalizer: normalizer,
	}
	go nm.run()

	return out
}

type normalizerOp struct {
	ctx        context.Context
	in         <-chan *EntryInfo
	out        chan<- *EntryInfo
	normalizer Normalizer
}

func (nm *normalizerOp) run() {
	defer close(nm.out)

	for info := range nm.in {
		nm.process(info)
	}
}

func (nm *normalizerOp) process(info *EntryInfo) {
	if info.Action != Pulled {
		nm.out <- info
		return
	}

	pullDir := info.PullDir
	defer func() {
		if err := os.RemoveAll(pullDir); err != nil {
			slog.Warn("failed to remove pull directory", "dir", pullDir, "error", err)
		}
	}()

	final, err := nm.normalizer.Normalize(context.WithoutCancel(nm.ctx), info.Local, filepath.Dir(pullDir), info.Name(), info.CaptureTime, info.HasCaptureTime)
	if err != nil {
		info.fail(err.Error())
		slog.Warn("failed to place file", "path", info.Remote, "error", err)
		nm.out <- info
		return
	}

	info.Local = final
	info.PullDir = ""
	nm.out <- info
}
