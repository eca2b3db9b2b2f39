package ops

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Puller transfers one remote file into a local directory and returns the
// local file it produced.
type Puller interface {
	Pull(ctx context.Context, remote, localDir string) (string, error)
}

// LocalDir is the staging subdirectory for a remote file: its parent
// directory with the outer slashes removed and the rest turned into '_'.
func LocalDir(staging, remote string) string {
	parent := strings.Trim(path.Dir(remote), "/")
	return filepath.Join(staging, strings.ReplaceAll(parent, "/", "_"))
}

// NewPuller pulls each entry into a fresh hidden directory under its local
// directory, so the pulled file is the only file there. Once ctx is done no
// new pulls are started; the remaining entries fail as cancelled.
func NewPuller(ctx context.Context, in <-chan *EntryInfo, puller Puller, staging string) <-chan *EntryInfo {
	out := make(chan *EntryInfo, 10)
	pl := pullerOp{
		ctx:     ctx,
		in:      in,
		out:     out,
		puller:  puller,
		staging: staging,
	}
	go pl.run()

	return out
}

type pullerOp struct {
	ctx     context.Context
	in      <-chan *EntryInfo
	out     chan<- *EntryInfo
	puller  Puller
	staging string
}

func (pl *pullerOp) run() {
	defer close(pl.out)

	for info := range pl.in {
		pl.process(info)
	}
}

func (pl *pullerOp) process(info *EntryInfo) {
	if info.Action == Failed {
		pl.out <- info
		return
	}
	if pl.ctx.Err() != nil {
		info.fail("cancelled before pull")
		pl.out <- info
		return
	}

	localDir := LocalDir(pl.staging, info.Remote)
	pullDir := filepath.Join(localDir, ".pull-"+uuid.NewString())
	if err := os.MkdirAll(pullDir, 0755); err != nil {
		info.fail(fmt.Sprintf("failed to create %s", pullDir))
		pl.out <- info
		return
	}

	slog.Info("pulling", "path", info.Remote, "dir", localDir)
	local, err := pl.puller.Pull(pl.ctx, info.Remote, pullDir)
	if err != nil {
		os.RemoveAll(pullDir)
		info.fail(err.Error())
		slog.Warn("pull failed", "path", info.Remote, "error", err)
		pl.out <- info
		return
	}

	info.Local = local
	info.PullDir = pullDir
	info.Action = Pulled
	pl.out <- info
}
