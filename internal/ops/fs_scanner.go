package ops

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// NewFsScanner walks the local staging tree and emits every regular file.
// Hidden files and directories, which include in-progress pull
// directories, are skipped.
func NewFsScanner(ctx context.Context, source string) <-chan *EntryInfo {
	out := make(chan *EntryInfo, 10)
	fs := fsScanner{
		ctx: ctx,
		out: out,
	}
	go func() {
		defer close(fs.out)
		fs.run(source)
	}()

	return out
}

type fsScanner struct {
	ctx context.Context
	out chan<- *EntryInfo
}

func (fs *fsScanner) run(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Warn("failed to read directory", "dir", dir, "error", err)
		return
	}

	for _, entry := range entries {
		if fs.ctx.Err() != nil {
			return
		}
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		fpath := filepath.Join(dir, entry.Name())

		if entry.Type().IsRegular() {
			info, err := entry.Info()
			if err != nil {
				slog.Warn("failed to stat file", "path", fpath, "error", err)
				continue
			}

			fs.out <- &EntryInfo{
				Status:  StatusNew,
				Local:   fpath,
				RawSize: info.Size(),
				ModTime: info.ModTime().Unix(),
			}
		} else if entry.IsDir() {
			fs.run(fpath)
		}
	}
}
