package device

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alessio/shellescape"
)

// Pull transfers remote into localDir and returns the local file the
// transfer produced. adb picks the local name itself, so the result is the
// most recently modified file in localDir; callers must give each pull a
// directory no one else writes to.
//
// When the direct pull fails the file is copied on the device to the staging
// path and that copy is pulled instead.
func (d *Device) Pull(ctx context.Context, remote, localDir string) (string, error) {
	res := d.sh.Execute(ctx, d.opts.CommandTimeout, "pull", remote, localDir)
	if !res.Ok() {
		slog.Warn("direct pull failed, trying device copy", "path", remote, "exit", res.ExitCode, "error", res.Message())

		if err := d.pullViaStaging(ctx, remote, localDir); err != nil {
			return "", err
		}
	}

	local, err := NewestFile(localDir)
	if err != nil {
		return "", &ErrPullFailed{
			Remote: remote,
			msg:    err.Error(),
		}
	}
	return local, nil
}

func (d *Device) pullViaStaging(ctx context.Context, remote, localDir string) error {
	staging := d.opts.StagingPath

	cp := fmt.Sprintf("cp %s %s && exit", shellescape.Quote(remote), shellescape.Quote(staging))
	res := d.sh.Execute(ctx, d.opts.CommandTimeout, "shell", cp)
	if !res.Ok() {
		return &ErrPullFailed{
			Remote: remote,
			msg:    "device copy: " + res.Message(),
		}
	}

	pull := d.sh.Execute(ctx, d.opts.CommandTimeout, "pull", staging, localDir)

	// cleanup is best effort either way
	if rm := d.sh.Execute(ctx, d.opts.CommandTimeout, "shell", "rm", staging); !rm.Ok() {
		slog.Debug("failed to remove device staging copy", "path", staging, "error", rm.Message())
	}

	if !pull.Ok() {
		return &ErrPullFailed{
			Remote: remote,
			msg:    "staged pull: " + pull.Message(),
		}
	}
	return nil
}

// NewestFile returns the regular file in dir with the latest modification time.
func NewestFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var newest string
	var newestInfo os.FileInfo
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newestInfo == nil || info.ModTime().After(newestInfo.ModTime()) {
			newest = filepath.Join(dir, entry.Name())
			newestInfo = info
		}
	}

	if newestInfo == nil {
		return "", fmt.Errorf("no file found in %s", dir)
	}
	return newest, nil
}
