package ops

import (
	"bufio"
	"context"
	"io"
	"net/url"
	"strings"
)

var actions = map[string]OpAction{
	"none":     NoAction,
	"pulled":   Pulled,
	"uploaded": Uploaded,
	"failed":   Failed,
}

var statuses = map[string]EntryStatus{
	"new":         StatusNew,
	"kept":        StatusKept,
	"duplicate":   StatusDuplicate,
	"root-failed": StatusRootFailed,
}

// NewManifestScanner reads back the entries a manifest writer recorded.
// Malformed lines are skipped.
func NewManifestScanner(ctx context.Context, mreader io.Reader) <-chan *EntryInfo {

	out := make(chan *EntryInfo, 10)
	scanner := manifestScanner{
		ctx:    ctx,
		out:    out,
		reader: mreader,
	}
	go scanner.run()

	return out
}

type manifestScanner struct {
	ctx    context.Context
	out    chan<- *EntryInfo
	reader io.Reader
}

func (ms *manifestScanner) run() {
	defer close(ms.out)

	scanner := bufio.NewScanner(ms.reader)
	for scanner.Scan() {
		if ms.ctx.Err() != nil {
			return
		}

		tokens := strings.Split(scanner.Text(), ",")
		if len(tokens) != 5 {
			continue
		}

		action, ok := actions[tokens[0]]
		if !ok {
			continue
		}
		status, ok := statuses[tokens[1]]
		if !ok {
			continue
		}
		remote, err := url.PathUnescape(tokens[3])
		if err != nil || remote == "" {
			continue
		}
		local, err := url.PathUnescape(tokens[4])
		if err != nil {
			continue
		}

		ms.out <- &EntryInfo{
			Status: status,
			Remote: remote,
			Local:  local,
			Hash:   tokens[2],
			Action: action,
		}
	}
}

// PulledPaths reads a manifest and returns the remote paths that were pulled
// successfully, in manifest order.
func PulledPaths(ctx context.Context, mreader io.Reader) []string {
	var paths []string
	for info := range NewManifestScanner(ctx, mreader) {
		if info.Action == Pulled {
			paths = append(paths, info.Remote)
		}
	}
	return paths
}
