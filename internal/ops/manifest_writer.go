package ops

import (
	"context"
	"fmt"
	"io"
	"net/url"
)

// NewManifestWriter records one line per remote entry the run attempted:
//
//	action,status,hash,remote,local
//
// with both paths URL path-escaped. Root failures aren't recorded.
func NewManifestWriter(ctx context.Context, in <-chan *EntryInfo, mwriter io.Writer) <-chan *EntryInfo {

	out := make(chan *EntryInfo, 10)
	mw := manifestWriter{
		in:     in,
		out:    out,
		writer: mwriter,
	}
	go mw.run()

	return out
}

type manifestWriter struct {
	in     <-chan *EntryInfo
	out    chan<- *EntryInfo
	writer io.Writer
}

func (mw *manifestWriter) run() {
	defer close(mw.out)

	for info := range mw.in {
		mw.process(info)
	}
}

func (mw *manifestWriter) process(info *EntryInfo) {
	if info.Remote == "" {
		mw.out <- info
		return
	}

	line := fmt.Sprintf("%s,%s,%s,%s,%s\n",
		info.Action,
		info.Status,
		info.Hash,
		url.PathEscape(info.Remote),
		url.PathEscape(info.Local),
	)
	if _, err := mw.writer.Write([]byte(line)); err != nil && info.Action != Failed {
		info.fail("failed writing entry to manifest")
	}

	mw.out <- info
}
