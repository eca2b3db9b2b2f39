package ops

import (
	"context"
	"time"
)

// TimeResolver finds the capture time of a remote file.
type TimeResolver interface {
	CaptureTime(ctx context.Context, remote string) (time.Time, bool)
}

// NewTimestamper resolves the device-side capture time of each pulled entry.
// Resolution is skipped once ctx is done, leaving the local mtime to stand in.
func NewTimestamper(ctx context.Context, in <-chan *EntryInfo, resolver TimeResolver) <-chan *EntryInfo {
	out := make(chan *EntryInfo, 10)
	ts := timestamper{
		ctx:      ctx,
		in:       in,
		out:      out,
		resolver: resolver,
	}
	go ts.run()

	return out
}

type timestamper struct {
	ctx      context.Context
	in       <-chan *EntryInfo
	out      chan<- *EntryInfo
	resolver TimeResolver
}

func (ts *timestamper) run() {
	defer close(ts.out)

	for info := range ts.in {
		if info.Action == Pulled && ts.ctx.Err() == nil {
			info.CaptureTime, info.HasCaptureTime = ts.resolver.CaptureTime(ts.ctx, info.Remote)
		}
		ts.out <- info
	}
}
