package device

import (
	"context"
	"log/slog"
)

type DeleteSummary struct {
	Total    int
	Deleted  int
	Failed   int
	Failures []string
}

// Delete removes a remote file, working through the escaping chain until
// one form of rm succeeds.
func (d *Device) Delete(ctx context.Context, remote string) error {
	res, attempt, ok := FirstSuccess(ctx, d.sh, d.opts.CommandTimeout, OpRemove.Attempts(remote), nil)
	if !ok {
		return &ErrDeleteFailed{
			Remote: remote,
			msg:    res.Message(),
		}
	}

	slog.Debug("deleted remote file", "path", remote, "strategy", attempt.Label)
	return nil
}

// DeleteAll deletes each path in turn. Cancelling ctx stops before the next
// path; paths not reached are not counted.
func (d *Device) DeleteAll(ctx context.Context, paths []string) DeleteSummary {
	var summary DeleteSummary

	for _, remote := range paths {
		if ctx.Err() != nil {
			break
		}

		summary.Total++
		slog.Info("deleting", "path", remote)

		if err := d.Delete(ctx, remote); err != nil {
			slog.Error("delete failed", "path", remote, "error", err)
			summary.Failed++
			summary.Failures = append(summary.Failures, remote)
			continue
		}
		summary.Deleted++
	}

	return summary
}
