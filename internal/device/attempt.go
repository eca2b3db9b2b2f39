package device

import (
	"context"
	"log/slog"
	"time"

	"github.com/studio1767/phonesync/internal/shell"
)

// FirstSuccess runs the attempts in order and stops at the first result that
// accept approves; a nil accept approves any zero exit. The last result is
// returned when nothing is accepted.
func FirstSuccess(ctx context.Context, sh shell.Runner, timeout time.Duration, attempts []Attempt, accept func(shell.Result) bool) (shell.Result, Attempt, bool) {
	if accept == nil {
		accept = shell.Result.Ok
	}

	var res shell.Result
	var last Attempt
	for _, attempt := range attempts {
		last = attempt
		res = sh.Execute(ctx, timeout, attempt.Args...)
		if accept(res) {
			return res, attempt, true
		}
		slog.Warn("remote command failed, trying next form",
			"strategy", attempt.Label,
			"exit", res.ExitCode,
			"error", res.Message(),
		)
	}

	return res, last, false
}
