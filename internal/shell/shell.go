package shell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds any call made without an explicit or configured timeout.
const DefaultTimeout = 2 * time.Minute

// waitDelay is how long a killed command may keep its output pipes open.
const waitDelay = 500 * time.Millisecond

// Result holds the outcome of one command invocation. A non-zero exit is a
// normal result; Err is only set when the process could not be run to
// completion (missing binary, timeout).
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (r Result) Ok() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Message returns the most useful diagnostic text for a failed result.
func (r Result) Message() string {
	if msg := strings.TrimSpace(r.Stderr); msg != "" {
		return msg
	}
	if r.Err != nil {
		return r.Err.Error()
	}
	return strings.TrimSpace(r.Stdout)
}

// Runner executes a single command and reports its result. A zero timeout
// means the runner's default.
type Runner interface {
	Execute(ctx context.Context, timeout time.Duration, args ...string) Result
}

// Executor runs a fixed binary as a fresh subprocess per call. Calls are
// serialized so only one is ever in flight.
type Executor struct {
	Binary  string
	Quiet   bool
	Timeout time.Duration

	mu sync.Mutex
}

func NewExecutor(binary string, quiet bool, timeout time.Duration) *Executor {
	return &Executor{
		Binary:  binary,
		Quiet:   quiet,
		Timeout: timeout,
	}
}

func (ex *Executor) Execute(ctx context.Context, timeout time.Duration, args ...string) Result {
	ex.mu.Lock()
	defer ex.mu.Unlock()

	if timeout <= 0 {
		timeout = ex.Timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// a stop request must not interrupt an in-flight call, only the timeout does
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, ex.Binary, args...)
	prepare(cmd, ex.Quiet)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	// a forked server holding the pipes after a clean exit is still a success
	if err == nil || (errors.Is(err, exec.ErrWaitDelay) && cctx.Err() == nil) {
		return res
	}

	if cctx.Err() == context.DeadlineExceeded {
		res.ExitCode = -1
		res.Err = &ErrTimeout{
			binary:  ex.Binary,
			timeout: timeout,
		}
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res
	}

	res.ExitCode = -1
	res.Err = err
	return res
}
