// Package shelltest provides a scripted shell.Runner for tests.
package shelltest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/studio1767/phonesync/internal/shell"
)

// Script answers commands from a table keyed on the space-joined argument
// list. Unknown commands fail with exit code 1. Every call is recorded.
type Script struct {
	mu        sync.Mutex
	responses map[string][]Response
	calls     [][]string
	Fallback  func(args []string) shell.Result
}

// Response is one scripted answer. OnCall runs before the result is returned,
// which lets a fake create the files a real command would.
type Response struct {
	Result shell.Result
	OnCall func(args []string)
}

func New() *Script {
	return &Script{
		responses: make(map[string][]Response),
	}
}

func Key(args ...string) string {
	return strings.Join(args, " ")
}

// On queues a response for the command. Multiple responses for the same
// command are returned in order; the last one repeats.
func (s *Script) On(args []string, resp Response) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key(args...)
	s.responses[key] = append(s.responses[key], resp)
	return s
}

func (s *Script) OnOk(stdout string, args ...string) *Script {
	return s.On(args, Response{Result: shell.Result{Stdout: stdout}})
}

func (s *Script) OnFail(code int, args ...string) *Script {
	return s.On(args, Response{Result: shell.Result{ExitCode: code, Stderr: "scripted failure"}})
}

func (s *Script) Execute(ctx context.Context, timeout time.Duration, args ...string) shell.Result {
	s.mu.Lock()
	s.calls = append(s.calls, append([]string(nil), args...))

	key := Key(args...)
	queue := s.responses[key]
	var resp *Response
	if len(queue) > 0 {
		r := queue[0]
		resp = &r
		if len(queue) > 1 {
			s.responses[key] = queue[1:]
		}
	}
	fallback := s.Fallback
	s.mu.Unlock()

	if resp == nil {
		if fallback != nil {
			return fallback(args)
		}
		return shell.Result{ExitCode: 1, Stderr: "unexpected command: " + key}
	}
	if resp.OnCall != nil {
		resp.OnCall(args)
	}
	return resp.Result
}

// Calls returns the space-joined argument lists in call order.
func (s *Script) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, Key(c...))
	}
	return out
}
