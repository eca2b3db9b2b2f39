package shell

import (
	"fmt"
	"time"
)

type ErrTimeout struct {
	binary  string
	timeout time.Duration
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("%s: timed out after %s", e.binary, e.timeout)
}
