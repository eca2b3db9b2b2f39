package device

import "fmt"

type ErrNoDevice struct {
	msg string
}

func (e *ErrNoDevice) Error() string {
	return e.msg
}

type ErrEnumerationFailed struct {
	Root string
	msg  string
}

func (e *ErrEnumerationFailed) Error() string {
	return fmt.Sprintf("failed to list %s: %s", e.Root, e.msg)
}

type ErrPullFailed struct {
	Remote string
	msg    string
}

func (e *ErrPullFailed) Error() string {
	return fmt.Sprintf("failed to pull %s: %s", e.Remote, e.msg)
}

type ErrDeleteFailed struct {
	Remote string
	msg    string
}

func (e *ErrDeleteFailed) Error() string {
	return fmt.Sprintf("failed to delete %s: %s", e.Remote, e.msg)
}
