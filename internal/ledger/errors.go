package ledger

import "fmt"

type ErrLedgerLocked struct {
	path string
}

func (e *ErrLedgerLocked) Error() string {
	return fmt.Sprintf("ledger is in use by another run: %s", e.path)
}

type ErrNoSuchBackup struct {
	msg string
}

func (e *ErrNoSuchBackup) Error() string {
	return e.msg
}
