package ops

import (
	"path"
	"path/filepath"
	"time"
)

// EntryStatus records what the pipeline decided about an entry's content.
type EntryStatus int

const (
	StatusNew EntryStatus = iota
	StatusKept
	StatusDuplicate
	StatusRootFailed
)

func (s EntryStatus) String() string {
	switch s {
	case StatusKept:
		return "kept"
	case StatusDuplicate:
		return "duplicate"
	case StatusRootFailed:
		return "root-failed"
	default:
		return "new"
	}
}

// OpAction represents any action that has been performed on the entry.
type OpAction int

const (
	NoAction OpAction = iota
	Pulled
	Uploaded
	Failed
)

func (a OpAction) String() string {
	switch a {
	case Pulled:
		return "pulled"
	case Uploaded:
		return "uploaded"
	case Failed:
		return "failed"
	default:
		return "none"
	}
}

// EntryInfo is passed between operators. It carries the remote file, where
// it landed locally, and the status and action flags each operator uses to
// decide whether its own step applies.
type EntryInfo struct {
	Status EntryStatus

	// Root is the configured remote root the entry was found under.
	Root string

	// Remote is the absolute path on the device; empty for local entries.
	Remote string

	// Local is the current path on disk. PullDir is the private directory
	// the puller used, removed once the file has been placed.
	Local   string
	PullDir string

	CaptureTime    time.Time
	HasCaptureTime bool

	Hash    string
	RawSize int64
	ModTime int64

	AssetID string

	Action        OpAction
	ActionMessage string
}

// Name is the base name of the entry as found.
func (info *EntryInfo) Name() string {
	if info.Remote != "" {
		return path.Base(info.Remote)
	}
	return filepath.Base(info.Local)
}

func (info *EntryInfo) fail(msg string) {
	info.Action = Failed
	info.ActionMessage = msg
}
