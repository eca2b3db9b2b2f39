package s3io

import (
	"io"
)

// ReadCounter passes reads through and counts them.
type ReadCounter struct {
	in    io.Reader
	reads int
	bytes int64
}

func NewReadCounter(in io.Reader) *ReadCounter {
	return &ReadCounter{in: in}
}

func (rc *ReadCounter) Read(p []byte) (int, error) {
	size, err := rc.in.Read(p)

	rc.reads++
	rc.bytes += int64(size)

	return size, err
}

func (rc *ReadCounter) TotalReads() int {
	return rc.reads
}

func (rc *ReadCounter) TotalBytes() int64 {
	return rc.bytes
}
