package ops

import (
	"context"
	"strings"
)

// Filters out files from the stream based on their file extension.
// If 'include' is true, files that don't match are dropped from the
// stream; if 'include' is false, files that do match are dropped from
// the stream.
// The matching is case-insensitive and a missing leading '.' is added.
// Failed entries always pass through.

func NewFileExtensionFilter(ctx context.Context, in <-chan *EntryInfo, extensions []string, include bool) <-chan *EntryInfo {

	var ext []string
	for _, extension := range extensions {
		if len(extension) == 0 {
			continue
		}
		if !strings.HasPrefix(extension, ".") {
			extension = "." + extension
		}
		ext = append(ext, strings.ToLower(extension))
	}

	out := make(chan *EntryInfo, 10)
	filter := fileExtensionFilter{
		in:         in,
		out:        out,
		extensions: ext,
		include:    include,
	}
	go filter.run()

	return out
}

type fileExtensionFilter struct {
	in         <-chan *EntryInfo
	out        chan<- *EntryInfo
	extensions []string
	include    bool
}

func (filter *fileExtensionFilter) run() {
	defer close(filter.out)

	for info := range filter.in {
		filter.process(info)
	}
}

func (filter *fileExtensionFilter) process(info *EntryInfo) {
	if info.Action == Failed {
		filter.out <- info
		return
	}

	name := strings.ToLower(info.Name())
	match := false
	for _, ext := range filter.extensions {
		if strings.HasSuffix(name, ext) {
			match = true
			break
		}
	}

	// include: keep matches; exclude: keep the rest
	if match == filter.include {
		filter.out <- info
	}
}
