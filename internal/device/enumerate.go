package device

import (
	"context"
	"log/slog"
	"path"
	"strings"
)

// ListFiles returns every regular file below root, excluding anything with a
// hidden path segment. A recursive find is tried first; if the device
// rejects it the output of `ls -R` is parsed instead.
func (d *Device) ListFiles(ctx context.Context, root string) ([]string, error) {
	res := d.sh.Execute(ctx, d.opts.EnumerateTimeout, "shell", "find", root, "-type", "f")
	if res.Ok() {
		return ParseFindOutput(res.Stdout), nil
	}

	slog.Warn("find failed, falling back to ls -R", "root", root, "exit", res.ExitCode, "error", res.Message())

	res = d.sh.Execute(ctx, d.opts.EnumerateTimeout, "shell", "ls", "-R", root)
	if !res.Ok() {
		return nil, &ErrEnumerationFailed{
			Root: root,
			msg:  res.Message(),
		}
	}

	return ParseRecursiveListing(res.Stdout, root), nil
}

// ParseFindOutput turns one-path-per-line output into a path list.
func ParseFindOutput(output string) []string {
	var files []string
	for _, line := range splitLines(output) {
		if line == "" || IsHidden(line) {
			continue
		}
		files = append(files, line)
	}
	return files
}

// ParseRecursiveListing parses `ls -R` output. A line ending in ':' names the
// directory for the bare file names that follow; directory entries and
// "total" lines are skipped. Lossy: a file whose name starts with 'd' is
// indistinguishable from a directory entry and is dropped.
func ParseRecursiveListing(output, root string) []string {
	var files []string
	current := root

	for _, line := range splitLines(output) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, ":") {
			current = strings.TrimSuffix(line, ":")
			continue
		}
		if strings.HasPrefix(line, "total ") || strings.HasPrefix(line, "d") {
			continue
		}
		if current == "" {
			continue
		}

		full := path.Join(current, line)
		if IsHidden(full) {
			continue
		}
		files = append(files, full)
	}

	return files
}
