package device

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/studio1767/phonesync/internal/shell"
)

const DefaultStagingPath = "/sdcard/temp_file"

// CommonFolders are the usual media locations on an android device.
var CommonFolders = []string{
	"/sdcard/DCIM",
	"/sdcard/Pictures",
	"/sdcard/Download",
	"/sdcard/Camera",
	"/sdcard/WhatsApp/Media",
}

type Options struct {
	// StagingPath is the on-device path used by the copy-then-pull fallback.
	StagingPath string

	// EnumerateTimeout bounds the recursive listing commands.
	EnumerateTimeout time.Duration

	// CommandTimeout bounds every other call; zero uses the runner default.
	CommandTimeout time.Duration
}

// Device issues adb commands through a runner whose binary is adb.
type Device struct {
	sh   shell.Runner
	opts Options
}

func New(sh shell.Runner, opts Options) *Device {
	if opts.StagingPath == "" {
		opts.StagingPath = DefaultStagingPath
	}
	if opts.EnumerateTimeout <= 0 {
		opts.EnumerateTimeout = 5 * time.Minute
	}
	return &Device{
		sh:   sh,
		opts: opts,
	}
}

// Connected reports whether `adb devices` lists at least one device in the
// ready state. The first line of the output is the banner.
func (d *Device) Connected(ctx context.Context) error {
	res := d.sh.Execute(ctx, d.opts.CommandTimeout, "devices")
	if !res.Ok() {
		return &ErrNoDevice{msg: "adb devices failed: " + res.Message()}
	}

	lines := splitLines(res.Stdout)
	for _, line := range lines[min(1, len(lines)):] {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == "device" {
			return nil
		}
	}

	return &ErrNoDevice{msg: "no device connected"}
}

// Folders lists the directories up to depth levels below each root.
// Roots that can't be listed are skipped.
func (d *Device) Folders(ctx context.Context, roots []string, depth int) []string {
	seen := make(map[string]bool)
	var found []string

	for _, root := range roots {
		res := d.sh.Execute(ctx, d.opts.CommandTimeout, "shell", "find", root, "-maxdepth", strconv.Itoa(depth), "-type", "d")
		if !res.Ok() {
			slog.Debug("folder scan failed", "root", root, "exit", res.ExitCode, "error", res.Message())
			continue
		}

		for _, line := range splitLines(res.Stdout) {
			if line == "" || seen[line] || IsHidden(line) {
				continue
			}
			seen[line] = true
			found = append(found, line)
		}
	}

	sort.Strings(found)
	return found
}

// splitLines splits command output into lines, dropping the carriage returns
// adb adds on windows hosts.
func splitLines(output string) []string {
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}

// IsHidden reports whether any segment of a remote path starts with a dot.
func IsHidden(remote string) bool {
	for _, part := range strings.Split(remote, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
