package device

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/studio1767/phonesync/internal/shell"
)

const statLayout = "2006-01-02 15:04:05"

// CaptureTime asks the device for the file's modification time. The stat
// query is tried with the cheap quoting forms first, then a long listing is
// parsed, then the octal and find forms of stat. The boolean is false when
// every form fails; that isn't an error.
func (d *Device) CaptureTime(ctx context.Context, remote string) (time.Time, bool) {
	var ts time.Time
	acceptStat := func(res shell.Result) bool {
		if !res.Ok() {
			return false
		}
		t, ok := ParseStat(res.Stdout)
		if ok {
			ts = t
		}
		return ok
	}

	attempts := OpStat.Attempts(remote, Direct, Quoted, DoubleQuoted)
	if _, attempt, ok := FirstSuccess(ctx, d.sh, d.opts.CommandTimeout, attempts, acceptStat); ok {
		slog.Debug("capture time from stat", "path", remote, "strategy", attempt.Label, "time", ts)
		return ts, true
	}

	listing := []Attempt{{
		Label: "ls -l",
		Args:  []string{"shell", "ls", "-l", remote},
	}}
	acceptListing := func(res shell.Result) bool {
		if !res.Ok() {
			return false
		}
		t, ok := ParseLongListing(res.Stdout, time.Now())
		if ok {
			ts = t
		}
		return ok
	}
	if _, _, ok := FirstSuccess(ctx, d.sh, d.opts.CommandTimeout, listing, acceptListing); ok {
		slog.Debug("capture time from ls -l", "path", remote, "time", ts)
		return ts, true
	}

	attempts = OpStat.Attempts(remote, Octal, Find)
	if _, attempt, ok := FirstSuccess(ctx, d.sh, d.opts.CommandTimeout, attempts, acceptStat); ok {
		slog.Debug("capture time from stat", "path", remote, "strategy", attempt.Label, "time", ts)
		return ts, true
	}

	slog.Warn("no capture time available", "path", remote)
	return time.Time{}, false
}

// ParseStat parses `stat -c %y` output, e.g.
// "2024-01-05 03:15:42.123456789 +0000", in local time. Only the first line
// is used; fractional seconds and the zone are dropped.
func ParseStat(output string) (time.Time, bool) {
	line := firstLine(output)
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return time.Time{}, false
	}

	stamp := fields[0] + " " + fields[1]
	stamp, _, _ = strings.Cut(stamp, ".")

	t, err := time.ParseInLocation(statLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

type listingLayout struct {
	fields int
	layout string
	noYear bool
}

// tried in order against the fields starting at column 5
var listingLayouts = []listingLayout{
	{fields: 2, layout: "2006-01-02 15:04"},
	{fields: 2, layout: "2006-01-02 15:04:05"},
	{fields: 4, layout: "Jan 2 2006 15:04"},
	{fields: 3, layout: "Jan 2 15:04", noYear: true},
	{fields: 3, layout: "Jan 2 2006"},
}

// ParseLongListing parses the date columns of the first line of `ls -l`
// output. Columns 5 and 6 hold the date and time on android
// ("-rw-rw---- 1 root sdcard_rw 1234 2024-01-05 03:15 name"); month-name
// listings are also accepted. A listing without a year is placed in the most
// recent year that doesn't put it after now.
func ParseLongListing(output string, now time.Time) (time.Time, bool) {
	parts := strings.Fields(firstLine(output))

	for _, ll := range listingLayouts {
		// there must be a file name after the date columns
		if len(parts) < 5+ll.fields+1 {
			continue
		}

		stamp := strings.Join(parts[5:5+ll.fields], " ")
		stamp, _, _ = strings.Cut(stamp, ".")

		t, err := time.ParseInLocation(ll.layout, stamp, time.Local)
		if err != nil {
			continue
		}

		if ll.noYear {
			var ok bool
			if t, ok = placeYear(t, now); !ok {
				continue
			}
		}
		return t, true
	}

	return time.Time{}, false
}

// placeYear moves a yearless date into this year, or the one before when
// that would be in the future. Feb 29 only lands in a leap year.
func placeYear(t, now time.Time) (time.Time, bool) {
	for _, year := range []int{now.Year(), now.Year() - 1} {
		placed := time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
		if placed.Day() != t.Day() || placed.After(now) {
			continue
		}
		return placed, true
	}
	return time.Time{}, false
}

func firstLine(output string) string {
	for _, line := range splitLines(output) {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}
