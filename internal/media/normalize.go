package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/studio1767/phonesync/internal/shell"
)

// Normalizer places a pulled file under its final name and makes sure the
// capture time travels inside the file.
type Normalizer struct {
	tool    shell.Runner
	timeout time.Duration
}

// NewNormalizer uses tool, a runner for exiftool, for the formats without
// native EXIF support. A nil tool skips tag embedding.
func NewNormalizer(tool shell.Runner, timeout time.Duration) *Normalizer {
	return &Normalizer{
		tool:    tool,
		timeout: timeout,
	}
}

// Normalize moves pulled to the sanitized form of name inside destDir, then
// embeds the capture time: an EXIF tag for JPEGs, a dated file name for
// names without digits, and exiftool tags for the other formats. When hasTS
// is false the local modification time stands in for naming and EXIF. Only
// the move can fail; embedding problems are logged.
func (n *Normalizer) Normalize(ctx context.Context, pulled, destDir, name string, ts time.Time, hasTS bool) (string, error) {
	clean := SanitizeName(name)
	target, err := UniquePath(destDir, clean)
	if err != nil {
		return "", err
	}
	if err := os.Rename(pulled, target); err != nil {
		return "", fmt.Errorf("failed to place %s: %w", name, err)
	}

	captured := ts
	if !hasTS {
		captured = modTime(target)
	}

	kind := KindOf(target)
	if kind == KindExif {
		n.ensureExifDate(target, captured)
		return target, nil
	}

	// a collision suffix doesn't count as a date
	if !HasDigit(clean) {
		target = n.renameWithDate(target, captured, hasTS)
	}

	if kind == KindTag || kind == KindVideo {
		if !hasTS {
			slog.Warn("no capture time to embed", "file", filepath.Base(target))
			return target, nil
		}
		n.embedTags(ctx, target, ts)
	}

	return target, nil
}

func (n *Normalizer) ensureExifDate(path string, captured time.Time) {
	if _, ok := DateTimeOriginal(path); ok {
		return
	}

	stamp := captured.Format(ExifLayout)
	slog.Info("embedding exif date", "file", filepath.Base(path), "date", stamp)

	if err := SetDateTimeOriginal(path, stamp); err != nil {
		slog.Warn("failed to add exif date", "file", path, "error", err)
	}
}

func (n *Normalizer) renameWithDate(path string, captured time.Time, hasTS bool) string {
	name := filepath.Base(path)
	if !hasTS {
		slog.Warn("no device date available, using local modified time", "file", name)
	}

	dated, err := UniquePath(filepath.Dir(path), DatedName(captured, filepath.Ext(name)))
	if err != nil {
		slog.Warn("failed to rename file", "file", path, "error", err)
		return path
	}
	if err := os.Rename(path, dated); err != nil {
		slog.Warn("failed to rename file", "file", path, "error", err)
		return path
	}

	slog.Info("renamed to include date", "from", name, "to", filepath.Base(dated))
	return dated
}

func (n *Normalizer) embedTags(ctx context.Context, path string, ts time.Time) {
	if n.tool == nil {
		slog.Debug("no metadata tool configured", "file", filepath.Base(path))
		return
	}

	args := TagArgs(path, ts.Format(ExifLayout))
	if args == nil {
		return
	}

	res := n.tool.Execute(ctx, n.timeout, args...)
	if !res.Ok() {
		slog.Warn("failed to embed metadata", "file", path, "exit", res.ExitCode, "error", res.Message())
		return
	}
	slog.Info("embedded metadata", "file", filepath.Base(path))
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Now()
	}
	return info.ModTime()
}
