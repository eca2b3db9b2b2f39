package media

import (
	"path/filepath"
	"strings"
)

// TagArgs returns the exiftool arguments that set the creation date tags for
// the file's container, or nil when the format has no tag set.
func TagArgs(path, stamp string) []string {
	var tags []string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".gif", ".webp":
		tags = []string{
			"-CreationDate=" + stamp,
			"-XMP:CreateDate=" + stamp,
		}
	case ".mov":
		tags = []string{
			"-QuickTime:CreateDate=" + stamp,
			"-QuickTime:ModifyDate=" + stamp,
		}
	case ".mp4":
		tags = []string{
			"-QuickTime:CreateDate=" + stamp,
			"-QuickTime:ModifyDate=" + stamp,
			"-TrackCreateDate=" + stamp,
			"-MediaCreateDate=" + stamp,
		}
	case ".heic":
		tags = []string{
			"-DateTimeOriginal=" + stamp,
		}
	default:
		return nil
	}

	args := []string{"-overwrite_original"}
	args = append(args, tags...)
	return append(args, path)
}
