package media

import (
	"path/filepath"
	"strings"
)

// Kind groups files by how a capture time can be embedded in them.
type Kind int

const (
	KindOther Kind = iota
	KindExif
	KindTag
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindExif:
		return "exif"
	case KindTag:
		return "tag"
	case KindVideo:
		return "video"
	}
	return "other"
}

// Extensions lists every extension the sync handles, lower case with the dot.
var Extensions = []string{".jpg", ".jpeg", ".png", ".webp", ".mp4", ".mov", ".heic", ".gif"}

var kinds = map[string]Kind{
	".jpg":  KindExif,
	".jpeg": KindExif,
	".png":  KindTag,
	".gif":  KindTag,
	".webp": KindTag,
	".mov":  KindVideo,
	".heic": KindVideo,
	".mp4":  KindVideo,
}

// KindOf infers the kind from the file extension, ignoring case.
func KindOf(name string) Kind {
	return kinds[strings.ToLower(filepath.Ext(name))]
}

// IsMedia reports whether the name has one of the handled extensions.
func IsMedia(name string) bool {
	return KindOf(name) != KindOther
}
