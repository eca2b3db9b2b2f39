package immich

import "strings"

// AlbumNamer picks the album for files in a local staging folder.
type AlbumNamer struct {
	// Fixed, when set, is used for every folder.
	Fixed string

	// Skip is the number of leading '_' separated parts of the folder name
	// to drop. Staging folders are named after the device path, so the
	// default of 2 turns sdcard_DCIM_Camera into Camera.
	Skip int
}

func (n AlbumNamer) Name(folder string) string {
	if n.Fixed != "" {
		return n.Fixed
	}

	parts := strings.Split(folder, "_")
	if len(parts) > n.Skip {
		return strings.Join(parts[max(n.Skip, 0):], "_")
	}
	return parts[len(parts)-1]
}
