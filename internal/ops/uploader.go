package ops

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/studio1767/phonesync/internal/immich"
)

// AssetUploader is the media server the staged files go to.
type AssetUploader interface {
	Upload(ctx context.Context, path string) (immich.Asset, error)
	AddToAlbum(ctx context.Context, album, assetID string) error
}

// This operator uploads each local file and adds it to the album named
// after its staging folder. Content the server already has is marked
// StatusDuplicate but still added to the album. Album failures are logged
// and don't fail the entry.
func NewUploader(ctx context.Context, in <-chan *EntryInfo, client AssetUploader, albums immich.AlbumNamer) <-chan *EntryInfo {
	out := make(chan *EntryInfo, 10)
	ul := uploader{
		ctx:    ctx,
		in:     in,
		out:    out,
		client: client,
		albums: albums,
	}
	go ul.run()

	return out
}

type uploader struct {
	ctx    context.Context
	in     <-chan *EntryInfo
	out    chan<- *EntryInfo
	client AssetUploader
	albums immich.AlbumNamer
}

func (ul *uploader) run() {
	defer close(ul.out)

	for info := range ul.in {
		ul.process(info)
	}
}

func (ul *uploader) process(info *EntryInfo) {
	if info.Action == Failed {
		ul.out <- info
		return
	}
	if ul.ctx.Err() != nil {
		info.fail("cancelled before upload")
		ul.out <- info
		return
	}

	slog.Info("uploading", "file", info.Local)
	asset, err := ul.client.Upload(ul.ctx, info.Local)
	if err != nil {
		info.fail(err.Error())
		slog.Warn("upload failed", "file", info.Local, "error", err)
		ul.out <- info
		return
	}

	info.AssetID = asset.ID
	info.Action = Uploaded
	info.Status = StatusKept
	if asset.Status == immich.Duplicate {
		info.Status = StatusDuplicate
		slog.Info("already on server", "file", info.Local)
	}

	album := ul.albums.Name(filepath.Base(filepath.Dir(info.Local)))
	if err := ul.client.AddToAlbum(ul.ctx, album, asset.ID); err != nil {
		slog.Warn("failed to add to album", "file", info.Local, "album", album, "error", err)
	} else {
		slog.Debug("added to album", "file", info.Local, "album", album)
	}

	ul.out <- info
}
