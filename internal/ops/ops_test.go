package ops_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studio1767/phonesync/internal/immich"
	"github.com/studio1767/phonesync/internal/ledger"
	"github.com/studio1767/phonesync/internal/ops"
)

func feed(entries ...*ops.EntryInfo) <-chan *ops.EntryInfo {
	ch := make(chan *ops.EntryInfo, len(entries))
	for _, e := range entries {
		ch <- e
	}
	close(ch)
	return ch
}

func collect(ch <-chan *ops.EntryInfo) []*ops.EntryInfo {
	var out []*ops.EntryInfo
	for e := range ch {
		out = append(out, e)
	}
	return out
}

type fakeLister map[string][]string

func (f fakeLister) ListFiles(ctx context.Context, root string) ([]string, error) {
	files, ok := f[root]
	if !ok {
		return nil, errors.New("no such root")
	}
	return files, nil
}

// fakePuller writes the remote base name into the pull directory.
type fakePuller struct {
	content map[string]string
	dirs    []string
}

func (f *fakePuller) Pull(ctx context.Context, remote, localDir string) (string, error) {
	f.dirs = append(f.dirs, localDir)
	data, ok := f.content[remote]
	if !ok {
		return "", errors.New("pull failed")
	}
	local := filepath.Join(localDir, filepath.Base(remote))
	return local, os.WriteFile(local, []byte(data), 0644)
}

func TestLocalDir(t *testing.T) {
	require.Equal(t, filepath.Join("/stage", "sdcard_DCIM_Camera"), ops.LocalDir("/stage", "/sdcard/DCIM/Camera/IMG_1.jpg"))
	require.Equal(t, filepath.Join("/stage", "sdcard"), ops.LocalDir("/stage", "/sdcard/a.jpg"))
}

func TestRemoteScannerReportsRootFailure(t *testing.T) {
	lister := fakeLister{"/sdcard/DCIM": {"/sdcard/DCIM/a.jpg", "/sdcard/DCIM/b.mp4"}}

	entries := collect(ops.NewRemoteScanner(context.Background(), lister, []string{"/missing", "/sdcard/DCIM"}))

	require.Len(t, entries, 3)
	require.Equal(t, ops.StatusRootFailed, entries[0].Status)
	require.Equal(t, ops.Failed, entries[0].Action)
	require.Equal(t, "/missing", entries[0].Root)
	require.Equal(t, "/sdcard/DCIM/a.jpg", entries[1].Remote)
	require.Equal(t, "/sdcard/DCIM", entries[2].Root)
}

func TestRemoteScannerStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entries := collect(ops.NewRemoteScanner(ctx, fakeLister{"/r": {"/r/a.jpg"}}, []string{"/r"}))
	require.Empty(t, entries)
}

func TestExtensionFilterIgnoresCase(t *testing.T) {
	in := feed(
		&ops.EntryInfo{Remote: "/r/a.JPG"},
		&ops.EntryInfo{Remote: "/r/notes.txt"},
		&ops.EntryInfo{Remote: "/r/clip.mp4"},
		&ops.EntryInfo{Status: ops.StatusRootFailed, Action: ops.Failed},
	)

	entries := collect(ops.NewFileExtensionFilter(context.Background(), in, []string{".jpg", "mp4", ""}, true))

	require.Len(t, entries, 3)
	require.Equal(t, "/r/a.JPG", entries[0].Remote)
	require.Equal(t, "/r/clip.mp4", entries[1].Remote)
	require.Equal(t, ops.Failed, entries[2].Action)
}

func TestExtensionFilterExcludes(t *testing.T) {
	in := feed(&ops.EntryInfo{Local: "/l/a.jpg"}, &ops.EntryInfo{Local: "/l/phonesync-1.csv"})

	entries := collect(ops.NewFileExtensionFilter(context.Background(), in, []string{".csv"}, false))

	require.Len(t, entries, 1)
	require.Equal(t, "/l/a.jpg", entries[0].Local)
}

func TestPullerUsesPrivateDirectories(t *testing.T) {
	staging := t.TempDir()
	puller := &fakePuller{content: map[string]string{
		"/sdcard/DCIM/a.jpg": "a",
		"/sdcard/DCIM/b.jpg": "b",
	}}
	in := feed(
		&ops.EntryInfo{Remote: "/sdcard/DCIM/a.jpg"},
		&ops.EntryInfo{Remote: "/sdcard/DCIM/b.jpg"},
		&ops.EntryInfo{Remote: "/sdcard/DCIM/gone.jpg"},
	)

	entries := collect(ops.NewPuller(context.Background(), in, puller, staging))

	require.Len(t, entries, 3)
	require.NotEqual(t, puller.dirs[0], puller.dirs[1])
	for _, dir := range puller.dirs {
		require.Equal(t, filepath.Join(staging, "sdcard_DCIM"), filepath.Dir(dir))
		require.True(t, strings.HasPrefix(filepath.Base(dir), ".pull-"))
	}

	require.Equal(t, ops.Pulled, entries[0].Action)
	require.Equal(t, filepath.Join(entries[0].PullDir, "a.jpg"), entries[0].Local)
	require.FileExists(t, entries[1].Local)

	require.Equal(t, ops.Failed, entries[2].Action)
	require.NoDirExists(t, puller.dirs[2])
}

func TestPullerStartsNothingOnceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	puller := &fakePuller{content: map[string]string{"/r/a.jpg": "a"}}

	entries := collect(ops.NewPuller(ctx, feed(&ops.EntryInfo{Remote: "/r/a.jpg"}), puller, t.TempDir()))

	require.Equal(t, ops.Failed, entries[0].Action)
	require.Empty(t, puller.dirs)
}

type fixedTime struct {
	ts    time.Time
	calls []string
}

func (f *fixedTime) CaptureTime(ctx context.Context, remote string) (time.Time, bool) {
	f.calls = append(f.calls, remote)
	return f.ts, !f.ts.IsZero()
}

func TestTimestamperOnlyResolvesPulledEntries(t *testing.T) {
	ts := time.Date(2024, 1, 5, 3, 15, 0, 0, time.Local)
	resolver := &fixedTime{ts: ts}
	in := feed(
		&ops.EntryInfo{Remote: "/r/a.jpg", Action: ops.Pulled},
		&ops.EntryInfo{Remote: "/r/b.jpg", Action: ops.Failed},
	)

	entries := collect(ops.NewTimestamper(context.Background(), in, resolver))

	require.Equal(t, []string{"/r/a.jpg"}, resolver.calls)
	require.True(t, entries[0].HasCaptureTime)
	require.Equal(t, ts, entries[0].CaptureTime)
	require.False(t, entries[1].HasCaptureTime)
}

type moveNormalizer struct{}

func (moveNormalizer) Normalize(ctx context.Context, pulled, destDir, name string, ts time.Time, hasTS bool) (string, error) {
	final := filepath.Join(destDir, name)
	return final, os.Rename(pulled, final)
}

type failNormalizer struct{}

func (failNormalizer) Normalize(ctx context.Context, pulled, destDir, name string, ts time.Time, hasTS bool) (string, error) {
	return "", errors.New("no space left")
}

func pulledEntry(t *testing.T, remote, data string) *ops.EntryInfo {
	pullDir := filepath.Join(t.TempDir(), "sdcard_DCIM", ".pull-1")
	require.NoError(t, os.MkdirAll(pullDir, 0755))
	local := filepath.Join(pullDir, filepath.Base(remote))
	require.NoError(t, os.WriteFile(local, []byte(data), 0644))

	return &ops.EntryInfo{Remote: remote, Local: local, PullDir: pullDir, Action: ops.Pulled}
}

func TestNormalizerPlacesFileAndRemovesPullDir(t *testing.T) {
	entry := pulledEntry(t, "/sdcard/DCIM/a.jpg", "a")
	pullDir := entry.PullDir

	entries := collect(ops.NewNormalizer(context.Background(), feed(entry), moveNormalizer{}))

	require.Equal(t, filepath.Join(filepath.Dir(pullDir), "a.jpg"), entries[0].Local)
	require.FileExists(t, entries[0].Local)
	require.NoDirExists(t, pullDir)
	require.Empty(t, entries[0].PullDir)
}

func TestNormalizerFailureDropsPullDir(t *testing.T) {
	entry := pulledEntry(t, "/sdcard/DCIM/a.jpg", "a")
	pullDir := entry.PullDir

	entries := collect(ops.NewNormalizer(context.Background(), feed(entry), failNormalizer{}))

	require.Equal(t, ops.Failed, entries[0].Action)
	require.Contains(t, entries[0].ActionMessage, "no space left")
	require.NoDirExists(t, pullDir)
}

func TestHashThenDeduplicate(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.jpg")
	second := filepath.Join(dir, "b.jpg")
	require.NoError(t, os.WriteFile(first, []byte("same"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("same"), 0644))

	seen, err := ledger.Open(filepath.Join(dir, "seen.json"))
	require.NoError(t, err)
	defer seen.Close()

	ctx := context.Background()
	in := feed(
		&ops.EntryInfo{Remote: "/r/a.jpg", Local: first, Action: ops.Pulled},
		&ops.EntryInfo{Remote: "/r/b.jpg", Local: second, Action: ops.Pulled},
		&ops.EntryInfo{Remote: "/r/c.jpg", Action: ops.Failed},
	)

	entries := collect(ops.NewDeduplicator(ctx, ops.NewHashGenerator(ctx, in), seen))

	require.Len(t, entries, 3)
	require.Equal(t, entries[0].Hash, entries[1].Hash)
	require.Equal(t, int64(4), entries[0].RawSize)

	require.Equal(t, ops.StatusKept, entries[0].Status)
	require.FileExists(t, first)

	require.Equal(t, ops.StatusDuplicate, entries[1].Status)
	require.NoFileExists(t, second)

	require.Equal(t, ops.StatusNew, entries[2].Status)
	require.Equal(t, 1, seen.Len())
}

func TestManifestRoundTrip(t *testing.T) {
	ctx := context.Background()
	written := []*ops.EntryInfo{
		{Remote: "/sdcard/DCIM/a,b.jpg", Local: "/stage/sdcard_DCIM/a,b.jpg", Hash: "abc", Action: ops.Pulled, Status: ops.StatusKept},
		{Remote: "/sdcard/DCIM/dup.jpg", Hash: "abc", Action: ops.Pulled, Status: ops.StatusDuplicate},
		{Remote: "/sdcard/DCIM/bad name?.jpg", Action: ops.Failed, ActionMessage: "pull failed"},
		{Root: "/missing", Status: ops.StatusRootFailed, Action: ops.Failed},
	}

	buf := bytes.NewBuffer(nil)
	passed := collect(ops.NewManifestWriter(ctx, feed(written...), buf))
	require.Len(t, passed, 4)
	require.Equal(t, 3, strings.Count(buf.String(), "\n"))

	read := collect(ops.NewManifestScanner(ctx, bytes.NewReader(buf.Bytes())))
	require.Len(t, read, 3)
	require.Equal(t, "/sdcard/DCIM/a,b.jpg", read[0].Remote)
	require.Equal(t, "/stage/sdcard_DCIM/a,b.jpg", read[0].Local)
	require.Equal(t, ops.StatusKept, read[0].Status)
	require.Equal(t, ops.StatusDuplicate, read[1].Status)
	require.Equal(t, "/sdcard/DCIM/bad name?.jpg", read[2].Remote)
	require.Equal(t, ops.Failed, read[2].Action)

	paths := ops.PulledPaths(ctx, bytes.NewReader(buf.Bytes()))
	require.Equal(t, []string{"/sdcard/DCIM/a,b.jpg", "/sdcard/DCIM/dup.jpg"}, paths)
}

func TestManifestScannerSkipsMalformedLines(t *testing.T) {
	data := "garbage\npulled,kept,h,%2Fr%2Fa.jpg,\nbogus,kept,h,%2Fr%2Fb.jpg,\n"

	read := collect(ops.NewManifestScanner(context.Background(), strings.NewReader(data)))

	require.Len(t, read, 1)
	require.Equal(t, "/r/a.jpg", read[0].Remote)
}

func TestFsScannerSkipsHidden(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sdcard_DCIM", ".pull-x"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sdcard_DCIM", "a.jpg"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sdcard_DCIM", ".pull-x", "b.jpg"), []byte("b"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden.jpg"), []byte("c"), 0644))

	entries := collect(ops.NewFsScanner(context.Background(), root))

	require.Len(t, entries, 1)
	require.Equal(t, filepath.Join(root, "sdcard_DCIM", "a.jpg"), entries[0].Local)
	require.Equal(t, int64(1), entries[0].RawSize)
}

func TestFsScannerLogsUnreadableDirectory(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	missing := filepath.Join(t.TempDir(), "gone")
	entries := collect(ops.NewFsScanner(context.Background(), missing))

	require.Empty(t, entries)
	require.Contains(t, logs.String(), "failed to read directory")
	require.Contains(t, logs.String(), missing)
}

type fakeServer struct {
	albums map[string][]string
	fail   map[string]bool
	dups   map[string]bool
}

func (f *fakeServer) Upload(ctx context.Context, path string) (immich.Asset, error) {
	name := filepath.Base(path)
	if f.fail[name] {
		return immich.Asset{}, errors.New("server said no")
	}
	if f.dups[name] {
		return immich.Asset{ID: "id-" + name, Status: immich.Duplicate}, nil
	}
	return immich.Asset{ID: "id-" + name, Status: immich.Created}, nil
}

func (f *fakeServer) AddToAlbum(ctx context.Context, album, assetID string) error {
	f.albums[album] = append(f.albums[album], assetID)
	return nil
}

func TestUploaderAddsToFolderAlbum(t *testing.T) {
	server := &fakeServer{
		albums: make(map[string][]string),
		fail:   map[string]bool{"c.jpg": true},
		dups:   map[string]bool{"b.jpg": true},
	}
	in := feed(
		&ops.EntryInfo{Local: "/stage/sdcard_DCIM_Camera/a.jpg"},
		&ops.EntryInfo{Local: "/stage/sdcard_DCIM_Camera/b.jpg"},
		&ops.EntryInfo{Local: "/stage/sdcard_Pictures/c.jpg"},
	)

	entries := collect(ops.NewUploader(context.Background(), in, server, immich.AlbumNamer{Skip: 2}))

	require.Equal(t, ops.Uploaded, entries[0].Action)
	require.Equal(t, ops.StatusKept, entries[0].Status)
	require.Equal(t, ops.StatusDuplicate, entries[1].Status)
	require.Equal(t, ops.Failed, entries[2].Action)
	require.Equal(t, map[string][]string{"Camera": {"id-a.jpg", "id-b.jpg"}}, server.albums)
}
