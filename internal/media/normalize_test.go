package media_test

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studio1767/phonesync/internal/media"
	"github.com/studio1767/phonesync/internal/shell"
	"github.com/studio1767/phonesync/internal/shell/shelltest"
)

// pulledFile creates a file in a pull directory the way the puller leaves it
func pulledFile(t *testing.T, name string, data []byte) (string, string) {
	dest := t.TempDir()
	pullDir := filepath.Join(dest, ".pull-test")
	require.NoError(t, os.Mkdir(pullDir, 0755))

	path := filepath.Join(pullDir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path, dest
}

func makeJpeg(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}

	path := filepath.Join(t.TempDir(), "src.jpg")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, img, nil))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func okTool() *shelltest.Script {
	tool := shelltest.New()
	tool.Fallback = func(args []string) shell.Result { return shell.Result{} }
	return tool
}

func TestJpegGainsCaptureTag(t *testing.T) {
	pulled, dest := pulledFile(t, "IMG?id=7.jpg", makeJpeg(t))
	ts := time.Date(2024, 1, 5, 3, 15, 0, 0, time.Local)
	tool := okTool()

	final, err := media.NewNormalizer(tool, time.Second).Normalize(context.Background(), pulled, dest, "IMG?id=7.jpg", ts, true)

	require.NoError(t, err)
	require.Equal(t, filepath.Join(dest, "IMG_id_7.jpg"), final)

	value, ok := media.DateTimeOriginal(final)
	require.True(t, ok)
	require.Equal(t, "2024:01:05 03:15:00", value)

	// jpegs never go through the external tool
	require.Empty(t, tool.Calls())
}

func TestJpegKeepsExistingCaptureTag(t *testing.T) {
	pulled, dest := pulledFile(t, "photo.jpg", makeJpeg(t))
	require.NoError(t, media.SetDateTimeOriginal(pulled, "2019:07:01 12:00:00"))

	ts := time.Date(2024, 1, 5, 3, 15, 0, 0, time.Local)
	final, err := media.NewNormalizer(nil, 0).Normalize(context.Background(), pulled, dest, "photo.jpg", ts, true)

	require.NoError(t, err)

	// jpegs are never renamed, even without digits
	require.Equal(t, filepath.Join(dest, "photo.jpg"), final)

	value, ok := media.DateTimeOriginal(final)
	require.True(t, ok)
	require.Equal(t, "2019:07:01 12:00:00", value)
}

func TestJpegFallsBackToModTime(t *testing.T) {
	pulled, dest := pulledFile(t, "IMG_2.jpg", makeJpeg(t))
	mtime := time.Date(2022, 8, 9, 10, 11, 12, 0, time.Local)
	require.NoError(t, os.Chtimes(pulled, mtime, mtime))

	final, err := media.NewNormalizer(nil, 0).Normalize(context.Background(), pulled, dest, "IMG_2.jpg", time.Time{}, false)

	require.NoError(t, err)
	value, ok := media.DateTimeOriginal(final)
	require.True(t, ok)
	require.Equal(t, "2022:08:09 10:11:12", value)
}

func TestPngWithoutDigitsIsRenamedAndTagged(t *testing.T) {
	pulled, dest := pulledFile(t, "sunset.png", []byte("png bytes"))
	ts := time.Date(2024, 1, 5, 3, 15, 0, 0, time.Local)
	tool := okTool()

	final, err := media.NewNormalizer(tool, time.Second).Normalize(context.Background(), pulled, dest, "sunset.png", ts, true)

	require.NoError(t, err)
	require.Equal(t, filepath.Join(dest, "20240105_031500.png"), final)
	require.FileExists(t, final)
	require.Equal(t, []string{
		shelltest.Key("-overwrite_original", "-CreationDate=2024:01:05 03:15:00", "-XMP:CreateDate=2024:01:05 03:15:00", final),
	}, tool.Calls())
}

func TestNameWithDigitIsNeverRenamed(t *testing.T) {
	pulled, dest := pulledFile(t, "clip 1999.mp4", []byte("mp4 bytes"))
	ts := time.Date(2024, 1, 5, 3, 15, 0, 0, time.Local)
	tool := okTool()

	final, err := media.NewNormalizer(tool, time.Second).Normalize(context.Background(), pulled, dest, "clip 1999.mp4", ts, true)

	require.NoError(t, err)
	require.Equal(t, filepath.Join(dest, "clip 1999.mp4"), final)
	require.Len(t, tool.Calls(), 1)
}

func TestNoTimestampSkipsTagging(t *testing.T) {
	pulled, dest := pulledFile(t, "movie.mov", []byte("mov bytes"))
	mtime := time.Date(2021, 2, 3, 4, 5, 6, 0, time.Local)
	require.NoError(t, os.Chtimes(pulled, mtime, mtime))
	tool := okTool()

	final, err := media.NewNormalizer(tool, time.Second).Normalize(context.Background(), pulled, dest, "movie.mov", time.Time{}, false)

	require.NoError(t, err)
	require.Equal(t, filepath.Join(dest, "20210203_040506.mov"), final)
	require.Empty(t, tool.Calls())
}

func TestToolFailureIsNotFatal(t *testing.T) {
	pulled, dest := pulledFile(t, "IMG_3.gif", []byte("gif bytes"))
	tool := shelltest.New()

	final, err := media.NewNormalizer(tool, time.Second).Normalize(context.Background(), pulled, dest, "IMG_3.gif", time.Now(), true)

	require.NoError(t, err)
	require.FileExists(t, final)
	require.Len(t, tool.Calls(), 1)
}

func TestPlacementAvoidsExistingFile(t *testing.T) {
	pulled, dest := pulledFile(t, "temp_file", []byte("second"))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "IMG_4.webp"), []byte("first"), 0644))

	final, err := media.NewNormalizer(okTool(), time.Second).Normalize(context.Background(), pulled, dest, "IMG_4.webp", time.Now(), true)

	require.NoError(t, err)
	require.Equal(t, filepath.Join(dest, "IMG_4-1.webp"), final)

	data, err := os.ReadFile(filepath.Join(dest, "IMG_4.webp"))
	require.NoError(t, err)
	require.Equal(t, "first", string(data))
}

func TestCollidingNameWithoutDigitsIsStillDated(t *testing.T) {
	pulled, dest := pulledFile(t, "photo.png", []byte("second"))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "photo.png"), []byte("first"), 0644))
	ts := time.Date(2024, 1, 5, 3, 15, 0, 0, time.Local)

	final, err := media.NewNormalizer(okTool(), time.Second).Normalize(context.Background(), pulled, dest, "photo.png", ts, true)

	require.NoError(t, err)
	require.Equal(t, filepath.Join(dest, "20240105_031500.png"), final)
	require.NoFileExists(t, filepath.Join(dest, "photo-1.png"))

	data, err := os.ReadFile(filepath.Join(dest, "photo.png"))
	require.NoError(t, err)
	require.Equal(t, "first", string(data))
}

func TestDatedNameCollisionGetsSuffix(t *testing.T) {
	pulled, dest := pulledFile(t, "photo.png", []byte("second"))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "20240105_031500.png"), []byte("first"), 0644))
	ts := time.Date(2024, 1, 5, 3, 15, 0, 0, time.Local)

	final, err := media.NewNormalizer(okTool(), time.Second).Normalize(context.Background(), pulled, dest, "photo.png", ts, true)

	require.NoError(t, err)
	require.Equal(t, filepath.Join(dest, "20240105_031500-1.png"), final)
}
