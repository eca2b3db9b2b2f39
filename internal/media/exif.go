package media

import (
	"errors"
	"os"
	"path/filepath"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jis "github.com/dsoprea/go-jpeg-image-structure/v2"
	goexif "github.com/rwcarlsen/goexif/exif"
)

const ExifLayout = "2006:01:02 15:04:05"

// DateTimeOriginal returns the EXIF original capture time tag of a JPEG, or
// false when the file has no EXIF data or no such tag.
func DateTimeOriginal(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	x, err := goexif.Decode(f)
	if err != nil {
		return "", false
	}

	tag, err := x.Get(goexif.DateTimeOriginal)
	if err != nil {
		return "", false
	}

	value, err := tag.StringVal()
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

// SetDateTimeOriginal writes the EXIF original capture time tag into a JPEG,
// keeping any other EXIF tags. The file is replaced atomically.
func SetDateTimeOriginal(path, stamp string) error {
	parsed, err := jis.NewJpegMediaParser().ParseFile(path)
	if err != nil {
		return err
	}

	sl, ok := parsed.(*jis.SegmentList)
	if !ok {
		return errors.New("unexpected jpeg parse result")
	}

	rootIb, err := sl.ConstructExifBuilder()
	if err != nil {
		// no usable exif block, start a fresh one
		im, err := exifcommon.NewIfdMappingWithStandard()
		if err != nil {
			return err
		}
		ti := exif.NewTagIndex()
		rootIb = exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder)
	}

	exifIb, err := exif.GetOrCreateIbFromRootIb(rootIb, "IFD/Exif")
	if err != nil {
		return err
	}
	if err := exifIb.SetStandardWithName("DateTimeOriginal", stamp); err != nil {
		return err
	}
	if err := sl.SetExif(rootIb); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".exif-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return err
	}

	if err := sl.Write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
