// Package archive zips a finished staging directory.
package archive

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

const stampLayout = "2006-01-02_1504"

type Result struct {
	Path  string
	Files int
	Bytes int64
}

// Name is the archive file name for a batch finished at t.
func Name(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s.zip", prefix, t.Format(stampLayout))
}

// Compress writes every regular file under root into a zip created beside
// root, with names relative to root. Hidden entries are left out.
func Compress(root, prefix string, now time.Time) (Result, error) {
	root = filepath.Clean(root)
	result := Result{
		Path: filepath.Join(filepath.Dir(root), Name(prefix, now)),
	}

	tmp, err := os.CreateTemp(filepath.Dir(root), ".archive-*")
	if err != nil {
		return result, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	zw := zip.NewWriter(tmp)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		n, err := addFile(zw, path, filepath.ToSlash(rel))
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", rel, err)
		}
		result.Files++
		result.Bytes += n
		return nil
	})
	if err != nil {
		zw.Close()
		return result, err
	}

	if err := zw.Close(); err != nil {
		return result, err
	}
	if err := tmp.Close(); err != nil {
		return result, err
	}
	if err := os.Rename(tmp.Name(), result.Path); err != nil {
		return result, err
	}
	return result, nil
}

func addFile(zw *zip.Writer, path, name string) (int64, error) {
	in, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return 0, err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return 0, err
	}
	return io.Copy(w, in)
}
