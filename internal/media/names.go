package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

const nameLayout = "20060102_150405"

var unsafeChars = strings.NewReplacer("?", "_", "&", "_", "=", "_")

// SanitizeName replaces the characters that upset downstream tools.
func SanitizeName(name string) string {
	return unsafeChars.Replace(name)
}

// HasDigit reports whether the name contains any digit; such names are taken
// to carry a date already.
func HasDigit(name string) bool {
	for _, r := range name {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// DatedName builds the replacement name for a file without a date in it.
func DatedName(ts time.Time, ext string) string {
	return ts.Format(nameLayout) + ext
}

// UniquePath returns dir/name, or dir/name-N.ext for the first N that isn't
// already taken.
func UniquePath(dir, name string) (string, error) {
	candidate := filepath.Join(dir, name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 1; ; i++ {
		_, err := os.Lstat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
	}
}
