package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/studio1767/phonesync/internal/s3io"
)

func backupPrefix(name string) string {
	return fmt.Sprintf("ledger/%s/", name)
}

// Push uploads the stored ledger file as the next numbered backup,
// ledger/<name>/<name>-NNN.json, and returns the key used.
func Push(ctx context.Context, client s3io.Client, path, name string) (string, error) {
	prefix := backupPrefix(name)

	latest, _, err := client.LatestMatching(ctx, prefix)
	if err != nil {
		var nomatch *s3io.ErrNoMatch
		if !errors.As(err, &nomatch) {
			return "", err
		}

		// first backup, so start from a fake zero key
		latest = fmt.Sprintf("%s%s-000.json", prefix, name)
	}

	re := regexp.MustCompile(fmt.Sprintf(`^(.*/%s-)(\d+)(.*)$`, regexp.QuoteMeta(name)))
	matches := re.FindStringSubmatch(latest)
	if len(matches) != 4 {
		return "", fmt.Errorf("unexpected backup key: %s", latest)
	}

	id, err := strconv.Atoi(matches[2])
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s%03d%s", matches[1], id+1, matches[3])

	source, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open ledger: %w", err)
	}
	defer source.Close()

	if _, err := client.UploadPassphrase(ctx, key, source, true); err != nil {
		return "", err
	}
	return key, nil
}

// Pull downloads the newest backup and merges it into the ledger. It returns
// the key restored and how many hashes were new. The caller flushes.
func Pull(ctx context.Context, client s3io.Client, name string, into *File) (string, int, error) {
	key, _, err := client.LatestMatching(ctx, backupPrefix(name))
	if err != nil {
		var nomatch *s3io.ErrNoMatch
		if errors.As(err, &nomatch) {
			return "", 0, &ErrNoSuchBackup{
				msg: fmt.Sprintf("no ledger backup named %s", name),
			}
		}
		return "", 0, err
	}

	data := bytes.NewBuffer(nil)
	if _, err := client.Download(ctx, key, data); err != nil {
		return key, 0, err
	}

	hashes, err := Decode(data.Bytes())
	if err != nil {
		return key, 0, fmt.Errorf("failed to parse backup %s: %w", key, err)
	}

	return key, into.Merge(hashes), nil
}
