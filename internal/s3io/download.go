package s3io

import (
	"context"
	"errors"
	"io"
	"strings"

	"filippo.io/age"
	"github.com/klauspost/compress/gzip"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var downloadable = map[string]bool{
	"":                                 true,
	string(types.StorageClassStandard): true,
	string(types.StorageClassReducedRedundancy): true,
	string(types.StorageClassStandardIa):        true,
	string(types.StorageClassOnezoneIa):         true,
}

func (cl *client) checkDownloadable(ctx context.Context, key string) error {
	hoo, err := cl.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: cl.bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		var notfound *types.NotFound
		var nosuchkey *types.NoSuchKey
		if errors.As(err, &notfound) || errors.As(err, &nosuchkey) {
			return &ErrNoSuchObject{key: key}
		}
		return err
	}

	sclass := string(hoo.StorageClass)
	if downloadable[sclass] {
		return nil
	}

	return &ErrNotDownloadable{
		key:          key,
		storageClass: sclass,
	}
}

// Download writes the object to sink, undoing whatever encryption and
// compression the metadata records.
func (cl *client) Download(ctx context.Context, key string, sink io.Writer) (int64, error) {
	if err := cl.checkDownloadable(ctx, key); err != nil {
		return 0, err
	}

	resp, err := cl.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: cl.bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		var nosuchkey *types.NoSuchKey
		if errors.As(err, &nosuchkey) {
			return 0, &ErrNoSuchObject{key: key}
		}
		return 0, err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body

	compressed := false
	encrypted := false
	passkey := ""

	for k, v := range resp.Metadata {
		switch strings.ToLower(k) {
		case metaCompress:
			compressed = true
		case metaEncrypt:
			encrypted = true
		case metaScryptId:
			passkey = v
		}
	}

	// decrypt first
	if encrypted && passkey == "" {
		if len(cl.identities) == 0 {
			return 0, &ErrIdentitiesNotFound{}
		}

		dreader, err := age.Decrypt(reader, cl.identities...)
		if err != nil {
			return 0, err
		}
		reader = dreader
	}

	if passkey != "" {
		passphrase, ok := cl.passphrases[passkey]
		if !ok {
			return 0, &ErrPassphraseNotFound{operation: "download"}
		}

		identity, err := age.NewScryptIdentity(passphrase)
		if err != nil {
			return 0, err
		}
		dreader, err := age.Decrypt(reader, identity)
		if err != nil {
			return 0, err
		}
		reader = dreader
	}

	// then decompress
	if compressed {
		gzreader, err := gzip.NewReader(reader)
		if err != nil {
			return 0, err
		}
		defer gzreader.Close()

		reader = gzreader
	}

	return io.Copy(sink, reader)
}
