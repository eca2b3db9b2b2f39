package s3io

import (
	"context"
	"io"

	"filippo.io/age"
	"github.com/klauspost/compress/gzip"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	metaCompress = "phonesync-compress"
	metaEncrypt  = "phonesync-encrypt"
	metaScrypt   = "phonesync-scrypt"
	metaScryptId = "phonesync-scrypt-id"
)

func (cl *client) Upload(ctx context.Context, key string, source io.Reader) (int64, error) {
	return cl.upload(ctx, key, source, false, nil)
}

// UploadEncrypted encrypts to the bucket's age recipients.
func (cl *client) UploadEncrypted(ctx context.Context, key string, source io.Reader, compress bool) (int64, error) {
	if len(cl.recipients) == 0 {
		return 0, &ErrNoRecipients{}
	}

	mdata := map[string]string{
		metaEncrypt:              "age",
		metaEncrypt + "-version": "001",
	}
	return cl.upload(ctx, key, source, compress, &encryption{
		recipients: cl.recipients,
		metadata:   mdata,
	})
}

// UploadPassphrase encrypts with the newest passphrase from the secrets file.
func (cl *client) UploadPassphrase(ctx context.Context, key string, source io.Reader, compress bool) (int64, error) {
	if len(cl.passkeys) == 0 {
		return 0, &ErrPassphraseNotFound{operation: "upload"}
	}

	passkey := cl.passkeys[len(cl.passkeys)-1]
	recipient, err := age.NewScryptRecipient(cl.passphrases[passkey])
	if err != nil {
		return 0, err
	}

	mdata := map[string]string{
		metaScrypt:              "age",
		metaScrypt + "-version": "001",
		metaScryptId:            passkey,
	}
	return cl.upload(ctx, key, source, compress, &encryption{
		recipients: []age.Recipient{recipient},
		metadata:   mdata,
	})
}

type encryption struct {
	recipients []age.Recipient
	metadata   map[string]string
}

func (cl *client) upload(ctx context.Context, key string, source io.Reader, compress bool, enc *encryption) (int64, error) {
	mdata := make(map[string]string)

	// the compressor is a writer but the uploader needs a reader
	if compress {
		mdata[metaCompress] = "gzip"
		mdata[metaCompress+"-version"] = "001"

		reader, writer := io.Pipe()
		defer reader.Close()

		go func(writer *io.PipeWriter, source io.Reader) {
			gzwriter := gzip.NewWriter(writer)
			_, err := io.Copy(gzwriter, source)
			if cerr := gzwriter.Close(); err == nil {
				err = cerr
			}
			writer.CloseWithError(err)
		}(writer, source)

		source = reader
	}

	if enc != nil {
		for k, v := range enc.metadata {
			mdata[k] = v
		}

		reader, writer := io.Pipe()
		defer reader.Close()

		go func(writer *io.PipeWriter, source io.Reader) {
			ewriter, err := age.Encrypt(writer, enc.recipients...)
			if err != nil {
				writer.CloseWithError(err)
				return
			}
			_, err = io.Copy(ewriter, source)
			if cerr := ewriter.Close(); err == nil {
				err = cerr
			}
			writer.CloseWithError(err)
		}(writer, source)

		source = reader
	}

	// count the bytes that actually go up after compression and encryption
	counter := NewReadCounter(source)

	// the content length isn't known in advance, so PutObject can't be used
	uploader := manager.NewUploader(cl.client)
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:   cl.bucket,
		Key:      aws.String(key),
		Body:     counter,
		Metadata: mdata,
	})

	return counter.TotalBytes(), err
}
