package s3io

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"

	"filippo.io/age"
	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const recipientsKey = "keys/recipients.txt"

// Client is the archive store: zipped batches and ledger backups.
type Client interface {
	Exists(ctx context.Context, key string) (bool, error)
	LatestMatching(ctx context.Context, prefix string) (string, int64, error)

	Upload(ctx context.Context, key string, source io.Reader) (int64, error)
	UploadEncrypted(ctx context.Context, key string, source io.Reader, compress bool) (int64, error)
	UploadPassphrase(ctx context.Context, key string, source io.Reader, compress bool) (int64, error)

	// CanEncrypt reports whether the bucket publishes age recipients.
	CanEncrypt() bool

	Download(ctx context.Context, key string, sink io.Writer) (int64, error)
}

type client struct {
	client      *s3.Client
	bucket      *string
	recipients  []age.Recipient
	identities  []age.Identity
	passkeys    []string
	passphrases map[string]string
}

// NewClient connects with the named shared-config profile. Identity and
// secrets files of "default" resolve to ~/.phonesync/identities.txt and
// ~/.phonesync/secrets.yml; either may be absent.
func NewClient(ctx context.Context, profile, bucket string, identitiesFile, secretsFile string) (Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithSharedConfigProfile(profile))
	if err != nil {
		return nil, err
	}

	s3client := s3.NewFromConfig(cfg)

	recipients, err := loadRecipients(ctx, s3client, bucket)
	if err != nil {
		return nil, err
	}
	identities, err := loadIdentities(identitiesFile)
	if err != nil {
		return nil, err
	}
	passkeys, passphrases, err := loadSecrets(secretsFile)
	if err != nil {
		return nil, err
	}

	return &client{
		client:      s3client,
		bucket:      aws.String(bucket),
		recipients:  recipients,
		identities:  identities,
		passkeys:    passkeys,
		passphrases: passphrases,
	}, nil
}

func (cl *client) CanEncrypt() bool {
	return len(cl.recipients) > 0
}

func loadRecipients(ctx context.Context, cl *s3.Client, bucket string) ([]age.Recipient, error) {
	resp, err := cl.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(recipientsKey),
	})
	if err != nil {
		var nosuchkey *types.NoSuchKey
		if errors.As(err, &nosuchkey) {
			return nil, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	return age.ParseRecipients(resp.Body)
}

func configPath(file, name string) (string, error) {
	if file != "default" {
		return file, nil
	}
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return filepath.Join(u.HomeDir, ".phonesync", name), nil
}

// checkPrivate fails when a key file is readable by group or others. It
// returns false when the file doesn't exist.
func checkPrivate(path, what string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if perms := info.Mode(); perms&0077 != 0 {
		return false, &ErrPermissionsTooOpen{
			msg: fmt.Sprintf("permissions on %s file are too open: %#o", what, perms.Perm()),
		}
	}
	return true, nil
}

func loadIdentities(identitiesFile string) ([]age.Identity, error) {
	path, err := configPath(identitiesFile, "identities.txt")
	if err != nil {
		return nil, err
	}
	if ok, err := checkPrivate(path, "identities"); !ok {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return age.ParseIdentities(f)
}

func loadSecrets(secretsFile string) ([]string, map[string]string, error) {
	path, err := configPath(secretsFile, "secrets.yml")
	if err != nil {
		return nil, nil, err
	}
	if ok, err := checkPrivate(path, "secrets"); !ok {
		return nil, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var raw []struct {
		Id         string
		Passphrase string
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}
	if len(raw) == 0 {
		return nil, nil, &ErrNoSecretsFound{file: path}
	}

	passphrases := make(map[string]string)
	var passkeys []string
	for _, entry := range raw {
		passkeys = append(passkeys, entry.Id)
		passphrases[entry.Id] = entry.Passphrase
	}

	return passkeys, passphrases, nil
}
