// Package config loads the phonesync YAML configuration. Every field can be
// overridden from the environment with the PHONESYNC_ prefix.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

const DefaultPath = "phonesync.yml"

type Config struct {
	ServerURL         string        `yaml:"server_url" env:"PHONESYNC_SERVER_URL" validate:"omitempty,url"`
	APIKey            string        `yaml:"api_key" env:"PHONESYNC_API_KEY"`
	StagingDir        string        `yaml:"staging_dir" env:"PHONESYNC_STAGING_DIR" validate:"required"`
	RemoteRoots       []string      `yaml:"remote_roots" env:"PHONESYNC_REMOTE_ROOTS" validate:"required,min=1,dive,startswith=/"`
	LedgerPath        string        `yaml:"ledger_path" env:"PHONESYNC_LEDGER_PATH" env-default:"seen_hashes.json"`
	IncludeExtensions []string      `yaml:"include_extensions" env:"PHONESYNC_INCLUDE_EXTENSIONS" env-default:".jpg,.jpeg,.png,.webp,.mp4,.mov,.heic,.gif"`
	Adb               AdbConfig     `yaml:"adb"`
	Exiftool          ToolConfig    `yaml:"exiftool"`
	Album             AlbumConfig   `yaml:"album"`
	Archive           ArchiveConfig `yaml:"archive"`
	S3                S3Config      `yaml:"s3"`
}

type AdbConfig struct {
	Path             string        `yaml:"path" env:"PHONESYNC_ADB" env-default:"adb"`
	Quiet            *bool         `yaml:"quiet"`
	DeviceStaging    string        `yaml:"device_staging" env:"PHONESYNC_ADB_DEVICE_STAGING" env-default:"/sdcard/temp_file" validate:"startswith=/"`
	CommandTimeout   time.Duration `yaml:"command_timeout" env:"PHONESYNC_ADB_COMMAND_TIMEOUT" env-default:"2m" validate:"gt=0"`
	EnumerateTimeout time.Duration `yaml:"enumerate_timeout" env:"PHONESYNC_ADB_ENUMERATE_TIMEOUT" env-default:"5m" validate:"gt=0"`
}

type ToolConfig struct {
	Path    string        `yaml:"path" env:"PHONESYNC_EXIFTOOL" env-default:"exiftool"`
	Timeout time.Duration `yaml:"timeout" env:"PHONESYNC_EXIFTOOL_TIMEOUT" env-default:"1m" validate:"gt=0"`
}

type AlbumConfig struct {
	Name         string `yaml:"name" env:"PHONESYNC_ALBUM"`
	SkipSegments *int   `yaml:"skip_segments" validate:"omitempty,gte=0"`
}

type ArchiveConfig struct {
	Prefix string `yaml:"prefix" env:"PHONESYNC_ARCHIVE_PREFIX" env-default:"PhoneBackup" validate:"required,excludesall=/\\"`
}

type S3Config struct {
	Profile        string `yaml:"profile" env:"PHONESYNC_S3_PROFILE" env-default:"default"`
	Bucket         string `yaml:"bucket" env:"PHONESYNC_S3_BUCKET"`
	IdentitiesFile string `yaml:"identities_file" env:"PHONESYNC_S3_IDENTITIES" env-default:"default"`
	SecretsFile    string `yaml:"secrets_file" env:"PHONESYNC_S3_SECRETS" env-default:"default"`
	LedgerName     string `yaml:"ledger_name" env:"PHONESYNC_S3_LEDGER_NAME" env-default:"phonesync" validate:"required,alphanumunicode"`
}

// IsQuiet defaults to true: no console windows for adb calls.
func (a AdbConfig) IsQuiet() bool {
	return a.Quiet == nil || *a.Quiet
}

// Skip defaults to 2, which drops the "sdcard_DCIM" style prefix of a
// staging folder name.
func (a AlbumConfig) Skip() int {
	if a.SkipSegments == nil {
		return 2
	}
	return *a.SkipSegments
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// RequireServer checks the settings the upload step needs.
func (c *Config) RequireServer() error {
	if c.ServerURL == "" || c.APIKey == "" {
		return errors.New("server_url and api_key must be set to upload")
	}
	return nil
}

// RequireBucket checks the settings the S3 commands need.
func (c *Config) RequireBucket() error {
	if c.S3.Bucket == "" {
		return errors.New("s3.bucket must be set")
	}
	return nil
}

// Usage describes the environment overrides.
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}
