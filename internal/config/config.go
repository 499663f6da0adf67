// Package config loads mockbase settings from an optional YAML file and
// MOCKBASE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"mockbase/internal/blob"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. MOCKBASE_BLOB_DRIVER.
	EnvPrefix = "MOCKBASE"
	// FileName is the config file looked up in the working directory.
	FileName = "mockbase"

	// DefaultLatency is the simulated round-trip delay.
	DefaultLatency = 300 * time.Millisecond
	// DefaultPublicBaseURL prefixes synthesized public object URLs.
	DefaultPublicBaseURL = "http://localhost:54321"
)

// Seed sources.
const (
	SeedEmbedded  = "embedded"
	SeedJSON      = "json"
	SeedSQLite    = "sqlite"
	SeedPostgres  = "postgres"
	SeedGenerated = "generated"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the resolved mockbase configuration.
type Config struct {
	Latency time.Duration `mapstructure:"latency" validate:"gte=0"`
	Jitter  time.Duration `mapstructure:"jitter" validate:"gte=0"`
	Log     LogConfig     `mapstructure:"log"`
	Seed    SeedConfig    `mapstructure:"seed"`
	Blob    BlobConfig    `mapstructure:"blob"`
}

// LogConfig selects the zap level and encoder.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// SeedConfig selects where the initial snapshot comes from.
type SeedConfig struct {
	Source     string `mapstructure:"source" validate:"oneof=embedded json sqlite postgres generated"`
	Path       string `mapstructure:"path"`
	DSN        string `mapstructure:"dsn"`
	Count      int    `mapstructure:"count" validate:"gte=0"`
	RandomSeed int64  `mapstructure:"random_seed"`
}

// BlobConfig selects the object storage driver.
type BlobConfig struct {
	Driver        string   `mapstructure:"driver" validate:"oneof=null memory fs s3"`
	FSRoot        string   `mapstructure:"fs_root"`
	PublicBaseURL string   `mapstructure:"public_base_url" validate:"required,url"`
	S3            S3Config `mapstructure:"s3"`
}

// S3Config configures the S3 blob driver.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint" validate:"omitempty,url"`
	PathStyle       bool   `mapstructure:"path_style"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		cfg := sl.Current().Interface().(BlobConfig)
		if cfg.Driver == string(blob.DriverS3) && strings.TrimSpace(cfg.S3.Bucket) == "" {
			sl.ReportError(cfg.S3.Bucket, "S3.Bucket", "Bucket", "required_for_s3", "")
		}
	}, BlobConfig{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		cfg := sl.Current().Interface().(SeedConfig)
		switch cfg.Source {
		case SeedJSON, SeedSQLite:
			if strings.TrimSpace(cfg.Path) == "" {
				sl.ReportError(cfg.Path, "Path", "Path", "required_for_source", cfg.Source)
			}
		case SeedPostgres:
			if strings.TrimSpace(cfg.DSN) == "" {
				sl.ReportError(cfg.DSN, "DSN", "DSN", "required_for_source", cfg.Source)
			}
		}
	}, SeedConfig{})
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("latency", DefaultLatency)
	v.SetDefault("jitter", time.Duration(0))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("seed.source", SeedEmbedded)
	v.SetDefault("seed.path", "")
	v.SetDefault("seed.dsn", "")
	v.SetDefault("seed.count", 25)
	v.SetDefault("seed.random_seed", 0)
	v.SetDefault("blob.driver", string(blob.DriverNull))
	v.SetDefault("blob.fs_root", "./storage")
	v.SetDefault("blob.public_base_url", DefaultPublicBaseURL)
	v.SetDefault("blob.s3.bucket", "")
	v.SetDefault("blob.s3.region", "")
	v.SetDefault("blob.s3.endpoint", "")
	v.SetDefault("blob.s3.path_style", false)
	v.SetDefault("blob.s3.access_key_id", "")
	v.SetDefault("blob.s3.secret_access_key", "")
}

// NewViper prepares a viper instance with defaults, env overrides and the
// config file at path, or mockbase.yaml in the working directory when path is
// empty. A missing default file is not an error.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// FromViper decodes and validates the settings held by v.
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	cfg.Seed.Source = strings.ToLower(strings.TrimSpace(cfg.Seed.Source))
	cfg.Blob.Driver = strings.ToLower(strings.TrimSpace(cfg.Blob.Driver))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load is NewViper followed by FromViper.
func Load(path string) (Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return Config{}, err
	}
	return FromViper(v)
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := FromViper(v)
	if err != nil {
		panic(fmt.Sprintf("default config invalid: %v", err))
	}
	return cfg
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// BlobOptions maps the blob section onto blob.Open options.
func (c Config) BlobOptions() blob.Options {
	return blob.Options{
		Driver: blob.Driver(c.Blob.Driver),
		FSRoot: c.Blob.FSRoot,
		S3: blob.S3Config{
			Region:          c.Blob.S3.Region,
			Bucket:          c.Blob.S3.Bucket,
			Endpoint:        c.Blob.S3.Endpoint,
			AccessKeyID:     c.Blob.S3.AccessKeyID,
			SecretAccessKey: c.Blob.S3.SecretAccessKey,
			PathStyle:       c.Blob.S3.PathStyle,
		},
	}
}
