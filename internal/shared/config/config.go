package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	BlobStoreLocal = "local"
	BlobStoreS3    = "s3"
	BlobStoreMinio = "minio"

	ConverterRemote = "remote"
	ConverterLocal  = "local"
)

// Config holds application configuration.
type Config struct {
	Env             string   `default:"dev" validate:"oneof=dev local staging production"`
	Port            string   `default:"8080"`
	LogLevel        string   `default:"info" validate:"oneof=debug info warn error"`
	CORSAllowOrigin []string `validate:"dive,required"`

	BlobStore     string `default:"local" validate:"oneof=local s3 minio"`
	LocalStoreDir string `default:"./data/blobs"`
	PublicBaseURL string `validate:"omitempty,url"`

	AWSRegion   string
	S3Bucket    string `validate:"required_if=BlobStore s3"`
	S3Prefix    string
	SSEKMSKeyID string
	S3PublicACL bool `default:"true"`

	MinioEndpoint  string `validate:"required_if=BlobStore minio"`
	MinioAccessKey string `validate:"required_if=BlobStore minio"`
	MinioSecretKey string `validate:"required_if=BlobStore minio"`
	MinioBucket    string `default:"uploads"`
	MinioUseSSL    bool

	Converter        string        `default:"remote" validate:"oneof=remote local"`
	ConverterURL     string        `default:"http://localhost:8490/process_file" validate:"required,url"`
	ConverterTimeout time.Duration `default:"120s"`

	MaxRequestBytes int64 `default:"33554432" validate:"gte=5242880"`

	SessionSecret string `validate:"required_if=Env production"`

	RateLimitRPS   float64 `default:"2" validate:"gte=0"`
	RateLimitBurst int     `default:"10" validate:"gte=0"`
}

// Load reads configuration from the environment on top of tag defaults
// and validates the result.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	_ = godotenv.Load(".env", "cmd/.env")
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config using lookup for variable resolution.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return Config{}, fmt.Errorf("config defaults: %w", err)
	}
	cfg.CORSAllowOrigin = []string{"http://localhost:3000"}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, fmt.Errorf("config invalid: %w", err)
	}

	cfg.Env = normalizeEnv(cfg.Env)
	cfg.BlobStore = normalizeBlobStore(cfg.BlobStore)
	cfg.Converter = strings.ToLower(strings.TrimSpace(cfg.Converter))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		val, ok := lookup(key)
		if !ok {
			return "", false
		}
		val = strings.TrimSpace(val)
		return val, val != ""
	}

	strVars := map[string]*string{
		"ENV":              &cfg.Env,
		"PORT":             &cfg.Port,
		"LOG_LEVEL":        &cfg.LogLevel,
		"BLOB_STORE":       &cfg.BlobStore,
		"LOCAL_STORE_DIR":  &cfg.LocalStoreDir,
		"PUBLIC_BASE_URL":  &cfg.PublicBaseURL,
		"AWS_REGION":       &cfg.AWSRegion,
		"S3_BUCKET":        &cfg.S3Bucket,
		"S3_PREFIX":        &cfg.S3Prefix,
		"SSE_KMS_KEY_ID":   &cfg.SSEKMSKeyID,
		"MINIO_ENDPOINT":   &cfg.MinioEndpoint,
		"MINIO_ACCESS_KEY": &cfg.MinioAccessKey,
		"MINIO_SECRET_KEY": &cfg.MinioSecretKey,
		"MINIO_BUCKET":     &cfg.MinioBucket,
		"CONVERTER":        &cfg.Converter,
		"CONVERTER_URL":    &cfg.ConverterURL,
		"SESSION_SECRET":   &cfg.SessionSecret,
	}
	for key, dst := range strVars {
		if val, ok := get(key); ok {
			*dst = val
		}
	}

	if val, ok := get("CORS_ALLOW_ORIGINS"); ok {
		cfg.CORSAllowOrigin = splitAndTrim(val)
	}
	var errs []error
	setBool := func(key string, dst *bool) {
		if val, ok := get(key); ok {
			b, err := cast.ToBoolE(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	setBool("S3_PUBLIC_ACL", &cfg.S3PublicACL)
	setBool("MINIO_USE_SSL", &cfg.MinioUseSSL)

	if val, ok := get("CONVERTER_TIMEOUT"); ok {
		d, err := parseTimeout(val)
		if err != nil {
			errs = append(errs, fmt.Errorf("CONVERTER_TIMEOUT: %w", err))
		} else {
			cfg.ConverterTimeout = d
		}
	}
	if val, ok := get("MAX_REQUEST_BYTES"); ok {
		n, err := cast.ToInt64E(val)
		if err != nil {
			errs = append(errs, fmt.Errorf("MAX_REQUEST_BYTES: %w", err))
		} else {
			cfg.MaxRequestBytes = n
		}
	}
	if val, ok := get("RATE_LIMIT_RPS"); ok {
		f, err := cast.ToFloat64E(val)
		if err != nil {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS: %w", err))
		} else {
			cfg.RateLimitRPS = f
		}
	}
	if val, ok := get("RATE_LIMIT_BURST"); ok {
		n, err := cast.ToIntE(val)
		if err != nil {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST: %w", err))
		} else {
			cfg.RateLimitBurst = n
		}
	}
	return errors.Join(errs...)
}

// parseTimeout accepts a Go duration ("90s", "2m") or a bare number of
// seconds ("120").
func parseTimeout(raw string) (time.Duration, error) {
	var d time.Duration
	if secs, err := cast.ToFloat64E(raw); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		d = time.Duration(secs * float64(time.Second))
	} else {
		d, err = cast.ToDurationE(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", raw)
	}
	return d, nil
}

// IsDevLike reports whether the environment is a developer machine.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeBlobStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case BlobStoreS3:
		return BlobStoreS3
	case BlobStoreMinio:
		return BlobStoreMinio
	default:
		return BlobStoreLocal
	}
}
