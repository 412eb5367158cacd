package config

import (
	"testing"
	"time"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		val, ok := env[key]
		return val, ok
	}
}

func TestFromLookupDefaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.BlobStore != BlobStoreLocal {
		t.Fatalf("expected local blob store, got %q", cfg.BlobStore)
	}
	if cfg.Converter != ConverterRemote {
		t.Fatalf("expected remote converter, got %q", cfg.Converter)
	}
	if cfg.ConverterURL != "http://localhost:8490/process_file" {
		t.Fatalf("unexpected converter url %q", cfg.ConverterURL)
	}
	if cfg.ConverterTimeout != 120*time.Second {
		t.Fatalf("expected 120s timeout, got %s", cfg.ConverterTimeout)
	}
	if !cfg.S3PublicACL {
		t.Fatalf("expected S3PublicACL default true")
	}
	if len(cfg.CORSAllowOrigin) != 1 || cfg.CORSAllowOrigin[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSAllowOrigin)
	}
}

func TestFromLookupOverrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"ENV":                "prod",
		"SESSION_SECRET":     "s3cret",
		"BLOB_STORE":         "MINIO",
		"MINIO_ENDPOINT":     "minio:9000",
		"MINIO_ACCESS_KEY":   "key",
		"MINIO_SECRET_KEY":   "secret",
		"MINIO_USE_SSL":      "true",
		"CONVERTER_URL":      "http://converter:8490/process_file",
		"CONVERTER_TIMEOUT":  "45s",
		"CORS_ALLOW_ORIGINS": "https://a.example, https://b.example ,",
		"RATE_LIMIT_RPS":     "0",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected production, got %q", cfg.Env)
	}
	if cfg.BlobStore != BlobStoreMinio {
		t.Fatalf("expected minio, got %q", cfg.BlobStore)
	}
	if !cfg.MinioUseSSL {
		t.Fatalf("expected MinioUseSSL true")
	}
	if cfg.ConverterTimeout != 45*time.Second {
		t.Fatalf("expected 45s, got %s", cfg.ConverterTimeout)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSAllowOrigin)
	}
	if cfg.RateLimitRPS != 0 {
		t.Fatalf("expected rate limit disabled, got %v", cfg.RateLimitRPS)
	}
}

func TestFromLookupRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "s3 without bucket", env: map[string]string{"BLOB_STORE": "s3"}},
		{name: "minio without credentials", env: map[string]string{"BLOB_STORE": "minio"}},
		{name: "production without session secret", env: map[string]string{"ENV": "production"}},
		{name: "converter url not a url", env: map[string]string{"CONVERTER_URL": "not a url"}},
		{name: "unknown converter", env: map[string]string{"CONVERTER": "magic"}},
		{name: "request cap below file limit", env: map[string]string{"MAX_REQUEST_BYTES": "1024"}},
		{name: "converter timeout garbage", env: map[string]string{"CONVERTER_TIMEOUT": "two minutes"}},
		{name: "converter timeout not finite", env: map[string]string{"CONVERTER_TIMEOUT": "NaN"}},
		{name: "converter timeout negative", env: map[string]string{"CONVERTER_TIMEOUT": "-5"}},
		{name: "request cap not a number", env: map[string]string{"MAX_REQUEST_BYTES": "lots"}},
		{name: "public acl not a bool", env: map[string]string{"S3_PUBLIC_ACL": "maybe"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromLookup(lookupFrom(tt.env)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestFromLookupConverterTimeout(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{raw: "120", want: 120 * time.Second},
		{raw: "1.5", want: 1500 * time.Millisecond},
		{raw: "90s", want: 90 * time.Second},
		{raw: "2m", want: 2 * time.Minute},
		{raw: "0", want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			cfg, err := FromLookup(lookupFrom(map[string]string{"CONVERTER_TIMEOUT": tt.raw}))
			if err != nil {
				t.Fatalf("FromLookup: %v", err)
			}
			if cfg.ConverterTimeout != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, cfg.ConverterTimeout)
			}
		})
	}
}
