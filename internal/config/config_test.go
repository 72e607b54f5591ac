package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

const testJWTSecret = "config-test-secret-0123456789abcdef"

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 3000, BaseURL: "http://localhost:3000"},
		Database: DatabaseConfig{Host: "localhost", Name: "c4", User: "c4"},
		Storage:  StorageConfig{DefaultBackend: "local", Local: LocalStorageConfig{BasePath: "./storage"}},
		Auth:     AuthConfig{JWTSecret: testJWTSecret, Issuer: "c4"},
		Logging:  LoggingConfig{Level: "info"},
		RateLimit: RateLimitConfig{
			Enabled:                 true,
			RequestsPerMinute:       200,
			Burst:                   50,
			UploadRequestsPerMinute: 30,
			UploadBurst:             5,
		},
		Uploads: UploadsConfig{StaleAfter: time.Hour, ReapInterval: 10 * time.Minute},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"missing base url", func(c *Config) { c.Server.BaseURL = "" }, "server.base_url"},
		{"missing jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }, "auth.jwt_secret"},
		{"missing database host", func(c *Config) { c.Database.Host = "" }, "database.host"},
		{"missing database name", func(c *Config) { c.Database.Name = "" }, "database.name"},
		{"missing database user", func(c *Config) { c.Database.User = "" }, "database.user"},
		{"unknown backend", func(c *Config) { c.Storage.DefaultBackend = "ftp" }, "invalid storage backend"},
		{"azure without account", func(c *Config) { c.Storage.DefaultBackend = "azure" }, "storage.azure.account_name"},
		{"azure without container", func(c *Config) {
			c.Storage.DefaultBackend = "azure"
			c.Storage.Azure = AzureStorageConfig{AccountName: "acct", AccountKey: "key"}
		}, "storage.azure.container_name"},
		{"s3 without region", func(c *Config) {
			c.Storage.DefaultBackend = "s3"
			c.Storage.S3.Bucket = "files"
		}, "storage.s3.region"},
		{"s3 complete", func(c *Config) {
			c.Storage.DefaultBackend = "s3"
			c.Storage.S3 = S3StorageConfig{Bucket: "files", Region: "eu-central-1"}
		}, ""},
		{"gcs without bucket", func(c *Config) { c.Storage.DefaultBackend = "gcs" }, "storage.gcs.bucket"},
		{"minio without endpoint", func(c *Config) { c.Storage.DefaultBackend = "minio" }, "storage.minio.endpoint"},
		{"local without path", func(c *Config) { c.Storage.Local.BasePath = "" }, "storage.local.base_path"},
		{"redis without channel", func(c *Config) {
			c.Redis = RedisConfig{Enabled: true, Host: "localhost"}
		}, "redis.channel"},
		{"redis disabled ignores fields", func(c *Config) { c.Redis = RedisConfig{} }, ""},
		{"rate limit zero burst", func(c *Config) { c.RateLimit.Burst = 0 }, "rate_limit.requests_per_minute"},
		{"upload rate limit zero", func(c *Config) { c.RateLimit.UploadRequestsPerMinute = 0 }, "rate_limit.upload_requests_per_minute"},
		{"rate limit disabled ignores values", func(c *Config) { c.RateLimit = RateLimitConfig{} }, ""},
		{"stale after too short", func(c *Config) { c.Uploads.StaleAfter = 30 * time.Second }, "uploads.stale_after"},
		{"encryption key wrong length", func(c *Config) { c.EncryptionKey = "short" }, "ENCRYPTION_KEY"},
		{"encryption key 32 bytes", func(c *Config) { c.EncryptionKey = strings.Repeat("k", 32) }, ""},
		{"tls without cert", func(c *Config) { c.Security.TLS.Enabled = true }, "security.tls.cert_file"},
		{"tls without key", func(c *Config) {
			c.Security.TLS = TLSConfig{Enabled: true, CertFile: "cert.pem"}
		}, "security.tls.key_file"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "invalid logging level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			switch {
			case tt.wantErr == "" && err != nil:
				t.Fatalf("Validate() = %v, want nil", err)
			case tt.wantErr != "" && err == nil:
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			case tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr):
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestAddresses(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5433, User: "c4", Password: "pw", Name: "admin", SSLMode: "require"}
	if got, want := db.GetDSN(), "host=db port=5433 user=c4 password=pw dbname=admin sslmode=require"; got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
	srv := ServerConfig{Host: "0.0.0.0", Port: 3000}
	if got := srv.GetAddress(); got != "0.0.0.0:3000" {
		t.Errorf("ServerConfig.GetAddress() = %q", got)
	}
	rds := RedisConfig{Host: "cache", Port: 6380}
	if got := rds.GetAddress(); got != "cache:6380" {
		t.Errorf("RedisConfig.GetAddress() = %q", got)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("C4_AUTH_JWT_SECRET", testJWTSecret)

	cfg, err := Load(writeConfig(t, "logging:\n  format: text\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 3000 || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server = %s, want 0.0.0.0:3000", cfg.Server.GetAddress())
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("read timeout = %s, want 30s", cfg.Server.ReadTimeout)
	}
	if cfg.Database.Name != "c4" || cfg.Database.MaxConnections != 25 {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Storage.DefaultBackend != "local" || cfg.Storage.Local.BasePath != "./storage" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Redis.Enabled || cfg.Redis.Channel != "c4:audit-log" {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.Auth.Issuer != "c4" {
		t.Errorf("issuer = %q, want c4", cfg.Auth.Issuer)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.RequestsPerMinute != 200 || cfg.RateLimit.Burst != 50 {
		t.Errorf("rate limit = %+v", cfg.RateLimit)
	}
	if cfg.Uploads.StaleAfter != time.Hour || cfg.Uploads.ReapInterval != 10*time.Minute {
		t.Errorf("uploads = %+v", cfg.Uploads)
	}
	if cfg.Logging.Format != "text" || cfg.Logging.Level != "info" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoad_FileValues(t *testing.T) {
	t.Setenv("C4_AUTH_JWT_SECRET", testJWTSecret)
	path := writeConfig(t, `
server:
  port: 8443
  base_url: "https://admin.example.com"
database:
  host: "pg"
  name: "c4_admin"
storage:
  default_backend: "s3"
  s3:
    bucket: "c4-files"
    region: "eu-central-1"
rate_limit:
  enabled: false
uploads:
  stale_after: "2h"
logging:
  level: "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 8443 || cfg.Server.BaseURL != "https://admin.example.com" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Database.Host != "pg" || cfg.Database.Name != "c4_admin" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Storage.S3.Bucket != "c4-files" {
		t.Errorf("s3 bucket = %q", cfg.Storage.S3.Bucket)
	}
	if cfg.RateLimit.Enabled {
		t.Error("rate limit should be disabled")
	}
	if cfg.Uploads.StaleAfter != 2*time.Hour {
		t.Errorf("stale_after = %s, want 2h", cfg.Uploads.StaleAfter)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("C4_AUTH_JWT_SECRET", testJWTSecret)
	t.Setenv("C4_DATABASE_HOST", "from-env")
	t.Setenv("C4_RATE_LIMIT_BURST", "7")
	t.Setenv("C4_UPLOADS_STALE_AFTER", "90m")

	cfg, err := Load(writeConfig(t, "database:\n  host: from-file\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Database.Host != "from-env" {
		t.Errorf("database host = %q, want from-env", cfg.Database.Host)
	}
	if cfg.RateLimit.Burst != 7 {
		t.Errorf("burst = %d, want 7", cfg.RateLimit.Burst)
	}
	if cfg.Uploads.StaleAfter != 90*time.Minute {
		t.Errorf("stale_after = %s, want 1h30m", cfg.Uploads.StaleAfter)
	}
}

func TestLoad_ExpandsSecretReferences(t *testing.T) {
	t.Setenv("C4_TEST_DB_PASSWORD", "s3cret")
	t.Setenv("C4_TEST_JWT", testJWTSecret)

	cfg, err := Load(writeConfig(t, `
database:
  password: "${C4_TEST_DB_PASSWORD}"
auth:
  jwt_secret: "${C4_TEST_JWT}"
`))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Database.Password != "s3cret" {
		t.Errorf("password = %q, want s3cret", cfg.Database.Password)
	}
	if cfg.Auth.JWTSecret != testJWTSecret {
		t.Errorf("jwt secret not expanded: %q", cfg.Auth.JWTSecret)
	}
}

func TestLoad_EncryptionKeyWithoutPrefix(t *testing.T) {
	t.Setenv("C4_AUTH_JWT_SECRET", testJWTSecret)
	key := strings.Repeat("e", 32)
	t.Setenv("ENCRYPTION_KEY", key)

	cfg, err := Load(writeConfig(t, "logging:\n  level: info\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.EncryptionKey != key {
		t.Errorf("EncryptionKey = %q, want %q", cfg.EncryptionKey, key)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing jwt secret", func(t *testing.T) {
		t.Setenv("C4_AUTH_JWT_SECRET", "")
		_, err := Load(writeConfig(t, "logging:\n  level: info\n"))
		if err == nil || !strings.Contains(err.Error(), "auth.jwt_secret") {
			t.Errorf("Load() = %v, want jwt secret error", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Setenv("C4_AUTH_JWT_SECRET", testJWTSecret)
		_, err := Load(writeConfig(t, "server: [unclosed\n"))
		if err == nil || !strings.Contains(err.Error(), "error reading config file") {
			t.Errorf("Load() = %v, want read error", err)
		}
	})

	t.Run("missing explicit file", func(t *testing.T) {
		t.Setenv("C4_AUTH_JWT_SECRET", testJWTSecret)
		if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("Load() = nil, want error for missing file")
		}
	})
}

func TestEnvKeys(t *testing.T) {
	keys := envKeys(reflect.TypeOf(Config{}), "")
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	for _, want := range []string{
		"server.port",
		"storage.s3.web_identity_token_file",
		"security.cors.allowed_origins",
		"rate_limit.upload_burst",
		"uploads.stale_after",
		"telemetry.metrics.prometheus_port",
		"encryption_key",
	} {
		if !set[want] {
			t.Errorf("envKeys missing %q", want)
		}
	}
	for _, k := range keys {
		if strings.HasPrefix(k, "audit.") {
			t.Errorf("envKeys includes list section key %q", k)
		}
	}
}
