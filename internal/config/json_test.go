package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"data_dir":         "/var/lib/vinony",
		"database_dsn":     "postgres://u:p@db:5432/vinony",
		"store_driver":     "postgres",
		"log_level":        "info",
		"chat_latency":     "2s",
		"image_latency":    int64(4 * time.Second),
		"chat_model":       "claude-sonnet",
		"image_model":      "dall-e-3",
		"session_secret":   "s3cr3t",
		"session_ttl":      "1h",
		"s3_bucket":        "renders",
		"s3_region":        "eu-west-1",
		"s3_base_endpoint": "http://127.0.0.1:9000",
		"s3_access_key":    "minioadmin",
		"s3_secret_key":    "minioadmin",
		"s3_link_ttl":      "5m",
	})

	t.Run("loads every field", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", full}

		cfg := &Config{}
		parseJson(cfg)

		want := &Config{
			DataDir:        "/var/lib/vinony",
			DatabaseDSN:    "postgres://u:p@db:5432/vinony",
			StoreDriver:    "postgres",
			LogLevel:       "info",
			ChatLatency:    2 * time.Second,
			ImageLatency:   4 * time.Second,
			ChatModel:      "claude-sonnet",
			ImageModel:     "dall-e-3",
			SessionSecret:  "s3cr3t",
			SessionTTL:     time.Hour,
			S3Bucket:       "renders",
			S3Region:       "eu-west-1",
			S3BaseEndpoint: "http://127.0.0.1:9000",
			S3AccessKey:    "minioadmin",
			S3SecretKey:    "minioadmin",
			S3LinkTTL:      5 * time.Minute,
		}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("absent keys keep earlier values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"log_level": "debug"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "sqlite", cfg.StoreDriver)
		assert.Equal(t, 1500*time.Millisecond, cfg.ChatLatency)
	})

	t.Run("no flags, no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{StoreDriver: "memory", ChatLatency: 42 * time.Second}
		parseJson(cfg)

		assert.Equal(t, "memory", cfg.StoreDriver)
		assert.Equal(t, 42*time.Second, cfg.ChatLatency)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}

		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
