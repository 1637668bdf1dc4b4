package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/vinony/internal/flagx"
	"github.com/dmitrijs2005/vinony/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell keys that are absent from keys set to a zero value.
type JsonConfig struct {
	DataDir      *string         `json:"data_dir"`
	DatabaseDSN  *string         `json:"database_dsn"`
	StoreDriver  *string         `json:"store_driver"`
	LogLevel     *string         `json:"log_level"`
	ChatLatency  *timex.Duration `json:"chat_latency"`
	ImageLatency *timex.Duration `json:"image_latency"`
	ChatModel    *string         `json:"chat_model"`
	ImageModel   *string         `json:"image_model"`

	SessionSecret *string         `json:"session_secret"`
	SessionTTL    *timex.Duration `json:"session_ttl"`

	S3Bucket       *string         `json:"s3_bucket"`
	S3Region       *string         `json:"s3_region"`
	S3BaseEndpoint *string         `json:"s3_base_endpoint"`
	S3AccessKey    *string         `json:"s3_access_key"`
	S3SecretKey    *string         `json:"s3_secret_key"`
	S3LinkTTL      *timex.Duration `json:"s3_link_ttl"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without either flag nothing changes. Read or unmarshal
// errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.StoreDriver, jc.StoreDriver)
	setString(&cfg.LogLevel, jc.LogLevel)
	setDuration(&cfg.ChatLatency, jc.ChatLatency)
	setDuration(&cfg.ImageLatency, jc.ImageLatency)
	setString(&cfg.ChatModel, jc.ChatModel)
	setString(&cfg.ImageModel, jc.ImageModel)
	setString(&cfg.SessionSecret, jc.SessionSecret)
	setDuration(&cfg.SessionTTL, jc.SessionTTL)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setDuration(&cfg.S3LinkTTL, jc.S3LinkTTL)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
