package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/tetete478/Snipee-sub000/internal/flagx"
	"github.com/tetete478/Snipee-sub000/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration so the file can specify them either as strings like "30m"
// or as integer nanoseconds.
type JsonConfig struct {
	DatabaseDSN        string         `json:"database_dsn"`
	DeviceName         string         `json:"device_name"`
	SyncInterval       timex.Duration `json:"sync_interval"`
	DebounceDelay      timex.Duration `json:"debounce_delay"`
	TombstoneRetention timex.Duration `json:"tombstone_retention"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	S3User             string         `json:"s3_user"`
	S3Password         string         `json:"s3_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3ObjectKey        string         `json:"s3_object_key"`
	EncryptionEnabled  bool           `json:"encryption_enabled"`
}

// parseJson overlays cfg with values from the JSON file named by -c/-config.
// Missing file path means no JSON is loaded. Read or unmarshal errors panic;
// the process cannot run on a half-read configuration.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.DeviceName != "" {
		cfg.DeviceName = jc.DeviceName
	}
	if jc.SyncInterval.Duration > 0 {
		cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	}
	if jc.DebounceDelay.Duration > 0 {
		cfg.DebounceDelay = time.Duration(jc.DebounceDelay.Duration)
	}
	if jc.TombstoneRetention.Duration > 0 {
		cfg.TombstoneRetention = time.Duration(jc.TombstoneRetention.Duration)
	}
	if jc.S3Region != "" {
		cfg.S3Region = jc.S3Region
	}
	if jc.S3BaseEndpoint != "" {
		cfg.S3BaseEndpoint = jc.S3BaseEndpoint
	}
	if jc.S3User != "" {
		cfg.S3User = jc.S3User
	}
	if jc.S3Password != "" {
		cfg.S3Password = jc.S3Password
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
	if jc.S3ObjectKey != "" {
		cfg.S3ObjectKey = jc.S3ObjectKey
	}
	if jc.EncryptionEnabled {
		cfg.EncryptionEnabled = true
	}
}
