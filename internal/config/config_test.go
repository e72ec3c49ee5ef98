package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "snipee.db", c.DatabaseDSN)
	assert.Equal(t, 30*time.Minute, c.SyncInterval)
	assert.Equal(t, 5*time.Second, c.DebounceDelay)
	assert.Equal(t, 30*24*time.Hour, c.TombstoneRetention)
	assert.Equal(t, "snipee-sync", c.S3Bucket)
	assert.Equal(t, "sync-document.json", c.S3ObjectKey)
	assert.False(t, c.EncryptionEnabled)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)
	os.Args = []string{"cmd"}

	cfg := LoadConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "snipee.db", cfg.DatabaseDSN)
	assert.Equal(t, 30*time.Minute, cfg.SyncInterval)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectPanic bool
		check       func(t *testing.T, c *Config)
	}{
		{
			name: "overrides",
			args: []string{"cmd", "-d", "/tmp/replica.db", "-i", "10", "-w", "2", "-b", "my-bucket", "-e", "http://127.0.0.1:9000"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "/tmp/replica.db", c.DatabaseDSN)
				assert.Equal(t, 10*time.Minute, c.SyncInterval)
				assert.Equal(t, 2*time.Second, c.DebounceDelay)
				assert.Equal(t, "my-bucket", c.S3Bucket)
				assert.Equal(t, "http://127.0.0.1:9000", c.S3BaseEndpoint)
			},
		},
		{
			name: "defaults survive when flags absent",
			args: []string{"cmd"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "snipee.db", c.DatabaseDSN)
				assert.Equal(t, 30*time.Minute, c.SyncInterval)
			},
		},
		{
			name:        "bad interval",
			args:        []string{"cmd", "-i", "abc"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)
			os.Args = tt.args

			c := &Config{}
			c.LoadDefaults()

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(c) })
				return
			}
			require.NotPanics(t, func() { parseFlags(c) })
			tt.check(t, c)
		})
	}
}

func TestParseFlags_KeepsSubUnitDurations(t *testing.T) {
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)
	os.Args = []string{"cmd", "-b", "my-bucket"}

	c := &Config{}
	c.LoadDefaults()
	c.SyncInterval = 90 * time.Second
	c.DebounceDelay = 1500 * time.Millisecond

	parseFlags(c)

	assert.Equal(t, 90*time.Second, c.SyncInterval, "unset -i must not truncate the configured interval")
	assert.Equal(t, 1500*time.Millisecond, c.DebounceDelay, "unset -w must not truncate the configured delay")
	assert.Equal(t, "my-bucket", c.S3Bucket)
}

func TestParseJson(t *testing.T) {
	content := `{
		"database_dsn": "/data/replica.db",
		"device_name": "laptop",
		"sync_interval": "15m",
		"debounce_delay": "3s",
		"tombstone_retention": "168h",
		"s3_bucket": "json-bucket",
		"s3_user": "minio",
		"s3_password": "secret",
		"encryption_enabled": true
	}`

	file, err := os.CreateTemp(t.TempDir(), "config*.json")
	require.NoError(t, err)
	_, err = file.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, file.Close())

	os.Args = []string{"cmd", "-c", file.Name()}
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

	c := &Config{}
	c.LoadDefaults()
	parseJson(c)

	assert.Equal(t, "/data/replica.db", c.DatabaseDSN)
	assert.Equal(t, "laptop", c.DeviceName)
	assert.Equal(t, 15*time.Minute, c.SyncInterval)
	assert.Equal(t, 3*time.Second, c.DebounceDelay)
	assert.Equal(t, 7*24*time.Hour, c.TombstoneRetention)
	assert.Equal(t, "json-bucket", c.S3Bucket)
	assert.Equal(t, "minio", c.S3User)
	assert.Equal(t, "secret", c.S3Password)
	assert.True(t, c.EncryptionEnabled)

	// values absent from the file keep their defaults
	assert.Equal(t, "us-east-1", c.S3Region)
	assert.Equal(t, "sync-document.json", c.S3ObjectKey)
}
