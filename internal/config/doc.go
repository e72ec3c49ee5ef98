// Package config loads runtime configuration for the Snipee sync agent.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "30m" or integer nanoseconds:
//
//	{
//	  "database_dsn": "snipee.db",
//	  "sync_interval": "30m",
//	  "debounce_delay": "5s",
//	  "s3_bucket": "snipee-sync",
//	  "s3_base_endpoint": "http://127.0.0.1:9000"
//	}
//
// Credentials for the S3-compatible store come from the JSON file
// (s3_user/s3_password) or fall through to the AWS SDK's usual sources.
// This package does not read environment variables directly.
package config
