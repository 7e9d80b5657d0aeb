// Package config loads runtime configuration for the travel diary client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string           backend endpoint URL
//	-p string           backend project id
//	-db string          local state database path
//	-log-level string   debug, info, warn or error
//	-log-format string  text, json or zap
//	-upload             upload device-local images before saving entries
//
// # JSON schema
//
// Durations accept strings like "15s" or integer nanoseconds. Missing keys
// keep their defaults:
//
//	{
//	  "endpoint": "https://cloud.appwrite.io/v1",
//	  "project": "669a3bc20008a25accc9",
//	  "request_timeout": "15s",
//	  "breaker_threshold": 5,
//	  "db_path": "traveldiary.db",
//	  "upload_images": true,
//	  "s3_bucket": "diary",
//	  "s3_base_endpoint": "http://127.0.0.1:9000"
//	}
//
// This package does not read environment variables; the AWS SDK still
// falls back to its usual credential chain when no S3 keys are given.
package config
