// Package config loads runtime configuration for the billkeeper host.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config, validated against the
//     embedded schema.json before it is applied.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON file
//
// Durations use timex.Duration, so they can be strings like "24h" or integer
// nanoseconds. Keys left out keep their previous value.
//
//	{
//	  "remote_url": "https://sheet.example/api/bills",
//	  "token": "secret",
//	  "request_timeout": "10s",
//	  "batch_create": true,
//	  "cache_dsn": "billkeeper.db",
//	  "cache_ttl": "24h",
//	  "reconcile_retries": 2,
//	  "reconcile_backoff": "200ms",
//	  "report_dir": "reports",
//	  "s3": {"bucket": "bills", "endpoint": "http://127.0.0.1:9000", "user": "minio", "password": "minio123"},
//	  "log_backend": "logrus",
//	  "log_level": "debug"
//	}
//
// Unknown keys are rejected by the schema.
package config
