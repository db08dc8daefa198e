package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/billkeeper/internal/flagx"
)

var (
	valueFlags = []string{
		"-u", "-token", "-timeout", "-db", "-ttl", "-retries", "-backoff",
		"-reports", "-watermark", "-s3-bucket", "-s3-prefix", "-s3-region", "-s3-endpoint",
		"-s3-user", "-s3-password", "-log-backend", "-log-level",
	}
	boolFlags = []string{"-batch", "-prompt-token"}
)

// parseFlags overlays Config with command-line flags. Only the flags listed
// above are considered (see flagx.FilterArgs); parse errors panic.
//
//	-u string            remote records collection URL
//	-token string        bearer token for the remote store
//	-prompt-token        read the token from the terminal
//	-timeout duration    per-request timeout
//	-batch               create records with one batch request
//	-db string           cache database DSN
//	-ttl duration        cache freshness window
//	-retries uint        reconcile retries per record
//	-backoff duration    first retry delay
//	-reports string      report output directory
//	-watermark string    report watermark text
//	-s3-*                S3 bucket, prefix, region, endpoint, user, password
//	-log-backend string  slog or logrus
//	-log-level string    debug, info, warn or error
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], valueFlags, boolFlags...)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.RemoteURL, "u", cfg.RemoteURL, "remote records collection URL")
	fs.StringVar(&cfg.Token, "token", cfg.Token, "bearer token for the remote store")
	fs.BoolVar(&cfg.PromptToken, "prompt-token", cfg.PromptToken, "read the token from the terminal")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-request timeout")
	fs.BoolVar(&cfg.BatchCreate, "batch", cfg.BatchCreate, "create records with one batch request")
	fs.StringVar(&cfg.CacheDSN, "db", cfg.CacheDSN, "cache database DSN")
	fs.DurationVar(&cfg.CacheTTL, "ttl", cfg.CacheTTL, "cache freshness window")
	fs.Uint64Var(&cfg.ReconcileRetries, "retries", cfg.ReconcileRetries, "reconcile retries per record")
	fs.DurationVar(&cfg.ReconcileBackoff, "backoff", cfg.ReconcileBackoff, "first retry delay")
	fs.StringVar(&cfg.ReportDir, "reports", cfg.ReportDir, "report output directory")
	fs.StringVar(&cfg.Watermark, "watermark", cfg.Watermark, "report watermark text")
	fs.StringVar(&cfg.S3.Bucket, "s3-bucket", cfg.S3.Bucket, "S3 bucket for reports")
	fs.StringVar(&cfg.S3.Prefix, "s3-prefix", cfg.S3.Prefix, "S3 key prefix")
	fs.StringVar(&cfg.S3.Region, "s3-region", cfg.S3.Region, "S3 region")
	fs.StringVar(&cfg.S3.Endpoint, "s3-endpoint", cfg.S3.Endpoint, "S3-compatible endpoint URL")
	fs.StringVar(&cfg.S3.User, "s3-user", cfg.S3.User, "S3 access key")
	fs.StringVar(&cfg.S3.Password, "s3-password", cfg.S3.Password, "S3 secret key")
	fs.StringVar(&cfg.LogBackend, "log-backend", cfg.LogBackend, "slog or logrus")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
