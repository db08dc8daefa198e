package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/billkeeper/internal/flagx"
	"github.com/dmitrijs2005/billkeeper/internal/timex"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("config.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return c.Compile("config.schema.json")
})

type jsonS3 struct {
	Bucket   *string `json:"bucket"`
	Prefix   *string `json:"prefix"`
	Region   *string `json:"region"`
	Endpoint *string `json:"endpoint"`
	User     *string `json:"user"`
	Password *string `json:"password"`
}

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// stay nil and leave the corresponding Config field untouched.
type JsonConfig struct {
	RemoteURL        *string         `json:"remote_url"`
	Token            *string         `json:"token"`
	PromptToken      *bool           `json:"prompt_token"`
	RequestTimeout   *timex.Duration `json:"request_timeout"`
	BatchCreate      *bool           `json:"batch_create"`
	CacheDSN         *string         `json:"cache_dsn"`
	CacheTTL         *timex.Duration `json:"cache_ttl"`
	ReconcileRetries *uint64         `json:"reconcile_retries"`
	ReconcileBackoff *timex.Duration `json:"reconcile_backoff"`
	ReportDir        *string         `json:"report_dir"`
	Watermark        *string         `json:"watermark"`
	S3               *jsonS3         `json:"s3"`
	LogBackend       *string         `json:"log_backend"`
	LogLevel         *string         `json:"log_level"`
}

// validateJSON checks data against the embedded config schema.
func validateJSON(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("config does not match schema: %w", err)
	}
	return nil
}

// parseJson overlays Config with values loaded from the file named by -c or
// -config. Without either flag nothing is loaded. Read, schema and decode
// errors panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	if err := validateJSON(data); err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}
	jc.apply(cfg)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *timex.Duration) {
	if src != nil {
		*dst = src.Duration
	}
}

func (jc *JsonConfig) apply(cfg *Config) {
	set(&cfg.RemoteURL, jc.RemoteURL)
	set(&cfg.Token, jc.Token)
	set(&cfg.PromptToken, jc.PromptToken)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	set(&cfg.BatchCreate, jc.BatchCreate)
	set(&cfg.CacheDSN, jc.CacheDSN)
	setDuration(&cfg.CacheTTL, jc.CacheTTL)
	set(&cfg.ReconcileRetries, jc.ReconcileRetries)
	setDuration(&cfg.ReconcileBackoff, jc.ReconcileBackoff)
	set(&cfg.ReportDir, jc.ReportDir)
	set(&cfg.Watermark, jc.Watermark)
	set(&cfg.LogBackend, jc.LogBackend)
	set(&cfg.LogLevel, jc.LogLevel)
	if s := jc.S3; s != nil {
		set(&cfg.S3.Bucket, s.Bucket)
		set(&cfg.S3.Prefix, s.Prefix)
		set(&cfg.S3.Region, s.Region)
		set(&cfg.S3.Endpoint, s.Endpoint)
		set(&cfg.S3.User, s.User)
		set(&cfg.S3.Password, s.Password)
	}
}
