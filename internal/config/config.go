// Package config defines the configuration of an auction ingestion run and
// how it is assembled from defaults, an optional config file, the
// environment and command-line flags (in increasing precedence).
//
// Example config file (JSON; YAML uses the same keys):
//
//	{
//	  "dir": "csv_files",
//	  "workers": 4,
//	  "file_timeout": "30s",
//	  "log": { "level": "debug", "format": "json" },
//	  "metrics": { "backend": "textfile", "textfile_path": "/var/lib/node_exporter/auctions.prom" }
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable, e.g. AUCTIONS_DIR.
const EnvPrefix = "AUCTIONS"

// DefaultDir is the input directory used when none is configured.
const DefaultDir = "csv_files"

// Config is the complete run configuration.
type Config struct {
	// Dir is the directory scanned for *.csv exports (non-recursive).
	Dir string `json:"dir" yaml:"dir" envconfig:"DIR" validate:"required"`

	// Workers bounds concurrently processed files; 0 means GOMAXPROCS.
	Workers int `json:"workers" yaml:"workers" envconfig:"WORKERS" validate:"min=0"`

	// Year overrides the current-year assumption for auction dates; 0 keeps
	// the current calendar year.
	Year int `json:"year" yaml:"year" envconfig:"YEAR" validate:"omitempty,min=1900,max=9999"`

	// FileTimeout bounds the processing of one file; 0 means no limit.
	FileTimeout Duration `json:"file_timeout" yaml:"file_timeout" envconfig:"FILE_TIMEOUT" validate:"min=0"`

	Log     LogConfig     `json:"log" yaml:"log" envconfig:"LOG"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" envconfig:"METRICS"`
}

// LogConfig controls the zerolog logger.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" envconfig:"LEVEL" validate:"oneof=trace debug info warn warning error off disabled"`
	Format string `json:"format" yaml:"format" envconfig:"FORMAT" validate:"oneof=console json"`
}

// MetricsConfig selects and configures the metrics backend.
type MetricsConfig struct {
	// Backend is one of: none, textfile, pushgateway, datadog.
	Backend        string `json:"backend" yaml:"backend" envconfig:"BACKEND" validate:"oneof=none textfile pushgateway datadog"`
	Job            string `json:"job" yaml:"job" envconfig:"JOB"`
	TextfilePath   string `json:"textfile_path" yaml:"textfile_path" envconfig:"TEXTFILE_PATH" validate:"required_if=Backend textfile"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url" envconfig:"PUSHGATEWAY_URL" validate:"required_if=Backend pushgateway"`
	DatadogAddr    string `json:"datadog_addr" yaml:"datadog_addr" envconfig:"DATADOG_ADDR" validate:"required_if=Backend datadog"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		Dir: DefaultDir,
		Log: LogConfig{Level: "info", Format: "console"},
		Metrics: MetricsConfig{
			Backend: "none",
			Job:     "auctions",
		},
	}
}

// Load builds a Config from defaults, the file at path (skipped when path is
// empty) and AUCTIONS_* environment variables, in that order. Flags are
// applied by the caller afterwards.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config from env: %w", err)
	}
	return cfg, nil
}

// decodeFile overlays the file's keys onto cfg. The format is chosen by
// extension: .json, .yaml or .yml.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("decode config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config %s: unsupported extension %q (want .json, .yaml or .yml)", path, ext)
	}
	return nil
}

// Duration is a time.Duration written as "30s", "2m" in files, environment
// variables and flags.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// Set implements flag.Value and envconfig.Setter.
func (d *Duration) Set(s string) error {
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(b []byte) error { return d.Set(string(b)) }
