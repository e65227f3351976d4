// Package config assembles worker configuration from an optional YAML file
// and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the resolved worker configuration.
type Config struct {
	// TopicsConnection identifies the broker serving the lemmas and dictionary-articles topics.
	TopicsConnection string `mapstructure:"topics_connection" yaml:"topics_connection"`
	// QueuesConnection identifies the broker serving the annotated-paragraphs queue.
	QueuesConnection string `mapstructure:"queues_connection" yaml:"queues_connection"`
	// ModelName selects the annotation model.
	ModelName string `mapstructure:"model_name" yaml:"model_name"`
	// ModelDir is searched before the built-in models.
	ModelDir string `mapstructure:"model_dir" yaml:"model_dir"`

	KeyPrefix     string `mapstructure:"key_prefix" yaml:"key_prefix"`
	InboundStream string `mapstructure:"inbound_stream" yaml:"inbound_stream"`
	ConsumerGroup string `mapstructure:"consumer_group" yaml:"consumer_group"`
	ConsumerName  string `mapstructure:"consumer_name" yaml:"consumer_name"`

	MaxFilterLength     int  `mapstructure:"max_filter_length" yaml:"max_filter_length"`
	MaxFilterParameters int  `mapstructure:"max_filter_parameters" yaml:"max_filter_parameters"`
	KeepStopwords       bool `mapstructure:"keep_stopwords" yaml:"keep_stopwords"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	HTTPAddr  string `mapstructure:"http_addr" yaml:"http_addr"`
}

// Default returns the configuration used when nothing overrides a field.
func Default() Config {
	return Config{
		TopicsConnection: "redis://localhost:6379/0",
		QueuesConnection: "redis://localhost:6379/0",
		ModelName:        "en_basic",
		KeyPrefix:        "polyglot:",
		InboundStream:    "paragraphs",
		ConsumerGroup:    "polyglot",
		MaxFilterLength:  1024,
		LogLevel:         "info",
		LogFormat:        "text",
		HTTPAddr:         ":8080",
	}
}

// envKeys maps environment variables to config keys. The first three names
// are the ones the hosting runtime has always provided.
var envKeys = map[string]string{
	"WordTopicsConnection":           "topics_connection",
	"TextQueuesConnection":           "queues_connection",
	"ModelName":                      "model_name",
	"POLYGLOT_TOPICS_CONNECTION":     "topics_connection",
	"POLYGLOT_QUEUES_CONNECTION":     "queues_connection",
	"POLYGLOT_MODEL_NAME":            "model_name",
	"POLYGLOT_MODEL_DIR":             "model_dir",
	"POLYGLOT_KEY_PREFIX":            "key_prefix",
	"POLYGLOT_INBOUND_STREAM":        "inbound_stream",
	"POLYGLOT_CONSUMER_GROUP":        "consumer_group",
	"POLYGLOT_CONSUMER_NAME":         "consumer_name",
	"POLYGLOT_MAX_FILTER_LENGTH":     "max_filter_length",
	"POLYGLOT_MAX_FILTER_PARAMETERS": "max_filter_parameters",
	"POLYGLOT_KEEP_STOPWORDS":        "keep_stopwords",
	"POLYGLOT_LOG_LEVEL":             "log_level",
	"POLYGLOT_LOG_FORMAT":            "log_format",
	"POLYGLOT_HTTP_ADDR":             "http_addr",
}

// envOrder fixes precedence: POLYGLOT_* names win over the runtime names.
func envOrder() []string {
	var legacy, prefixed []string
	for name := range envKeys {
		if strings.HasPrefix(name, "POLYGLOT_") {
			prefixed = append(prefixed, name)
		} else {
			legacy = append(legacy, name)
		}
	}
	return append(legacy, prefixed...)
}

// Load reads path (if non-empty) and overlays the environment.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	values := map[string]any{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &values); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	for _, name := range envOrder() {
		if v, ok := lookup(name); ok && v != "" {
			values[envKeys[name]] = v
		}
	}

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(values); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks required fields.
func (c Config) Validate() error {
	var errs []error
	if c.TopicsConnection == "" {
		errs = append(errs, errors.New("topics connection is required"))
	}
	if c.QueuesConnection == "" {
		errs = append(errs, errors.New("queues connection is required"))
	}
	if c.MaxFilterLength < 0 || c.MaxFilterParameters < 0 {
		errs = append(errs, errors.New("filter limits must not be negative"))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
