// Package config loads the settings of the emojiart command from a YAML file,
// an optional .env file and EMOJIART_* environment variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Store kinds
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// StoreConfig selects where the autosaved document lives
type StoreConfig struct {
	Kind string `yaml:"kind" validate:"required,oneof=file memory redis"`
	// Dir holds Autosaved.emojiart for the file store; empty means the user config dir
	Dir           string `yaml:"dir"`
	RedisAddr     string `yaml:"redis_addr" validate:"required_if=Kind redis"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db" validate:"gte=0"`
	// Key is the datastore key of the redis store
	Key string `yaml:"key" validate:"omitempty,startswith=/"`
}

// FetchConfig tunes background retrieval
type FetchConfig struct {
	// Timeout of zero leaves fetches unbounded
	Timeout  time.Duration `yaml:"timeout" validate:"gte=0"`
	MaxBytes int64         `yaml:"max_bytes" validate:"gt=0"`
	Breaker  bool          `yaml:"breaker"`
}

// Config is the complete command configuration
type Config struct {
	Store         StoreConfig   `yaml:"store"`
	AutosaveDelay time.Duration `yaml:"autosave_delay" validate:"gt=0"`
	Fetch         FetchConfig   `yaml:"fetch"`
	LogLevel      string        `yaml:"log_level" validate:"oneof=debug info warn error"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Kind:      StoreFile,
			RedisAddr: "localhost:6379",
			Key:       "/emojiart/autosaved",
		},
		AutosaveDelay: 5 * time.Second,
		Fetch: FetchConfig{
			MaxBytes: 32 << 20,
		},
		LogLevel: "info",
	}
}

// Load reads path (skipped when empty), then envFile (skipped when absent),
// then the process environment, and validates the result
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config %s", path)
		}
	}

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, errors.Wrapf(err, "failed to load %s", envFile)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("EMOJIART_STORE"); ok {
		cfg.Store.Kind = v
	}
	if v, ok := os.LookupEnv("EMOJIART_STORE_DIR"); ok {
		cfg.Store.Dir = v
	}
	if v, ok := os.LookupEnv("EMOJIART_REDIS_ADDR"); ok {
		cfg.Store.RedisAddr = v
	}
	if v, ok := os.LookupEnv("EMOJIART_REDIS_PASSWORD"); ok {
		cfg.Store.RedisPassword = v
	}
	if v, ok := os.LookupEnv("EMOJIART_REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "EMOJIART_REDIS_DB")
		}
		cfg.Store.RedisDB = db
	}
	if v, ok := os.LookupEnv("EMOJIART_AUTOSAVE_DELAY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(err, "EMOJIART_AUTOSAVE_DELAY")
		}
		cfg.AutosaveDelay = d
	}
	if v, ok := os.LookupEnv("EMOJIART_FETCH_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(err, "EMOJIART_FETCH_TIMEOUT")
		}
		cfg.Fetch.Timeout = d
	}
	if v, ok := os.LookupEnv("EMOJIART_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	return nil
}

// Validate checks the configuration against its struct tags
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}
