// Package config loads framework configuration from an optional file and
// the environment via viper, validating the result with go-playground/validator
// (SPEC_FULL.md A2). Grounded on the precedence and Load/Validate split
// the dittofs config package uses, generalized from its filesystem config
// to this framework's transport/observe/bus tunables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds every runtime-tunable knob the framework exposes.
type Config struct {
	UDPListenAddr      string `mapstructure:"udp_listen_addr" validate:"required"`
	TCPListenAddr      string `mapstructure:"tcp_listen_addr" validate:"required"`
	UDPWorkerProcesses int    `mapstructure:"udp_worker_processes" validate:"min=1"`
	UDPWorkerThreads   int    `mapstructure:"udp_worker_threads" validate:"min=1"`

	ObserveMaxAge        time.Duration `mapstructure:"observe_max_age" validate:"min=0"`
	ObserveSweepInterval time.Duration `mapstructure:"observe_sweep_interval" validate:"min=0"`

	MessageBufferCount int           `mapstructure:"message_buffer_count" validate:"min=0"`
	MessageBufferTTL   time.Duration `mapstructure:"message_buffer_ttl" validate:"min=0"`

	MaxMessageSize uint32 `mapstructure:"max_message_size" validate:"min=0"`

	LogLevel string `mapstructure:"log_level"`
}

// Default returns a Config pre-filled with the framework's defaults.
func Default() *Config {
	return &Config{
		UDPListenAddr:        ":5683",
		TCPListenAddr:        ":5683",
		UDPWorkerProcesses:   1,
		UDPWorkerThreads:     4,
		ObserveMaxAge:        5 * time.Minute,
		ObserveSweepInterval: 30 * time.Second,
		MessageBufferCount:   100,
		MessageBufferTTL:     300 * time.Second,
		MaxMessageSize:       8388864,
		LogLevel:             "info",
	}
}

var validate = validator.New()

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Load reads configuration from configPath (if non-empty and present),
// environment variables prefixed COAPKIT_, and falls back to Default for
// anything unset, then validates the result. Precedence, highest to
// lowest: environment, config file, defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("COAPKIT")
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("udp_listen_addr", def.UDPListenAddr)
	v.SetDefault("tcp_listen_addr", def.TCPListenAddr)
	v.SetDefault("udp_worker_processes", def.UDPWorkerProcesses)
	v.SetDefault("udp_worker_threads", def.UDPWorkerThreads)
	v.SetDefault("observe_max_age", def.ObserveMaxAge)
	v.SetDefault("observe_sweep_interval", def.ObserveSweepInterval)
	v.SetDefault("message_buffer_count", def.MessageBufferCount)
	v.SetDefault("message_buffer_ttl", def.MessageBufferTTL)
	v.SetDefault("max_message_size", def.MaxMessageSize)
	v.SetDefault("log_level", def.LogLevel)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config: read %s: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
