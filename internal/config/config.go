// SPDX-License-Identifier: Apache-2.0

// Package config loads insightviz settings from an optional YAML file, a .env
// file and INSIGHTVIZ_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/appinsight/insightviz/internal/analytics"
	"github.com/appinsight/insightviz/internal/logging"
)

const EnvPrefix = "INSIGHTVIZ"

type Config struct {
	Convention   string       `mapstructure:"convention" yaml:"convention"`
	VerifyOutput bool         `mapstructure:"verify_output" yaml:"verify_output"`
	Log          LogConfig    `mapstructure:"log" yaml:"log"`
	Server       ServerConfig `mapstructure:"server" yaml:"server"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type ServerConfig struct {
	// HTTPAddr switches the MCP server from stdio to streamable HTTP.
	HTTPAddr string `mapstructure:"http_addr" yaml:"http_addr"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Convention: analytics.ConventionDashboard,
		Log:        LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads configuration. path may be empty, in which case only ./.env and
// the environment are consulted.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()
	def := Default()
	v.SetDefault("convention", def.Convention)
	v.SetDefault("verify_output", def.VerifyOutput)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("server.http_addr", def.Server.HTTPAddr)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate rejects unknown conventions and log settings.
func (c *Config) Validate() error {
	if _, err := analytics.LookupConvention(c.Convention); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
