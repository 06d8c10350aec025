package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hairizuanbinnoorazman/project-viewer-sync/document/gist"
)

// Config holds all application configuration.
type Config struct {
	Remote RemoteConfig
	Log    LogConfig
	HTTP   HTTPConfig
	Gist   GistConfig
}

// RemoteConfig describes the gist API.
type RemoteConfig struct {
	BaseURL     string
	Description string
	Timeout     time.Duration // zero waits indefinitely
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// HTTPConfig holds the HTTP agent configuration.
type HTTPConfig struct {
	Host         string
	Port         int
	APITokenHash string
}

// GistConfig seeds the state of the one-shot fetch and update commands.
type GistConfig struct {
	Token   string
	ID      string
	SetName string
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("gistsync")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/gistsync")
	}

	v.SetEnvPrefix("GISTSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("remote.base_url", gist.DefaultBaseURL)
	v.SetDefault("remote.description", gist.DefaultDescription)
	v.SetDefault("remote.timeout", "0s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 14)

	v.SetDefault("http.host", "127.0.0.1")
	v.SetDefault("http.port", 8787)
	v.SetDefault("http.api_token_hash", "")

	v.SetDefault("gist.token", "")
	v.SetDefault("gist.id", "")
	v.SetDefault("gist.set_name", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config

	config.Remote.BaseURL = v.GetString("remote.base_url")
	config.Remote.Description = v.GetString("remote.description")
	config.Remote.Timeout = v.GetDuration("remote.timeout")

	config.Log.Level = v.GetString("log.level")
	config.Log.File = v.GetString("log.file")
	config.Log.MaxSizeMB = v.GetInt("log.max_size_mb")
	config.Log.MaxBackups = v.GetInt("log.max_backups")
	config.Log.MaxAgeDays = v.GetInt("log.max_age_days")

	config.HTTP.Host = v.GetString("http.host")
	config.HTTP.Port = v.GetInt("http.port")
	config.HTTP.APITokenHash = v.GetString("http.api_token_hash")

	config.Gist.Token = v.GetString("gist.token")
	config.Gist.ID = v.GetString("gist.id")
	config.Gist.SetName = v.GetString("gist.set_name")

	return &config, nil
}
