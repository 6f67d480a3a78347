// Package config provides configuration management for forumtext.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/open-cli-collective/forumtext/pkg/posttext"
)

// Defaults point at the xkcd "One True Thread".
const (
	DefaultURL          = "https://forums.xkcd.com/viewtopic.php"
	DefaultForum        = "7"
	DefaultTopic        = "101043"
	DefaultPostsPerPage = 40
	DefaultTimeout      = 30 * time.Second
	DefaultLogLevel     = "normal"
)

// LogLevels lists the accepted values of log_level.
var LogLevels = []string{"none", "normal", "debug"}

// Config holds the forumtext configuration.
type Config struct {
	URL          string        `yaml:"url"`
	Forum        string        `yaml:"forum,omitempty"`
	Topic        string        `yaml:"topic"`
	PostsPerPage int           `yaml:"posts_per_page"`
	UserAgent    string        `yaml:"user_agent,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
	LogLevel     string        `yaml:"log_level,omitempty"`
	Include      Include       `yaml:"include"`
}

// Include selects which optional post regions end up in the output.
type Include struct {
	Quotes        bool `yaml:"quotes"`
	Strikethrough bool `yaml:"strikethrough"`
	Spoilers      bool `yaml:"spoilers"`
	Code          bool `yaml:"code"`
	Smileys       bool `yaml:"smileys"`
}

// Defaults returns a configuration for the default topic with the filter's
// default inclusion flags.
func Defaults() *Config {
	opts := posttext.DefaultOptions()
	return &Config{
		URL:          DefaultURL,
		Forum:        DefaultForum,
		Topic:        DefaultTopic,
		PostsPerPage: DefaultPostsPerPage,
		Timeout:      DefaultTimeout,
		LogLevel:     DefaultLogLevel,
		Include: Include{
			Quotes:        opts.IncludeQuotes,
			Strikethrough: opts.IncludeStrikethrough,
			Spoilers:      opts.IncludeSpoilers,
			Code:          opts.IncludeCode,
			Smileys:       opts.IncludeSmileys,
		},
	}
}

// FilterOptions converts the inclusion flags to filter options.
func (c *Config) FilterOptions() posttext.Options {
	return posttext.Options{
		IncludeQuotes:        c.Include.Quotes,
		IncludeStrikethrough: c.Include.Strikethrough,
		IncludeSpoilers:      c.Include.Spoilers,
		IncludeCode:          c.Include.Code,
		IncludeSmileys:       c.Include.Smileys,
	}
}

// Validate checks that all required fields are present and valid.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("url is required")
	}
	if !strings.HasPrefix(c.URL, "https://") && !strings.HasPrefix(c.URL, "http://") {
		return errors.New("url must use http or https")
	}
	if c.Topic == "" {
		return errors.New("topic is required")
	}
	if c.PostsPerPage <= 0 {
		return errors.New("posts_per_page must be positive")
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.LogLevel != "" && !validLogLevel(c.LogLevel) {
		return fmt.Errorf("log_level must be one of %s", strings.Join(LogLevels, ", "))
	}

	return nil
}

// NormalizeURL ensures the URL points at the board's viewtopic.php script.
func (c *Config) NormalizeURL() {
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.URL != "" && !strings.HasSuffix(c.URL, ".php") {
		c.URL = c.URL + "/viewtopic.php"
	}
}

func validLogLevel(level string) bool {
	for _, l := range LogLevels {
		if l == level {
			return true
		}
	}
	return false
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
func (c *Config) LoadFromEnv() {
	if url := os.Getenv("FORUMTEXT_URL"); url != "" {
		c.URL = url
	}
	if forum := os.Getenv("FORUMTEXT_FORUM"); forum != "" {
		c.Forum = forum
	}
	if topic := os.Getenv("FORUMTEXT_TOPIC"); topic != "" {
		c.Topic = topic
	}
	if perPage := os.Getenv("FORUMTEXT_PER_PAGE"); perPage != "" {
		if n, err := strconv.Atoi(perPage); err == nil {
			c.PostsPerPage = n
		}
	}
	if ua := os.Getenv("FORUMTEXT_USER_AGENT"); ua != "" {
		c.UserAgent = ua
	}
	if level := os.Getenv("FORUMTEXT_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	// Try XDG config directory first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "forumtext", "config.yml")
	}

	// Fall back to ~/.config/forumtext/config.yml
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".forumtext", "config.yml")
	}

	return filepath.Join(home, ".config", "forumtext", "config.yml")
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path. Fields missing from
// the file keep their default values; unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadWithEnv loads configuration from file and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		// If file doesn't exist, start with defaults
		cfg = Defaults()
	}

	cfg.LoadFromEnv()
	return cfg, nil
}
