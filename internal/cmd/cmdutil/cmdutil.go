// Package cmdutil holds the plumbing shared by forumtext commands: global
// flags, config loading, client and logger construction.
package cmdutil

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/open-cli-collective/forumtext/api"
	"github.com/open-cli-collective/forumtext/internal/config"
	"github.com/open-cli-collective/forumtext/internal/logging"
	"github.com/open-cli-collective/forumtext/internal/view"
)

// Globals are the values of the root command's persistent flags.
type Globals struct {
	ConfigPath string
	NoColor    bool
	LogLevel   string
	Format     string
}

// GlobalFlags reads the persistent flags visible from cmd.
func GlobalFlags(cmd *cobra.Command) Globals {
	var g Globals
	g.ConfigPath, _ = cmd.Flags().GetString("config")
	g.NoColor, _ = cmd.Flags().GetBool("no-color")
	g.LogLevel, _ = cmd.Flags().GetString("log-level")
	g.Format, _ = cmd.Flags().GetString("format")
	return g
}

// ConfigFile returns the --config path or the default location.
func (g Globals) ConfigFile() string {
	if g.ConfigPath != "" {
		return g.ConfigPath
	}
	return config.DefaultConfigPath()
}

// LoadConfig loads the config file with environment overrides. A --log-level
// flag takes precedence over both.
func (g Globals) LoadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(g.ConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w (run 'forumtext init' to configure)", err)
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	return cfg, nil
}

// Renderer returns a summary renderer honouring --format and --no-color.
func (g Globals) Renderer() (*view.Renderer, error) {
	if err := view.ValidateFormat(g.Format); err != nil {
		return nil, err
	}
	return view.NewRenderer(view.Format(g.Format), g.NoColor), nil
}

// NewClient builds a forum client for the configured topic.
func NewClient(cfg *config.Config) *api.Client {
	client := api.NewClient(cfg.URL, cfg.Forum, cfg.Topic, cfg.PostsPerPage)
	client.SetUserAgent(cfg.UserAgent)
	client.SetTimeout(cfg.Timeout)
	return client
}

// NewLogger builds the stderr logger for the configured level.
func NewLogger(cfg *config.Config, noColor bool) (*zap.Logger, error) {
	return logging.New(cfg.LogLevel, os.Stderr, !noColor && logging.EnableColorOutput(os.Stderr))
}

// AddFilterFlags registers the region inclusion flags shared by scrape and
// filter.
func AddFilterFlags(cmd *cobra.Command, inc *config.Include) {
	cmd.Flags().BoolVarP(&inc.Quotes, "quotes", "q", inc.Quotes, "include quoted replies")
	cmd.Flags().BoolVarP(&inc.Strikethrough, "strike", "s", inc.Strikethrough, "include struck-through text")
	cmd.Flags().BoolVarP(&inc.Spoilers, "spoilers", "p", inc.Spoilers, "include spoiler contents")
	cmd.Flags().BoolVarP(&inc.Code, "code", "c", inc.Code, "include code blocks")
	cmd.Flags().BoolVarP(&inc.Smileys, "smileys", "m", inc.Smileys, "replace emoticon images with their text")
}

// ApplyFilterFlags copies the inclusion flags the user set explicitly over
// the configured values.
func ApplyFilterFlags(cmd *cobra.Command, flags config.Include, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("quotes") {
		cfg.Include.Quotes = flags.Quotes
	}
	if changed("strike") {
		cfg.Include.Strikethrough = flags.Strikethrough
	}
	if changed("spoilers") {
		cfg.Include.Spoilers = flags.Spoilers
	}
	if changed("code") {
		cfg.Include.Code = flags.Code
	}
	if changed("smileys") {
		cfg.Include.Smileys = flags.Smileys
	}
}

// TopicFlags override the configured topic location.
type TopicFlags struct {
	URL     string
	Forum   string
	Topic   string
	PerPage int
}

// AddTopicFlags registers --url, --forum, --topic and --per-page.
func AddTopicFlags(cmd *cobra.Command, tf *TopicFlags) {
	cmd.Flags().StringVar(&tf.URL, "url", "", "forum viewtopic.php URL")
	cmd.Flags().StringVar(&tf.Forum, "forum", "", "forum id (f= parameter)")
	cmd.Flags().StringVar(&tf.Topic, "topic", "", "topic id (t= parameter)")
	cmd.Flags().IntVar(&tf.PerPage, "per-page", 0, "posts per topic page")
}

// Apply copies the non-empty overrides onto cfg and validates the result.
func (tf TopicFlags) Apply(cfg *config.Config) error {
	if tf.URL != "" {
		cfg.URL = tf.URL
		cfg.NormalizeURL()
	}
	if tf.Forum != "" {
		cfg.Forum = tf.Forum
	}
	if tf.Topic != "" {
		cfg.Topic = tf.Topic
	}
	if tf.PerPage != 0 {
		cfg.PostsPerPage = tf.PerPage
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w (run 'forumtext init' to configure)", err)
	}
	return nil
}
