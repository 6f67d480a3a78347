package configcmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/open-cli-collective/forumtext/internal/cmd/cmdutil"
	"github.com/open-cli-collective/forumtext/internal/config"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the effective forumtext configuration and where each value comes from.`,
		Example: `  # Show current config
  forumtext config show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := cmdutil.GlobalFlags(cmd)
			return runShow(g.ConfigFile(), g.NoColor, cmd.OutOrStdout())
		},
	}

	return cmd
}

func runShow(configPath string, noColor bool, w io.Writer) error {
	if noColor {
		color.NoColor = true
	}

	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// keys present in the file, to tell file values from defaults
	fileKeys := map[string]interface{}{}
	data, fileErr := os.ReadFile(configPath)
	if fileErr == nil {
		_ = yaml.Unmarshal(data, &fileKeys)
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	printField := func(label, value, key, envVar string) {
		_, _ = bold.Fprintf(w, "%-16s", label+":")
		if value == "" {
			_, _ = dim.Fprintln(w, "-")
			return
		}
		_, _ = fmt.Fprint(w, value)

		source := "default"
		if _, ok := fileKeys[key]; ok {
			source = "config"
		}
		if envVar != "" && os.Getenv(envVar) != "" {
			source = envVar
		}
		_, _ = dim.Fprintf(w, "  (source: %s)\n", source)
	}

	include, _ := fileKeys["include"].(map[string]interface{})
	printInclude := func(label string, value bool, key string) {
		_, _ = bold.Fprintf(w, "%-16s", label+":")
		_, _ = fmt.Fprint(w, strconv.FormatBool(value))
		source := "default"
		if _, ok := include[key]; ok {
			source = "config"
		}
		_, _ = dim.Fprintf(w, "  (source: %s)\n", source)
	}

	printField("URL", cfg.URL, "url", "FORUMTEXT_URL")
	printField("Forum", cfg.Forum, "forum", "FORUMTEXT_FORUM")
	printField("Topic", cfg.Topic, "topic", "FORUMTEXT_TOPIC")
	printField("Posts per page", strconv.Itoa(cfg.PostsPerPage), "posts_per_page", "FORUMTEXT_PER_PAGE")
	printField("User agent", cfg.UserAgent, "user_agent", "FORUMTEXT_USER_AGENT")
	printField("Timeout", cfg.Timeout.String(), "timeout", "")
	printField("Log level", cfg.LogLevel, "log_level", "FORUMTEXT_LOG_LEVEL")

	_, _ = fmt.Fprintln(w)
	printInclude("Quotes", cfg.Include.Quotes, "quotes")
	printInclude("Strikethrough", cfg.Include.Strikethrough, "strikethrough")
	printInclude("Spoilers", cfg.Include.Spoilers, "spoilers")
	printInclude("Code", cfg.Include.Code, "code")
	printInclude("Smileys", cfg.Include.Smileys, "smileys")

	_, _ = fmt.Fprintln(w)
	_, _ = dim.Fprintf(w, "Config file: %s\n", configPath)
	if fileErr != nil {
		_, _ = dim.Fprintln(w, "(file not found)")
	}

	if err := cfg.Validate(); err != nil {
		_, _ = color.New(color.FgRed).Fprintf(w, "✗ %v\n", err)
	}

	return nil
}
