// Package root provides the root command for the forumtext CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/forumtext/internal/cmd/completion"
	"github.com/open-cli-collective/forumtext/internal/cmd/configcmd"
	"github.com/open-cli-collective/forumtext/internal/cmd/filter"
	initcmd "github.com/open-cli-collective/forumtext/internal/cmd/init"
	"github.com/open-cli-collective/forumtext/internal/cmd/pages"
	"github.com/open-cli-collective/forumtext/internal/cmd/scrapecmd"
	"github.com/open-cli-collective/forumtext/internal/version"
)

// NewCmdRoot creates the root command for forumtext.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forumtext",
		Short: "Extract plain post text from forum topics",
		Long: `forumtext downloads the pages of a phpBB topic and keeps only what the
posters wrote: quoted replies, struck-through text, spoilers, code blocks and
attachments are filtered out on request, emoticons become their text.

The output is plain UTF-8, one line per post line, ready for text
statistics such as word-chain generators.

Get started by running: forumtext init`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	// Global flags
	cmd.PersistentFlags().String("config", "", "config file (default: ~/.config/forumtext/config.yml)")
	cmd.PersistentFlags().String("format", "table", "summary format: table, json, plain")
	cmd.PersistentFlags().String("log-level", "", "log level: none, normal, debug (default from config)")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	cmd.SetVersionTemplate(version.String() + "\n")

	// Subcommands
	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(scrapecmd.NewCmdScrape())
	cmd.AddCommand(filter.NewCmdFilter())
	cmd.AddCommand(pages.NewCmdPages())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}
