// Package configcmd provides config management commands.
package configcmd

import (
	"github.com/spf13/cobra"
)

// envVars lists every environment variable that overrides the config file.
var envVars = []string{
	"FORUMTEXT_URL",
	"FORUMTEXT_FORUM",
	"FORUMTEXT_TOPIC",
	"FORUMTEXT_PER_PAGE",
	"FORUMTEXT_USER_AGENT",
	"FORUMTEXT_LOG_LEVEL",
}

// NewCmdConfig creates the config command.
func NewCmdConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage forumtext configuration",
		Long:  `Commands for viewing, testing, and clearing forumtext configuration.`,
	}

	cmd.AddCommand(NewCmdShow())
	cmd.AddCommand(NewCmdTest())
	cmd.AddCommand(NewCmdClear())

	return cmd
}
