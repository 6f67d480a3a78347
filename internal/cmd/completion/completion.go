// Package completion provides shell completion generation commands.
package completion

import (
	"io"

	"github.com/spf13/cobra"
)

type shell struct {
	name    string
	long    string
	example string
	gen     func(root *cobra.Command, w io.Writer) error
}

var shells = []shell{
	{
		name: "bash",
		long: `To load completions in your current shell session:

  source <(forumtext completion bash)

To load completions for every new session:

  # Linux
  forumtext completion bash > /etc/bash_completion.d/forumtext

  # macOS (requires bash-completion)
  forumtext completion bash > $(brew --prefix)/etc/bash_completion.d/forumtext`,
		example: `  # Install permanently (Linux)
  forumtext completion bash | sudo tee /etc/bash_completion.d/forumtext > /dev/null`,
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenBashCompletion(w)
		},
	},
	{
		name: "zsh",
		long: `To load completions in your current shell session:

  source <(forumtext completion zsh)

To load completions for every new session, make sure compinit runs in
~/.zshrc and put the script on your fpath:

  forumtext completion zsh > "${fpath[1]}/_forumtext"`,
		example: `  # Install permanently
  mkdir -p ~/.zsh/completions
  forumtext completion zsh > ~/.zsh/completions/_forumtext`,
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenZshCompletion(w)
		},
	},
	{
		name: "fish",
		long: `To load completions in your current shell session:

  forumtext completion fish | source

To load completions for every new session:

  forumtext completion fish > ~/.config/fish/completions/forumtext.fish`,
		example: `  # Install permanently
  forumtext completion fish > ~/.config/fish/completions/forumtext.fish`,
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenFishCompletion(w, true)
		},
	},
	{
		name: "powershell",
		long: `To load completions in your current shell session:

  forumtext completion powershell | Out-String | Invoke-Expression

To load completions for every new session, add the output to your
PowerShell profile ($PROFILE).`,
		example: `  # Install permanently
  forumtext completion powershell >> $PROFILE`,
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenPowerShellCompletionWithDesc(w)
		},
	},
}

// NewCmdCompletion creates the completion command.
func NewCmdCompletion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for forumtext.

These scripts enable tab-completion for commands and flags.
See each sub-command's help for installation instructions.`,
	}

	for _, sh := range shells {
		cmd.AddCommand(newCmdShell(sh))
	}

	return cmd
}

func newCmdShell(sh shell) *cobra.Command {
	return &cobra.Command{
		Use:                   sh.name,
		Short:                 "Generate " + sh.name + " completion script",
		Long:                  "Generate " + sh.name + " completion script for forumtext.\n\n" + sh.long,
		Example:               sh.example,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sh.gen(cmd.Root(), cmd.OutOrStdout())
		},
	}
}
