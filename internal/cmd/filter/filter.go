// Package filter provides the offline filter command.
package filter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/net/html/charset"

	"github.com/open-cli-collective/forumtext/internal/cmd/cmdutil"
	"github.com/open-cli-collective/forumtext/internal/config"
	"github.com/open-cli-collective/forumtext/pkg/posttext"
)

type filterOptions struct {
	include config.Include

	stdin  io.Reader
	stdout io.Writer
}

// NewCmdFilter creates the filter command.
func NewCmdFilter() *cobra.Command {
	opts := &filterOptions{
		include: config.Defaults().Include,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
	}

	cmd := &cobra.Command{
		Use:   "filter [FILE]",
		Short: "Extract post text from a saved topic page",
		Long: `Run the post filter over a topic page saved on disk, or read from stdin
when FILE is omitted or "-". The text is written to stdout.`,
		Example: `  # Filter a saved page
  forumtext filter page-12.html

  # Keep code blocks, drop emoticons
  curl -s "$URL" | forumtext filter --code --smileys=false`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdutil.GlobalFlags(cmd).LoadConfig()
			if err != nil {
				return err
			}
			cmdutil.ApplyFilterFlags(cmd, opts.include, cfg)

			path := "-"
			if len(args) > 0 {
				path = args[0]
			}
			return runFilter(path, cfg.FilterOptions(), opts)
		},
	}

	cmdutil.AddFilterFlags(cmd, &opts.include)

	return cmd
}

func runFilter(path string, filterOpts posttext.Options, opts *filterOptions) error {
	in := opts.stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}

	// Saved pages carry their encoding in a BOM or <meta charset>.
	r, err := charset.NewReader(in, "")
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to detect page encoding: %w", err)
	}

	w := bufio.NewWriter(opts.stdout)
	if err := posttext.Extract(r, w, filterOpts); err != nil {
		_ = w.Flush()
		return err
	}
	return w.Flush()
}
