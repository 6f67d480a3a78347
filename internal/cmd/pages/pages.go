// Package pages provides the pages command.
package pages

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/forumtext/api"
	"github.com/open-cli-collective/forumtext/internal/cmd/cmdutil"
	"github.com/open-cli-collective/forumtext/internal/view"
)

type pagesOptions struct {
	topic   cmdutil.TopicFlags
	globals cmdutil.Globals
	stdout  io.Writer
}

// NewCmdPages creates the pages command.
func NewCmdPages() *cobra.Command {
	opts := &pagesOptions{stdout: os.Stdout}

	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Show the number of pages in the topic",
		Long: `Fetch the first page of the configured topic and print how many pages
the topic has, read from its pagination block.`,
		Example: `  # Page count of the configured topic
  forumtext pages

  # Another topic, as JSON
  forumtext pages --topic 12345 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.globals = cmdutil.GlobalFlags(cmd)
			cfg, err := opts.globals.LoadConfig()
			if err != nil {
				return err
			}
			if err := opts.topic.Apply(cfg); err != nil {
				return err
			}
			return runPages(cmd.Context(), opts, cmdutil.NewClient(cfg))
		},
	}

	cmdutil.AddTopicFlags(cmd, &opts.topic)

	return cmd
}

func runPages(ctx context.Context, opts *pagesOptions, client *api.Client) error {
	if ctx == nil {
		ctx = context.Background()
	}

	renderer, err := opts.globals.Renderer()
	if err != nil {
		return err
	}
	renderer.SetWriter(opts.stdout)

	n, err := client.CountPages(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pages: %w", err)
	}

	switch renderer.Format() {
	case view.FormatJSON:
		return renderer.RenderJSON(struct {
			Pages        int    `json:"pages"`
			PostsPerPage int    `json:"posts_per_page"`
			LastPageURL  string `json:"last_page_url"`
		}{n, client.PerPage(), client.PageURL(n - 1)})
	case view.FormatPlain:
		renderer.RenderText(strconv.Itoa(n))
	default:
		renderer.RenderKeyValue("Pages", strconv.Itoa(n))
		renderer.RenderKeyValue("Last page", client.PageURL(n-1))
	}
	return nil
}
