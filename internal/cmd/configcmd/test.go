package configcmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/forumtext/api"
	"github.com/open-cli-collective/forumtext/internal/cmd/cmdutil"
	"github.com/open-cli-collective/forumtext/internal/config"
	"github.com/open-cli-collective/forumtext/pkg/posttext"
)

// NewCmdTest creates the config test command.
func NewCmdTest() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test fetching the configured topic",
		Long: `Fetch the first page of the configured topic, read its page count and run
the post filter over it.`,
		Example: `  # Test the configured topic
  forumtext config test`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := cmdutil.GlobalFlags(cmd)
			cfg, err := g.LoadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w (run 'forumtext init' to configure)", err)
			}
			return runTest(cmd.Context(), g.NoColor, cmd.OutOrStdout(), cfg, cmdutil.NewClient(cfg))
		},
	}

	return cmd
}

func runTest(ctx context.Context, noColor bool, w io.Writer, cfg *config.Config, client *api.Client) error {
	if noColor {
		color.NoColor = true
	}
	if ctx == nil {
		ctx = context.Background()
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	_, _ = fmt.Fprintf(w, "Fetching %s...\n", client.PageURL(0))

	page, err := client.GetPage(ctx, 0)
	if err != nil {
		var httpErr *api.HTTPError
		switch {
		case errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound:
			_, _ = red.Fprintln(w, "✗ Topic not found: 404")
			_, _ = fmt.Fprintln(w, "\nCheck the topic id with: forumtext config show")
			return fmt.Errorf("topic not found")
		case errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusForbidden:
			_, _ = red.Fprintln(w, "✗ Access denied: 403 Forbidden")
			_, _ = fmt.Fprintln(w, "\nThe board may require a login to read this forum.")
			return fmt.Errorf("access denied")
		case errors.As(err, &httpErr):
			_, _ = red.Fprintf(w, "✗ Unexpected response: %d\n", httpErr.StatusCode)
			return fmt.Errorf("unexpected status code: %d", httpErr.StatusCode)
		default:
			_, _ = red.Fprintln(w, "✗ Connection failed:", err)
			_, _ = fmt.Fprintln(w, "\nCheck your URL with: forumtext config show")
			_, _ = fmt.Fprintln(w, "Reconfigure with: forumtext init")
			return fmt.Errorf("connection failed: %w", err)
		}
	}
	_, _ = green.Fprintf(w, "✓ Fetched first page (%d bytes)\n", len(page.HTML))

	pages, err := api.PageCount(bytes.NewReader(page.HTML), client.PerPage())
	if err != nil {
		_, _ = red.Fprintln(w, "✗ Could not read pagination:", err)
		return err
	}
	_, _ = green.Fprintf(w, "✓ Topic has %d pages\n", pages)

	var text bytes.Buffer
	if err := posttext.Extract(bytes.NewReader(page.HTML), &text, cfg.FilterOptions()); err != nil {
		_, _ = red.Fprintln(w, "✗ Filter failed:", err)
		return fmt.Errorf("filter failed: %w", err)
	}
	if text.Len() == 0 {
		_, _ = red.Fprintln(w, "✗ No post text found on the first page")
		return fmt.Errorf("no posts found: is this a phpBB topic page?")
	}
	_, _ = green.Fprintf(w, "✓ Extracted %d bytes of post text\n", text.Len())

	return nil
}
