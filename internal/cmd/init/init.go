// Package init provides the init command for forumtext.
package init

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/forumtext/api"
	"github.com/open-cli-collective/forumtext/internal/cmd/cmdutil"
	"github.com/open-cli-collective/forumtext/internal/config"
)

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	var (
		url      string
		topic    string
		noVerify bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize forumtext configuration",
		Long: `Initialize forumtext with the topic to scrape.

This command will guide you through setting the forum's viewtopic.php URL,
the forum and topic ids and the number of posts per page. The configuration
will be saved to ~/.config/forumtext/config.yml.

The ids are the f= and t= parameters of the topic's address, e.g.
  https://forums.xkcd.com/viewtopic.php?f=7&t=101043`,
		Example: `  # Interactive setup
  forumtext init

  # Pre-populate URL and topic
  forumtext init --url https://forums.example.com --topic 4242`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmdutil.GlobalFlags(cmd).ConfigFile(), url, topic, noVerify)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Forum URL (e.g., https://forums.example.com/viewtopic.php)")
	cmd.Flags().StringVar(&topic, "topic", "", "Topic id (t= parameter)")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip fetching the topic")

	return cmd
}

func runInit(configPath, prefillURL, prefillTopic string, noVerify bool) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		err := huh.NewConfirm().
			Title("Configuration already exists").
			Description(fmt.Sprintf("Overwrite %s?", configPath)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Initialization cancelled.")
			return nil
		}
	}

	cfg := config.Defaults()

	// Use prefilled values or prompt
	if prefillURL != "" {
		cfg.URL = prefillURL
	}
	if prefillTopic != "" {
		cfg.Topic = prefillTopic
	}
	perPage := strconv.Itoa(cfg.PostsPerPage)

	// Build the form
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Forum URL").
				Description("The board's viewtopic.php address").
				Placeholder("https://forums.example.com/viewtopic.php").
				Value(&cfg.URL).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("URL is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Forum id (optional)").
				Description("The f= parameter of the topic address").
				Value(&cfg.Forum),

			huh.NewInput().
				Title("Topic id").
				Description("The t= parameter of the topic address").
				Value(&cfg.Topic).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("topic is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Posts per page").
				Description("How many posts the board shows on one topic page").
				Value(&perPage).
				Validate(validatePerPage),
		),
		huh.NewGroup(includeFields(&cfg.Include)...),
	)

	if err := form.Run(); err != nil {
		return err
	}

	cfg.PostsPerPage, _ = strconv.Atoi(perPage)
	cfg.NormalizeURL()

	// Validate
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Verify the topic unless skipped
	if !noVerify {
		fmt.Print("Fetching topic... ")
		pages, err := verifyTopic(context.Background(), cmdutil.NewClient(cfg))
		if err != nil {
			fmt.Println("failed!")
			return fmt.Errorf("topic verification failed: %w", err)
		}
		fmt.Printf("found %d pages.\n", pages)
	}

	// Save configuration
	if err := cfg.Save(configPath); err != nil {
		return err
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	fmt.Println("\nYou're all set! Try running:")
	fmt.Println("  forumtext pages")
	fmt.Println("  forumtext scrape 1")

	return nil
}

func validatePerPage(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("posts per page must be a positive number")
	}
	return nil
}

// verifyTopic fetches the first page of the topic and returns its page count.
func verifyTopic(ctx context.Context, client *api.Client) (int, error) {
	page, err := client.GetPage(ctx, 0)
	if err != nil {
		var httpErr *api.HTTPError
		if errors.As(err, &httpErr) {
			switch httpErr.StatusCode {
			case http.StatusNotFound:
				return 0, fmt.Errorf("topic not found - check the topic id")
			case http.StatusForbidden:
				return 0, fmt.Errorf("access denied - the forum may require a login")
			default:
				return 0, fmt.Errorf("unexpected status code: %d", httpErr.StatusCode)
			}
		}
		return 0, err
	}

	if !bytes.Contains(page.HTML, []byte(`class="content"`)) {
		return 0, fmt.Errorf("no posts found - is this a phpBB viewtopic.php address?")
	}

	return api.PageCount(bytes.NewReader(page.HTML), client.PerPage())
}

// includeFields asks for every optional post region, keyed like the config file.
func includeFields(inc *config.Include) []huh.Field {
	return []huh.Field{
		huh.NewConfirm().
			Key("quotes").
			Title("Include quoted replies?").
			Value(&inc.Quotes),
		huh.NewConfirm().
			Key("strikethrough").
			Title("Include struck-through text?").
			Value(&inc.Strikethrough),
		huh.NewConfirm().
			Key("spoilers").
			Title("Include spoilers?").
			Value(&inc.Spoilers),
		huh.NewConfirm().
			Key("code").
			Title("Include code blocks?").
			Value(&inc.Code),
		huh.NewConfirm().
			Key("smileys").
			Title("Replace emoticons with their text?").
			Value(&inc.Smileys),
	}
}
