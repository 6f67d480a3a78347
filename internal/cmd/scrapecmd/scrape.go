// Package scrapecmd provides the scrape command.
package scrapecmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/open-cli-collective/forumtext/internal/cmd/cmdutil"
	"github.com/open-cli-collective/forumtext/internal/config"
	"github.com/open-cli-collective/forumtext/internal/scrape"
	"github.com/open-cli-collective/forumtext/internal/view"
)

type scrapeOptions struct {
	pages     int
	output    string
	start     int
	keepGoing bool
	include   config.Include
	topic     cmdutil.TopicFlags
	globals   cmdutil.Globals

	stdout io.Writer
	stderr io.Writer
}

type failure struct {
	Page  int    `json:"page"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error"`
}

type summary struct {
	scrape.Result
	Output   string    `json:"output"`
	Failures []failure `json:"failures,omitempty"`
}

// NewCmdScrape creates the scrape command.
func NewCmdScrape() *cobra.Command {
	opts := &scrapeOptions{
		include: config.Defaults().Include,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	cmd := &cobra.Command{
		Use:   "scrape [PAGES] [OUTPUT]",
		Short: "Extract post text from topic pages",
		Long: `Fetch PAGES consecutive pages of the configured topic and write the text
of every post to OUTPUT.

PAGES defaults to every page from --start to the end of the topic, read from
the topic's pagination. OUTPUT defaults to stdout; "-" also means stdout.
Quoted replies, struck-through text and code blocks are left out unless
asked for; spoilers and emoticons are kept unless turned off.`,
		Example: `  # Scrape the whole topic to a file
  forumtext scrape 0 thread.txt

  # First 10 pages, keeping quotes, to stdout
  forumtext scrape 10 --quotes

  # Resume at page 500 and skip pages that fail
  forumtext scrape --start 500 --keep-going thread-tail.txt`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.parseArgs(args); err != nil {
				return err
			}
			opts.globals = cmdutil.GlobalFlags(cmd)

			cfg, err := opts.globals.LoadConfig()
			if err != nil {
				return err
			}
			if err := opts.topic.Apply(cfg); err != nil {
				return err
			}
			cmdutil.ApplyFilterFlags(cmd, opts.include, cfg)

			logger, err := cmdutil.NewLogger(cfg, opts.globals.NoColor)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return runScrape(cmd.Context(), opts, cfg, cmdutil.NewClient(cfg), logger)
		},
	}

	cmd.Flags().IntVar(&opts.start, "start", 0, "index of the first page to scrape")
	cmd.Flags().BoolVar(&opts.keepGoing, "keep-going", false, "skip pages that fail instead of stopping")
	cmdutil.AddFilterFlags(cmd, &opts.include)
	cmdutil.AddTopicFlags(cmd, &opts.topic)

	return cmd
}

func (o *scrapeOptions) parseArgs(args []string) error {
	o.output = "-"
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("invalid page count %q: must be a non-negative number", args[0])
		}
		o.pages = n
	}
	if len(args) > 1 && args[1] != "" {
		o.output = args[1]
	}
	return nil
}

func runScrape(ctx context.Context, opts *scrapeOptions, cfg *config.Config, client scrape.PageSource, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	renderer, err := opts.globals.Renderer()
	if err != nil {
		return err
	}
	renderer.SetWriter(opts.stderr)

	out := opts.stdout
	var file *os.File
	if opts.output != "-" {
		file, err = os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	res, runErr := scrape.Run(ctx, client, scrape.Options{
		Start:     opts.start,
		Pages:     opts.pages,
		KeepGoing: opts.keepGoing,
		Filter:    cfg.FilterOptions(),
	}, out, logger)

	if file != nil {
		if err := file.Sync(); err != nil && runErr == nil {
			runErr = fmt.Errorf("failed to flush output file: %w", err)
		}
	}

	if runErr != nil && !opts.keepGoing {
		return runErr
	}

	failures := collectFailures(runErr)
	dest := opts.output
	if dest == "-" {
		dest = "stdout"
	}

	if renderer.Format() == view.FormatJSON {
		if err := renderer.RenderJSON(summary{Result: res, Output: dest, Failures: failures}); err != nil {
			return err
		}
	} else {
		renderer.Success(fmt.Sprintf("Scraped %d of %d pages (%s) to %s", res.Scraped, res.Pages, view.HumanBytes(res.Bytes), dest))
		if len(failures) > 0 {
			renderer.Warning(fmt.Sprintf("%d pages skipped", len(failures)))
			rows := make([][]string, 0, len(failures))
			for _, f := range failures {
				rows = append(rows, []string{strconv.Itoa(f.Page), f.URL, view.Truncate(f.Error, 100)})
			}
			renderer.RenderTable([]string{"PAGE", "URL", "ERROR"}, rows)
		}
	}

	if runErr != nil {
		if len(failures) == len(multierr.Errors(runErr)) {
			return fmt.Errorf("%d of %d pages failed", len(failures), res.Pages)
		}
		return runErr
	}
	return nil
}

// collectFailures lists the per-page errors accumulated in keep-going mode.
func collectFailures(err error) []failure {
	var failures []failure
	for _, e := range multierr.Errors(err) {
		var pe *scrape.PageError
		if !errors.As(e, &pe) {
			continue
		}
		failures = append(failures, failure{Page: pe.Index, URL: pe.URL, Error: pe.Err.Error()})
	}
	return failures
}
