// Package scrape drives the post filter over a sequence of topic pages.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/open-cli-collective/forumtext/api"
	"github.com/open-cli-collective/forumtext/pkg/posttext"
)

// PageSource supplies topic pages by zero-based index.
type PageSource interface {
	GetPage(ctx context.Context, index int) (*api.Page, error)
	PageURL(index int) string
	PerPage() int
}

// Options controls a scrape run.
type Options struct {
	Start     int  // index of the first page
	Pages     int  // number of pages; 0 reads the count from the topic
	KeepGoing bool // skip failed pages instead of stopping
	Filter    posttext.Options
}

// Result summarizes a run.
type Result struct {
	Pages   int   `json:"pages"`
	Scraped int   `json:"scraped"`
	Failed  int   `json:"failed"`
	Bytes   int64 `json:"bytes"`
}

// PageError is a failure to fetch or filter one page.
type PageError struct {
	Index int
	URL   string
	Err   error
}

func (e *PageError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("page %d (%s): %v", e.Index, e.URL, e.Err)
	}
	return fmt.Sprintf("page %d: %v", e.Index, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// Run fetches pages one after another, filters each with a fresh filter and
// writes the text of every successful page to out. Page text is buffered so
// that a failed page contributes nothing. Without KeepGoing the first page
// failure ends the run; with it, failures are collected and returned together
// once all pages were tried.
func Run(ctx context.Context, src PageSource, opts Options, out io.Writer, logger *zap.Logger) (Result, error) {
	var res Result

	if opts.Start < 0 {
		return res, fmt.Errorf("invalid start page %d", opts.Start)
	}
	if opts.Pages < 0 {
		return res, fmt.Errorf("invalid page count %d", opts.Pages)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// The page fetched to read the page count is reused as page 0.
	var first *api.Page
	total := opts.Pages
	if total == 0 {
		page, err := src.GetPage(ctx, 0)
		if err != nil {
			return res, fmt.Errorf("failed to count pages: %w", err)
		}
		n, err := api.PageCount(bytes.NewReader(page.HTML), src.PerPage())
		if err != nil {
			return res, fmt.Errorf("failed to count pages: %w", err)
		}
		first = page
		total = n - opts.Start
		logger.Debug("Discovered page count", zap.Int("pages", n), zap.Int("start", opts.Start))
		if total <= 0 {
			logger.Info("Nothing to scrape", zap.Int("pages", n), zap.Int("start", opts.Start))
			return res, nil
		}
	}
	res.Pages = total

	var (
		buf  bytes.Buffer
		errs error
	)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return res, multierr.Append(errs, err)
		}

		index := opts.Start + i
		logger.Info(fmt.Sprintf("Page %d/%d - %.2f%%", i, total, 100*float64(i)/float64(total)),
			zap.Int("page", index), zap.Int("total", total), zap.String("url", src.PageURL(index)))

		var page *api.Page
		if index == 0 {
			page = first
		}

		buf.Reset()
		if err := scrapePage(ctx, src, page, index, &buf, opts.Filter); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, multierr.Append(errs, ctxErr)
			}
			res.Failed++
			if !opts.KeepGoing {
				return res, err
			}
			logger.Warn("Skipping page", zap.Int("page", index), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}

		n, err := out.Write(buf.Bytes())
		res.Bytes += int64(n)
		if err != nil {
			return res, multierr.Append(errs, fmt.Errorf("failed to write output: %w", err))
		}
		res.Scraped++
		logger.Debug("Page filtered", zap.Int("page", index), zap.Int("bytes", n))
	}

	logger.Info("Done", zap.Int("scraped", res.Scraped), zap.Int("failed", res.Failed), zap.Int64("bytes", res.Bytes))
	return res, errs
}

// scrapePage filters page into w, fetching it first when page is nil.
func scrapePage(ctx context.Context, src PageSource, page *api.Page, index int, w io.Writer, opts posttext.Options) error {
	if page == nil {
		var err error
		page, err = src.GetPage(ctx, index)
		if err != nil {
			return &PageError{Index: index, Err: err}
		}
	}

	if err := posttext.Stream(bytes.NewReader(page.HTML), posttext.New(w, opts)); err != nil {
		return &PageError{Index: index, URL: page.URL, Err: err}
	}
	return nil
}
