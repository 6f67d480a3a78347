package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// pageOfPattern matches the "Page 1 of 1004" caption of the pagination block.
var pageOfPattern = regexp.MustCompile(`(?i)page\s+\d+\s+of\s+(\d+)`)

// CountPages fetches the first page of the topic and reads the number of
// pages from its pagination block.
func (c *Client) CountPages(ctx context.Context) (int, error) {
	page, err := c.GetPage(ctx, 0)
	if err != nil {
		return 0, err
	}

	return PageCount(bytes.NewReader(page.HTML), c.perPage)
}

// PageCount reads the number of topic pages from a page's pagination block.
// The last page is found from the largest start= offset among the pagination
// links, cross-checked with the "Page n of m" caption. A page without
// pagination is a single-page topic.
func PageCount(r io.Reader, perPage int) (int, error) {
	if perPage <= 0 {
		return 0, fmt.Errorf("invalid posts per page %d", perPage)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return 0, fmt.Errorf("failed to parse page: %w", err)
	}

	pages := 1
	pagination := doc.Find(".pagination")

	pagination.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		start, err := strconv.Atoi(u.Query().Get("start"))
		if err != nil || start < 0 {
			return
		}
		if n := start/perPage + 1; n > pages {
			pages = n
		}
	})

	if m := pageOfPattern.FindStringSubmatch(pagination.Text()); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > pages {
			pages = n
		}
	}

	return pages, nil
}
