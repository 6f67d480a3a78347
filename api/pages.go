package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// PageURL returns the address of the topic page with the given zero-based index.
func (c *Client) PageURL(index int) string {
	params := url.Values{}
	if c.forum != "" {
		params.Set("f", c.forum)
	}
	params.Set("t", c.topic)
	params.Set("start", strconv.Itoa(index*c.perPage))

	return c.baseURL + "?" + params.Encode()
}

// GetPage fetches the topic page with the given zero-based index.
func (c *Client) GetPage(ctx context.Context, index int) (*Page, error) {
	if index < 0 {
		return nil, fmt.Errorf("invalid page index %d", index)
	}

	pageURL := c.PageURL(index)
	body, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	return &Page{
		Index: index,
		Start: index * c.perPage,
		URL:   pageURL,
		HTML:  body,
	}, nil
}
