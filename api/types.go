// Package api provides the HTTP client for phpBB-style forum topics.
package api

import "fmt"

// Page is one fetched page of a topic.
type Page struct {
	Index int    // zero-based page index
	Start int    // offset of the first post on the page
	URL   string // address the page was fetched from
	HTML  []byte // page markup, UTF-8
}

// HTTPError represents a non-success response from the forum.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d for %s: %s", e.StatusCode, e.URL, e.Body)
	}
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}
