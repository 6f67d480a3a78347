package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/open-cli-collective/forumtext/api"
	"github.com/open-cli-collective/forumtext/pkg/posttext"
)

type fakeSource struct {
	pages     map[int]string
	fetchErrs map[int]error
	requested []int
	onGet     func(index int)
}

func (s *fakeSource) GetPage(_ context.Context, index int) (*api.Page, error) {
	s.requested = append(s.requested, index)
	if s.onGet != nil {
		s.onGet(index)
	}
	if err := s.fetchErrs[index]; err != nil {
		return nil, err
	}
	return &api.Page{
		Index: index,
		URL:   s.PageURL(index),
		HTML:  []byte(s.pages[index]),
	}, nil
}

func (s *fakeSource) PageURL(index int) string {
	return "https://forum.example.com/viewtopic.php?start=" + strconv.Itoa(index*s.PerPage())
}

func (s *fakeSource) PerPage() int {
	return 40
}

func post(text string) string {
	return `<div class="author">someone</div><div class="content">` + text + `</div>`
}

// newSource builds an n page topic whose pages carry a "Page 1 of n" caption.
func newSource(n int) *fakeSource {
	src := &fakeSource{pages: map[int]string{}, fetchErrs: map[int]error{}}
	for i := 0; i < n; i++ {
		src.pages[i] = fmt.Sprintf(`<div class="pagination">Page %d of %d</div>`, i+1, n) +
			post(fmt.Sprintf("page %d", i))
	}
	return src
}

func TestRun_SequentialPages(t *testing.T) {
	src := newSource(5)
	var out bytes.Buffer

	res, err := Run(context.Background(), src, Options{Start: 1, Pages: 3, Filter: posttext.DefaultOptions()}, &out, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, src.requested)
	assert.Equal(t, "page 1\npage 2\npage 3\n", out.String())
	assert.Equal(t, Result{Pages: 3, Scraped: 3, Bytes: int64(out.Len())}, res)
}

func TestRun_DiscoversPageCount(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		start     int
		requested []int
		scraped   int
		output    string
	}{
		{name: "from the first page", count: 3, start: 0, requested: []int{0, 1, 2}, scraped: 3, output: "page 0\npage 1\npage 2\n"},
		{name: "from an offset", count: 3, start: 2, requested: []int{0, 2}, scraped: 1, output: "page 2\n"},
		{name: "start past the end", count: 3, start: 5, requested: []int{0}, scraped: 0, output: ""},
		{name: "single page topic", count: 1, start: 0, requested: []int{0}, scraped: 1, output: "page 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newSource(tt.count)
			var out bytes.Buffer

			res, err := Run(context.Background(), src, Options{Start: tt.start}, &out, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.requested, src.requested)
			assert.Equal(t, tt.scraped, res.Scraped)
			assert.Equal(t, tt.output, out.String())
		})
	}
}

func TestRun_CountError(t *testing.T) {
	src := newSource(2)
	src.fetchErrs[0] = errors.New("boom")

	_, err := Run(context.Background(), src, Options{}, &bytes.Buffer{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count pages")
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, []int{0}, src.requested)
}

func TestRun_InvalidOptions(t *testing.T) {
	_, err := Run(context.Background(), newSource(1), Options{Start: -1}, &bytes.Buffer{}, nil)
	assert.Error(t, err)

	_, err = Run(context.Background(), newSource(1), Options{Pages: -2}, &bytes.Buffer{}, nil)
	assert.Error(t, err)
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	src := newSource(4)
	src.pages[1] = post("before &bogus; after")
	var out bytes.Buffer

	res, err := Run(context.Background(), src, Options{Pages: 4}, &out, nil)
	require.Error(t, err)

	var pe *PageError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.Index)
	assert.Contains(t, pe.URL, "start=40")

	var unknown *posttext.UnknownEntityError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "bogus", unknown.Name)

	assert.Equal(t, []int{0, 1}, src.requested)
	// the failed page's partial text is not written
	assert.Equal(t, "page 0\n", out.String())
	assert.Equal(t, 1, res.Scraped)
	assert.Equal(t, 1, res.Failed)
}

func TestRun_KeepGoing(t *testing.T) {
	src := newSource(4)
	src.pages[1] = post(`<img src="x.png" />`)
	src.fetchErrs[2] = &api.HTTPError{StatusCode: 503, URL: "https://forum.example.com"}
	var out bytes.Buffer

	res, err := Run(context.Background(), src, Options{Pages: 4, KeepGoing: true, Filter: posttext.DefaultOptions()}, &out, nil)
	require.Error(t, err)

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)

	var missing *posttext.MissingAttrError
	assert.True(t, errors.As(errs[0], &missing))
	var httpErr *api.HTTPError
	assert.True(t, errors.As(errs[1], &httpErr))

	assert.Equal(t, []int{0, 1, 2, 3}, src.requested)
	assert.Equal(t, "page 0\npage 3\n", out.String())
	assert.Equal(t, Result{Pages: 4, Scraped: 2, Failed: 2, Bytes: int64(out.Len())}, res)
}

func TestRun_FreshFilterPerPage(t *testing.T) {
	src := newSource(2)
	// page 0 ends inside an open quote; it must not leak into page 1
	src.pages[0] = `<div class="content">kept<blockquote>quoted`

	var out bytes.Buffer
	_, err := Run(context.Background(), src, Options{Pages: 2}, &out, nil)
	require.NoError(t, err)
	assert.Equal(t, "kept\npage 1\n", out.String())
}

func TestRun_ContextCancelled(t *testing.T) {
	src := newSource(5)
	ctx, cancel := context.WithCancel(context.Background())
	src.onGet = func(index int) {
		if index == 1 {
			cancel()
		}
	}

	_, err := Run(ctx, src, Options{Pages: 5, KeepGoing: true}, &bytes.Buffer{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []int{0, 1}, src.requested)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRun_WriteErrorIsFatal(t *testing.T) {
	src := newSource(3)

	_, err := Run(context.Background(), src, Options{Pages: 3, KeepGoing: true}, failingWriter{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, []int{0}, src.requested)
}

func TestRun_ProgressLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	src := newSource(4)

	_, err := Run(context.Background(), src, Options{Pages: 4}, &bytes.Buffer{}, zap.New(core))
	require.NoError(t, err)

	var messages []string
	for _, entry := range logs.All() {
		messages = append(messages, entry.Message)
	}
	assert.Equal(t, []string{
		"Page 0/4 - 0.00%",
		"Page 1/4 - 25.00%",
		"Page 2/4 - 50.00%",
		"Page 3/4 - 75.00%",
		"Done",
	}, messages)

	second := logs.All()[1].ContextMap()
	assert.EqualValues(t, 1, second["page"])
	assert.EqualValues(t, 4, second["total"])
	assert.Equal(t, "https://forum.example.com/viewtopic.php?start=40", second["url"])
}

func TestRun_ProgressLoggingWithOffset(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	src := newSource(4)

	_, err := Run(context.Background(), src, Options{Start: 2, Pages: 2}, &bytes.Buffer{}, zap.New(core))
	require.NoError(t, err)

	progress := logs.FilterMessage("Page 1/2 - 50.00%").All()
	require.Len(t, progress, 1)
	fields := progress[0].ContextMap()
	assert.EqualValues(t, 3, fields["page"])
	assert.EqualValues(t, 2, fields["total"])
	assert.Equal(t, "https://forum.example.com/viewtopic.php?start=120", fields["url"])
}

func TestRun_AgainstForum(t *testing.T) {
	var (
		mu   sync.Mutex
		hits []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits = append(hits, r.URL.Query().Get("start"))
		mu.Unlock()
		assert.Equal(t, "101043", r.URL.Query().Get("t"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		start := r.URL.Query().Get("start")
		w.Write([]byte(`<div class="pagination">Page <strong>1</strong> of <strong>2</strong></div>` +
			post("start "+start+` <img src="s.gif" alt=":D" />`)))
	}))
	defer server.Close()

	client := api.NewClient(server.URL, "7", "101043", 40)
	var out bytes.Buffer

	res, err := Run(context.Background(), client, Options{Filter: posttext.DefaultOptions()}, &out, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Scraped)
	assert.Equal(t, "start 0  :D \nstart 40  :D \n", out.String())
	// the first page is fetched once for both counting and filtering
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"0", "40"}, hits)
}

func TestPageError(t *testing.T) {
	inner := errors.New("bad")

	withURL := &PageError{Index: 3, URL: "http://x", Err: inner}
	assert.Equal(t, "page 3 (http://x): bad", withURL.Error())
	assert.ErrorIs(t, withURL, inner)

	withoutURL := &PageError{Index: 4, Err: inner}
	assert.Equal(t, "page 4: bad", withoutURL.Error())
}
