package filter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/forumtext/pkg/posttext"
)

const savedPage = `<html><body>
<div class="pagination">Page 1 of 1</div>
<div class="content">Hi <img src="s.gif" alt=";)" /><dl class="codebox"><dt>Code:</dt><dd><code>go vet</code></dd></dl></div>
</body></html>`

func newOptions(stdin string) (*filterOptions, *bytes.Buffer) {
	var out bytes.Buffer
	return &filterOptions{stdin: strings.NewReader(stdin), stdout: &out}, &out
}

func TestRunFilter(t *testing.T) {
	tests := []struct {
		name     string
		filter   posttext.Options
		expected string
	}{
		{name: "defaults", filter: posttext.DefaultOptions(), expected: "Hi  ;) \n"},
		{name: "no smileys", filter: posttext.Options{}, expected: "Hi  \n"},
		{name: "with code", filter: posttext.Options{IncludeCode: true}, expected: "Hi  go vet\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, out := newOptions(savedPage)

			err := runFilter("-", tt.filter, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.String())
		})
	}
}

func TestRunFilter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(savedPage), 0644))
	opts, out := newOptions("ignored")

	err := runFilter(path, posttext.DefaultOptions(), opts)
	require.NoError(t, err)
	assert.Equal(t, "Hi  ;) \n", out.String())
}

func TestRunFilter_MetaCharset(t *testing.T) {
	page := []byte(`<html><head><meta charset="iso-8859-1"></head><body><div class="content">na`)
	page = append(page, 0xEF) // ï in Latin-1
	page = append(page, []byte(`ve</div></body></html>`)...)

	opts, out := newOptions(string(page))
	err := runFilter("-", posttext.Options{}, opts)
	require.NoError(t, err)
	assert.Equal(t, "naïve\n", out.String())
}

func TestRunFilter_MissingFile(t *testing.T) {
	opts, _ := newOptions("")

	err := runFilter(filepath.Join(t.TempDir(), "nope.html"), posttext.Options{}, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}

func TestRunFilter_EmptyInput(t *testing.T) {
	opts, out := newOptions("")

	require.NoError(t, runFilter("-", posttext.Options{}, opts))
	assert.Empty(t, out.String())
}

func TestRunFilter_FilterErrorKeepsEarlierText(t *testing.T) {
	opts, out := newOptions(`<div class="content">ok</div><div class="content">&nosuch;</div>`)

	err := runFilter("-", posttext.Options{}, opts)
	require.Error(t, err)

	var unknown *posttext.UnknownEntityError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "ok\n", out.String())
}
