package danbooru

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "boorudl/pkg/errors"
	"boorudl/pkg/logger"
)

const noResultsHTML = `<html><body>
<div id="posts"><div><p>No posts found. Try a different search.</p></div></div>
</body></html>`

const singlePageHTML = `<html><body>
<div id="posts"><div><article id="post_1"></article></div></div>
</body></html>`

func paginatedHTML(pages int) string {
	links := ""
	for i := 1; i <= pages; i++ {
		links += fmt.Sprintf(`<a class="paginator-page desktop-only" href="/posts?page=%d">%d</a>`, i, i)
	}
	return fmt.Sprintf(`<html><body>
<div id="posts"><div><article id="post_1"></article></div></div>
<div class="paginator">%s</div>
</body></html>`, links)
}

func newHTMLTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "boorudl-test", 5*time.Second, 5*time.Second, nil, logger.NewTestLogger())
}

func TestCountPagesNoResults(t *testing.T) {
	client := newHTMLTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, noResultsHTML)
	})

	_, err := client.CountPages(context.Background(), []string{"no_such_tag"})
	assert.ErrorIs(t, err, apperrors.ErrNoResults)
}

func TestCountPagesPaginated(t *testing.T) {
	client := newHTMLTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, paginatedHTML(7))
	})

	total, err := client.CountPages(context.Background(), []string{"blue_sky"})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
}

func TestCountPagesSinglePage(t *testing.T) {
	client := newHTMLTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, singlePageHTML)
	})

	total, err := client.CountPages(context.Background(), []string{"blue_sky"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestCountPagesNonNumericLabel(t *testing.T) {
	client := newHTMLTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<div id="posts"><div><article></article></div></div>
<a class="paginator-page desktop-only">next</a>
</body></html>`)
	})

	_, err := client.CountPages(context.Background(), []string{"blue_sky"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeParsing, apperrors.TypeOf(err))
}

func TestCountPagesRequestShape(t *testing.T) {
	var gotPath, gotQuery, gotAccept, gotAgent string
	client := newHTMLTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, singlePageHTML)
	})

	_, err := client.CountPages(context.Background(), []string{"blue sky", "cloud"})
	require.NoError(t, err)

	assert.Equal(t, "/posts", gotPath)
	assert.Equal(t, "tags=blue%20sky+cloud&limit=200", gotQuery)
	assert.Equal(t, "text/html", gotAccept)
	assert.Equal(t, "boorudl-test", gotAgent)
}

func TestCountPagesTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections
	client := NewClient(server.URL, "boorudl-test", time.Second, time.Second, nil, logger.NewTestLogger())

	_, err := client.CountPages(context.Background(), []string{"blue_sky"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeNetwork, apperrors.TypeOf(err))
	assert.False(t, apperrors.IsTerminal(err))
}
