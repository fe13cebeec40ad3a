package danbooru

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boorudl/pkg/auth"
	apperrors "boorudl/pkg/errors"
	"boorudl/pkg/logger"
)

func newJSONTestClient(t *testing.T, creds *auth.Credentials, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "boorudl-test", 5*time.Second, 5*time.Second, creds, logger.NewTestLogger())
}

func TestFetchPostsPage(t *testing.T) {
	var gotQuery, gotAccept string
	client := newJSONTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		fmt.Fprint(w, `[{"id": 11, "score": 4, "rating": "q", "file_ext": "png", "file_url": "https://cdn.example.com/11.png"}]`)
	})

	posts, err := client.FetchPostsPage(context.Background(), []string{"blue_sky"}, 2)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	assert.Equal(t, 11, posts[0].ID)
	assert.Equal(t, RatingQuestionable, posts[0].Rating)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "page=2&tags=blue_sky&limit=200&only=rating,file_url,id,score,file_ext,large_file_url", gotQuery)
}

func TestFetchPostsPageWithCredentials(t *testing.T) {
	var gotLogin, gotKey string
	creds := &auth.Credentials{Login: "user", APIKey: "k3y"}
	client := newJSONTestClient(t, creds, func(w http.ResponseWriter, r *http.Request) {
		gotLogin = r.URL.Query().Get("login")
		gotKey = r.URL.Query().Get("api_key")
		fmt.Fprint(w, `[]`)
	})

	_, err := client.FetchPostsPage(context.Background(), []string{"blue_sky"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "user", gotLogin)
	assert.Equal(t, "k3y", gotKey)
}

func TestFetchPostsPageDecodeFailure(t *testing.T) {
	client := newJSONTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>definitely not json</html>`)
	})

	_, err := client.FetchPostsPage(context.Background(), []string{"blue_sky"}, 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeParsing, apperrors.TypeOf(err))
}

func TestGetJSONStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   apperrors.ErrorType
	}{
		{http.StatusUnauthorized, apperrors.ErrorTypeAuth},
		{http.StatusForbidden, apperrors.ErrorTypeAuth},
		{http.StatusNotFound, apperrors.ErrorTypeNotFound},
		{http.StatusInternalServerError, apperrors.ErrorTypeServer},
		{http.StatusBadGateway, apperrors.ErrorTypeServer},
		{http.StatusTeapot, apperrors.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			client := newJSONTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			var out []Post
			err := client.GetJSON(context.Background(), client.BaseURL()+"/posts.json", &out)
			require.Error(t, err)
			assert.Equal(t, tt.want, apperrors.TypeOf(err))
		})
	}
}

func TestDownloadStreams(t *testing.T) {
	payload := []byte("raw image bytes")
	client := newJSONTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	})

	body, err := client.Download(context.Background(), client.BaseURL()+"/asset.jpg")
	require.NoError(t, err)
	defer body.Close()

	got, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDownloadOutlivesRequestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		// Longer than the metadata request timeout below.
		time.Sleep(300 * time.Millisecond)
		fmt.Fprint(w, "asset bytes")
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "boorudl-test", 100*time.Millisecond, 5*time.Second, nil, logger.NewTestLogger())

	body, err := client.Download(context.Background(), server.URL+"/data/1.jpg")
	require.NoError(t, err)
	defer body.Close()

	got, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "asset bytes", string(got))
}

func TestDownloadBoundedByDownloadTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		time.Sleep(500 * time.Millisecond)
		fmt.Fprint(w, "asset bytes")
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "boorudl-test", 5*time.Second, 100*time.Millisecond, nil, logger.NewTestLogger())

	body, err := client.Download(context.Background(), server.URL+"/data/1.jpg")
	if err == nil {
		_, err = io.ReadAll(body)
		body.Close()
	}
	require.Error(t, err)
}

func TestDownloadNonOKStatus(t *testing.T) {
	client := newJSONTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Download(context.Background(), client.BaseURL()+"/gone.jpg")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))
}

func TestDownloadContextCancelled(t *testing.T) {
	client := newJSONTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Download(ctx, client.BaseURL()+"/slow.jpg")
	assert.Error(t, err)
}

func TestSearchTags(t *testing.T) {
	client := newJSONTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tags.json", r.URL.Path)
		fmt.Fprint(w, `[{"id": 5, "name": "blue_sky", "post_count": 12345, "category": 0}]`)
	})

	tags, err := client.SearchTags(context.Background(), "blue")
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "blue_sky", tags[0].Name)
	assert.Equal(t, 12345, tags[0].PostCount)
}
