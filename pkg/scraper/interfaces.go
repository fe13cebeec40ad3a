package scraper

import (
	"context"
	"io"

	"boorudl/pkg/danbooru"
)

// BoardClient is the API surface the pipeline consumes. The danbooru
// client satisfies it; tests substitute fakes.
type BoardClient interface {
	// CountPages scrapes the listing page for the total result page
	// count. Zero results is a terminal failure.
	CountPages(ctx context.Context, tags []string) (int, error)

	// FetchPostsPage retrieves one page of post records.
	FetchPostsPage(ctx context.Context, tags []string, page int) ([]danbooru.Post, error)

	// Download opens a streaming GET for an asset URL.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}
