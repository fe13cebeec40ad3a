package danbooru

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	apperrors "boorudl/pkg/errors"
)

// Selectors for the rendered listing page. The "no posts" marker is the
// paragraph the board renders inside the posts container when a tag
// combination matches nothing; the paginator elements carry the page
// numbers.
const (
	noPostsSelector    = "#posts > div > p"
	paginationSelector = ".paginator-page.desktop-only"
)

// CountPages scrapes the HTML listing for the tag query and returns the
// total number of result pages. A "no posts" marker yields ErrNoResults;
// a listing without pagination controls fits on a single page.
func (c *Client) CountPages(ctx context.Context, tags []string) (int, error) {
	encoded := EncodeTags(tags)
	url := PostsPageURL(c.baseURL, encoded, c.creds)

	c.logger.DebugWithFields("counting result pages", map[string]interface{}{
		"tags": tags,
		"url":  url,
	})

	doc, err := c.GetHTML(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("listing page for tags %v: %w", tags, err)
	}

	if doc.Find(noPostsSelector).Length() != 0 {
		return 0, fmt.Errorf("tags %v: %w", tags, apperrors.ErrNoResults)
	}

	last := doc.Find(paginationSelector).Last()
	if last.Length() == 0 {
		// Result set fits on one page, the board omits the paginator.
		return 1, nil
	}

	label := strings.TrimSpace(last.Text())
	total, err := strconv.Atoi(label)
	if err != nil {
		return 0, apperrors.New(apperrors.ErrorTypeParsing, 0, "pagination label %q is not a number", label)
	}

	c.logger.InfoWithFields("counted result pages", map[string]interface{}{
		"tags":  tags,
		"pages": total,
	})

	return total, nil
}
