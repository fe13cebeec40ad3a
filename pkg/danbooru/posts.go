package danbooru

import (
	"context"
	"fmt"
)

// FetchPostsPage retrieves one page of post records for the tag query.
// Pages are 1-based. The response carries only the projected fields.
func (c *Client) FetchPostsPage(ctx context.Context, tags []string, page int) ([]Post, error) {
	encoded := EncodeTags(tags)
	url := PostsJSONURL(c.baseURL, page, encoded, c.creds)

	var posts []Post
	if err := c.GetJSON(ctx, url, &posts); err != nil {
		return nil, fmt.Errorf("posts page %d for tags %v: %w", page, tags, err)
	}

	c.logger.DebugWithFields("fetched posts page", map[string]interface{}{
		"page":  page,
		"posts": len(posts),
	})

	return posts, nil
}
