package danbooru

import (
	"context"
	"fmt"
)

// SearchTags queries the tag autocomplete endpoint for names matching
// the term, ordered by post count.
func (c *Client) SearchTags(ctx context.Context, term string) ([]Tag, error) {
	url := TagSearchURL(c.baseURL, term, c.creds)

	var tags []Tag
	if err := c.GetJSON(ctx, url, &tags); err != nil {
		return nil, fmt.Errorf("tag search %q: %w", term, err)
	}

	return tags, nil
}
