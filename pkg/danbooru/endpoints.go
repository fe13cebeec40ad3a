package danbooru

import (
	"fmt"
	"net/url"
	"strings"

	"boorudl/pkg/auth"
)

const (
	// BaseURL is the default board instance
	BaseURL = "https://danbooru.donmai.us"

	// PageSize is the fixed number of posts requested per page
	PageSize = 200

	// FieldProjection restricts posts.json responses to the fields the
	// pipeline consumes
	FieldProjection = "rating,file_url,id,score,file_ext,large_file_url"

	// TagSearchLimit caps tag autocomplete results
	TagSearchLimit = 20
)

// EncodeTags normalizes a list of raw tags into the query fragment the
// board expects: each tag percent-encoded individually, joined by a
// literal "+". Order is preserved; the board ANDs the tags together.
func EncodeTags(tags []string) string {
	encoded := make([]string, len(tags))
	for i, tag := range tags {
		// QueryEscape turns spaces into "+", which would collide with
		// the tag separator.
		encoded[i] = strings.ReplaceAll(url.QueryEscape(tag), "+", "%20")
	}
	return strings.Join(encoded, "+")
}

// credentialParams renders the optional login/api_key query suffix.
func credentialParams(creds *auth.Credentials) string {
	if !creds.Valid() {
		return ""
	}
	return fmt.Sprintf("&login=%s&api_key=%s",
		url.QueryEscape(creds.Login), url.QueryEscape(creds.APIKey))
}

// PostsPageURL builds the HTML listing URL used for page counting.
// encodedTags must already be the EncodeTags output; it is spliced in
// verbatim so the "+" separators survive.
func PostsPageURL(base, encodedTags string, creds *auth.Credentials) string {
	return fmt.Sprintf("%s/posts?tags=%s&limit=%d%s",
		base, encodedTags, PageSize, credentialParams(creds))
}

// PostsJSONURL builds the JSON listing URL for one page of post records.
func PostsJSONURL(base string, page int, encodedTags string, creds *auth.Credentials) string {
	return fmt.Sprintf("%s/posts.json?page=%d&tags=%s&limit=%d&only=%s%s",
		base, page, encodedTags, PageSize, FieldProjection, credentialParams(creds))
}

// TagSearchURL builds the tag autocomplete URL for a single search term.
func TagSearchURL(base, term string, creds *auth.Credentials) string {
	return fmt.Sprintf("%s/tags.json?search[name_matches]=%s*&search[order]=count&limit=%d%s",
		base, url.QueryEscape(term), TagSearchLimit, credentialParams(creds))
}
