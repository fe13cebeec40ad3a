package danbooru

import (
	"fmt"
	"strings"
)

// Rating is the single-character content rating code attached to every
// post by the board.
type Rating string

// The four rating classes the board assigns.
const (
	RatingGeneral      Rating = "g"
	RatingSensitive    Rating = "s"
	RatingQuestionable Rating = "q"
	RatingExplicit     Rating = "e"
)

// Subfolder maps the rating code to the output subdirectory name.
// Unrecognized codes land in "unknown"; a well-formed API response never
// produces one.
func (r Rating) Subfolder() string {
	switch r {
	case RatingGeneral:
		return "general"
	case RatingSensitive:
		return "sensitive"
	case RatingQuestionable:
		return "questionable"
	case RatingExplicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// Exclusions holds the per-rating exclusion flags of a run.
type Exclusions struct {
	General      bool
	Sensitive    bool
	Questionable bool
	Explicit     bool
}

// Excludes reports whether posts with the given rating are dropped.
func (e Exclusions) Excludes(r Rating) bool {
	switch r {
	case RatingGeneral:
		return e.General
	case RatingSensitive:
		return e.Sensitive
	case RatingQuestionable:
		return e.Questionable
	case RatingExplicit:
		return e.Explicit
	default:
		return false
	}
}

// Post is one content item returned by the board. File URLs are empty
// when the asset is restricted or missing; a post with neither URL is
// not downloadable.
type Post struct {
	ID           int    `json:"id"`
	Score        int    `json:"score"`
	Rating       Rating `json:"rating"`
	FileExt      string `json:"file_ext"`
	FileURL      string `json:"file_url"`
	LargeFileURL string `json:"large_file_url"`
}

// videoContainers are the container formats pseudo-animated assets ship
// in when the API reports a generic zip extension.
var videoContainers = []string{".webm", ".mp4"}

// ResolveSource picks the URL to download and the effective on-disk
// extension. Pseudo-animated posts are reported with file_ext "zip" and
// a large_file_url naming the real video container; for those the
// container becomes the extension. Otherwise file_url is preferred, with
// large_file_url as the fallback.
func (p *Post) ResolveSource() (url string, ext string, err error) {
	if p.FileExt == "zip" && p.LargeFileURL != "" {
		for _, container := range videoContainers {
			if strings.Contains(p.LargeFileURL, container) {
				return p.LargeFileURL, strings.TrimPrefix(container, "."), nil
			}
		}
	}
	if p.FileURL != "" {
		return p.FileURL, p.FileExt, nil
	}
	if p.LargeFileURL != "" {
		return p.LargeFileURL, p.FileExt, nil
	}
	return "", "", fmt.Errorf("post %d: no download url detected", p.ID)
}

// Filename returns the destination file name for the post given the
// resolved extension.
func (p *Post) Filename(ext string) string {
	return fmt.Sprintf("%d_%d.%s", p.Score, p.ID, ext)
}

// Tag is one search result from the tag autocomplete endpoint.
type Tag struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	PostCount int    `json:"post_count"`
	Category  int    `json:"category"`
}

// CategoryName returns the human-readable tag category.
func (t *Tag) CategoryName() string {
	switch t.Category {
	case 0:
		return "general"
	case 1:
		return "artist"
	case 3:
		return "copyright"
	case 4:
		return "character"
	case 5:
		return "meta"
	default:
		return "unknown"
	}
}
