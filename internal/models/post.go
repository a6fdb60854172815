package models

import (
	"fmt"
	"strings"
)

// PostMode selects how draft text maps onto the selected platforms.
type PostMode int

const (
	Unified    PostMode = iota // one shared text body for every selected platform
	Individual                 // one text body per selected platform
)

func (m PostMode) String() string {
	switch m {
	case Unified:
		return "unified"
	case Individual:
		return "individual"
	default:
		return ""
	}
}

// ParsePostMode parses "unified" or "individual" (case-insensitive).
func ParsePostMode(s string) (PostMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unified", "":
		return Unified, nil
	case "individual":
		return Individual, nil
	default:
		return Unified, fmt.Errorf("unknown post mode %q", s)
	}
}

// PostEntry is the per-platform value of a [PostRequest].
type PostEntry struct {
	Selected bool   `json:"selected"`
	Content  string `json:"content"`
}

// PostRequest is the /api/post body keyed by platform identifier.
type PostRequest map[string]PostEntry

// PlatformResult is the outcome reported for a single platform.
type PlatformResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// PostResponse is the /api/post reply.
//
// The backend flattens single-platform replies to {platform, success, error};
// [PostResponse.Normalize] folds that shape into Results.
type PostResponse struct {
	Success  bool                      `json:"success"`
	Results  map[string]PlatformResult `json:"results,omitempty"`
	Error    string                    `json:"error,omitempty"`
	Platform string                    `json:"platform,omitempty"`
}

// Normalize moves a flattened single-platform result into Results.
func (r *PostResponse) Normalize() {
	if r.Platform == "" {
		return
	}
	if r.Results == nil {
		r.Results = make(map[string]PlatformResult, 1)
	}
	if _, ok := r.Results[r.Platform]; !ok {
		r.Results[r.Platform] = PlatformResult{Success: r.Success, Error: r.Error}
	}
	r.Platform = ""
}

// Multipart form fields of a post with images.
const (
	PostDataField    = "postData" // JSON-encoded [PostRequest]
	ImageFieldPrefix = "image"    // file parts are image0, image1, ...
)

// MaxImages is the number of images the backend accepts per post.
const MaxImages = 4

// Image is an attachment sent alongside a post as a multipart file part.
type Image struct {
	Name string
	Data []byte
}
