// package services defines the HTTP client for the posting backend
package services

import (
	"context"
	"net/http"

	"github.com/desertthunder/crosspost/internal/shared"
	"golang.org/x/oauth2"
)

const (
	PlatformsPath       = "/api/platforms"
	CharacterLimitsPath = "/api/character_limits"
	PostPath            = "/api/post"
)

// NewHTTPClient builds the [http.Client] used to reach the backend.
//
// A non-empty token wraps the client with a static [oauth2.TokenSource] so requests carry "Authorization: Bearer <token>".
func NewHTTPClient(ctx context.Context, cfg shared.APIConfig) *http.Client {
	var client *http.Client
	if cfg.Token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
		client = oauth2.NewClient(ctx, src)
	} else {
		client = &http.Client{}
	}

	client.Timeout = cfg.Timeout.Duration
	return client
}
