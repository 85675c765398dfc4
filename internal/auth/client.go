package auth

import (
	"context"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"spotic/internal/core"
)

// NewAPIClient builds the Spotify Web API client a session talks through.
// The underlying HTTP client refreshes the token transparently while the
// process runs; durable refreshes go through Manager.LoadCachedSession.
func NewAPIClient(ctx context.Context, cfg *core.AuthConfig, identity *ClientIdentity, token *oauth2.Token) *spotify.Client {
	authenticator := spotifyauth.New(
		spotifyauth.WithRedirectURL(cfg.RedirectURL()),
		spotifyauth.WithScopes(Scopes()...),
		spotifyauth.WithClientID(identity.ClientID),
		spotifyauth.WithClientSecret(identity.ClientSecret),
	)

	return spotify.New(authenticator.Client(ctx, token))
}
