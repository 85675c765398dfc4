package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"spotic/internal/core"
	"spotic/internal/player"
)

// ErrInvalidCallback indicates the redirect URL carries no extractable
// authorization code.
var ErrInvalidCallback = errors.New("callback URL carries no authorization code")

// Scopes returns the capabilities every authorization requests. Adding a
// scope here invalidates previously granted authorizations and forces the
// user through the flow again, so the set stays as narrow as the tool
// needs.
func Scopes() []string {
	return []string{
		spotifyauth.ScopeUserReadCurrentlyPlaying,
		spotifyauth.ScopeUserModifyPlaybackState,
		spotifyauth.ScopeUserReadPlaybackState,
	}
}

// SessionFunc turns a usable identity and token pair into a live playback
// session.
type SessionFunc func(ctx context.Context, identity *ClientIdentity, token *oauth2.Token) (*player.Session, error)

// codeReceiver captures the OAuth redirect URL.
type codeReceiver interface {
	ListenOnce(ctx context.Context) (string, error)
}

// exchanger builds authorize URLs and trades codes for tokens.
// *spotifyauth.Authenticator satisfies it.
type exchanger interface {
	AuthURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// Manager orchestrates the authorization lifecycle: resuming a cached
// session, or running a full PKCE code-exchange flow.
type Manager struct {
	cfg      *core.AuthConfig
	store    *Store
	creds    CredentialSource
	sessions SessionFunc
	logger   *zap.Logger

	// PromptCallbackURL is the manual-entry fallback used when the local
	// listener fails. Defaults to a plain stdin prompt.
	PromptCallbackURL func() (string, error)

	receiver     codeReceiver
	openURL      func(url string) error
	newExchanger func(identity *ClientIdentity) exchanger
	refresh      func(ctx context.Context, identity *ClientIdentity, stale *oauth2.Token) (*oauth2.Token, error)
}

func NewManager(cfg *core.AuthConfig, store *Store, creds CredentialSource, sessions SessionFunc, logger *zap.Logger) *Manager {
	m := &Manager{
		cfg:      cfg,
		store:    store,
		creds:    creds,
		sessions: sessions,
		logger:   logger,
		receiver: NewCallbackReceiver(cfg.CallbackPort, logger),
		openURL:  openBrowser,
	}

	m.PromptCallbackURL = func() (string, error) {
		fmt.Print("Paste the URL you were redirected to: ")

		var raw string
		if _, err := fmt.Scanln(&raw); err != nil {
			return "", fmt.Errorf("failed reading the callback URL: %w", err)
		}
		return raw, nil
	}

	m.newExchanger = func(identity *ClientIdentity) exchanger {
		return spotifyauth.New(
			spotifyauth.WithRedirectURL(cfg.RedirectURL()),
			spotifyauth.WithScopes(Scopes()...),
			spotifyauth.WithClientID(identity.ClientID),
			spotifyauth.WithClientSecret(identity.ClientSecret),
		)
	}

	m.refresh = func(ctx context.Context, identity *ClientIdentity, stale *oauth2.Token) (*oauth2.Token, error) {
		conf := &oauth2.Config{
			ClientID:     identity.ClientID,
			ClientSecret: identity.ClientSecret,
			RedirectURL:  cfg.RedirectURL(),
			Scopes:       Scopes(),
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyauth.AuthURL,
				TokenURL: spotifyauth.TokenURL,
			},
		}

		return conf.TokenSource(ctx, stale).Token()
	}

	return m
}

// LoadCachedSession resumes a session from persisted state. It returns
// (nil, nil) whenever re-authorization is the answer: nothing saved yet,
// or an expired token with no way to refresh it. An expired but
// refreshable token is refreshed in place and persisted. Corrupt state
// and failed refreshes surface as errors so the user learns why the cache
// was not trusted.
func (m *Manager) LoadCachedSession(ctx context.Context) (*player.Session, error) {
	if !m.store.HasIdentity() || !m.store.HasTokens() {
		return nil, nil
	}

	identity, err := m.store.LoadIdentity()
	if err != nil {
		return nil, err
	}

	token, err := m.store.LoadTokens()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if !token.Valid() {
		if token.RefreshToken == "" {
			m.logger.Info("Cached token expired with no refresh token, re-authorization required")
			return nil, nil
		}

		fresh, err := m.refresh(ctx, identity, token)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh token: %w", err)
		}

		if err := m.store.SaveTokens(fresh); err != nil {
			return nil, err
		}

		m.logger.Debug("Refreshed expired token", zap.Time("expiry", fresh.Expiry))
		token = fresh
	}

	return m.sessions(ctx, identity, token)
}

// RunFlow runs one full authorization attempt: collect the identity,
// persist it, send the user to the authorize URL, capture the redirect,
// exchange the code, persist the tokens, hand back a session. Every step
// is attempted once; a failure aborts the attempt.
func (m *Manager) RunFlow(ctx context.Context) (*player.Session, error) {
	identity, err := m.creds.Collect(m.cfg.RedirectURL())
	if err != nil {
		return nil, fmt.Errorf("failed collecting credentials: %w", err)
	}

	if err := m.store.EnsureDir(); err != nil {
		return nil, err
	}

	if err := m.store.SaveIdentity(identity); err != nil {
		return nil, err
	}

	ex := m.newExchanger(identity)
	verifier := oauth2.GenerateVerifier()
	state := uuid.NewString()

	authURL := ex.AuthURL(state, oauth2.S256ChallengeOption(verifier))

	fmt.Printf("\nAuthorization link: %s\n\n", authURL)

	if err := m.openURL(authURL); err != nil {
		fmt.Println("Failed opening the link in a browser, please open it manually.")
	}

	redirect, err := m.receiver.ListenOnce(ctx)
	if err != nil {
		// A cancelled flow must not block on the manual-entry prompt.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		m.logger.Warn("Callback listener unavailable, falling back to manual entry", zap.Error(err))

		redirect, err = m.PromptCallbackURL()
		if err != nil {
			return nil, err
		}
	}

	code, err := parseCallback(redirect, state)
	if err != nil {
		return nil, err
	}

	token, err := ex.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed requesting token: %w", err)
	}

	if err := m.store.SaveTokens(token); err != nil {
		return nil, err
	}

	fmt.Println("Successfully authorized!")

	return m.sessions(ctx, identity, token)
}

// parseCallback extracts the authorization code from a redirect URL. The
// state parameter is checked when both sides carry one.
func parseCallback(rawURL, wantState string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed parsing callback URL: %w", err)
	}

	query := u.Query()

	if reason := query.Get("error"); reason != "" {
		return "", fmt.Errorf("authorization rejected (%s): %w", reason, ErrInvalidCallback)
	}

	code := query.Get("code")
	if code == "" {
		return "", fmt.Errorf("failed reading authorization code from url: %w", ErrInvalidCallback)
	}

	if state := query.Get("state"); wantState != "" && state != "" && state != wantState {
		return "", fmt.Errorf("callback state mismatch: %w", ErrInvalidCallback)
	}

	return code, nil
}
