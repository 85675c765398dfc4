package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"spotic/internal/core"
	"spotic/internal/player"
)

type fakeReceiver struct {
	url string
	err error
}

func (f *fakeReceiver) ListenOnce(_ context.Context) (string, error) {
	return f.url, f.err
}

type fakeExchanger struct {
	token        *oauth2.Token
	err          error
	exchangedFor string
}

func (f *fakeExchanger) AuthURL(state string, _ ...oauth2.AuthCodeOption) string {
	return "https://accounts.example.com/authorize?state=" + state
}

func (f *fakeExchanger) Exchange(_ context.Context, code string, _ ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	f.exchangedFor = code
	return f.token, f.err
}

func newTestManager(t *testing.T) (*Manager, *Store) {
	t.Helper()

	cfg := &core.AuthConfig{CallbackPort: 8080}
	store := NewStore(t.TempDir())

	sessions := func(_ context.Context, _ *ClientIdentity, _ *oauth2.Token) (*player.Session, error) {
		return player.NewSession(nil, nil, nil, zap.NewNop()), nil
	}

	manager := NewManager(cfg, store, StaticCredentials{ClientID: "client-123"}, sessions, zap.NewNop())
	manager.openURL = func(string) error { return nil }

	return manager, store
}

func validToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	}
}

func expiredToken(refreshToken string) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour),
	}
}

func TestLoadCachedSession_NothingSaved(t *testing.T) {
	manager, _ := newTestManager(t)

	session, err := manager.LoadCachedSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestLoadCachedSession_ValidTokenSkipsRefresh(t *testing.T) {
	manager, store := newTestManager(t)
	require.NoError(t, store.SaveIdentity(&ClientIdentity{ClientID: "client-123"}))
	require.NoError(t, store.SaveTokens(validToken()))

	refreshCalls := 0
	manager.refresh = func(_ context.Context, _ *ClientIdentity, _ *oauth2.Token) (*oauth2.Token, error) {
		refreshCalls++
		return nil, errors.New("should not be called")
	}

	session, err := manager.LoadCachedSession(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, session)
	assert.Equal(t, 0, refreshCalls)
}

func TestLoadCachedSession_RefreshesExpiredTokenOnce(t *testing.T) {
	manager, store := newTestManager(t)
	require.NoError(t, store.SaveIdentity(&ClientIdentity{ClientID: "client-123"}))
	require.NoError(t, store.SaveTokens(expiredToken("refresh")))

	refreshCalls := 0
	manager.refresh = func(_ context.Context, _ *ClientIdentity, stale *oauth2.Token) (*oauth2.Token, error) {
		refreshCalls++
		assert.Equal(t, "stale", stale.AccessToken)
		return &oauth2.Token{
			AccessToken:  "fresh",
			RefreshToken: "refresh",
			Expiry:       time.Now().Add(time.Hour),
		}, nil
	}

	session, err := manager.LoadCachedSession(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, session)
	assert.Equal(t, 1, refreshCalls)

	// The refreshed token must be persisted, never the stale one.
	persisted, err := store.LoadTokens()
	require.NoError(t, err)
	assert.Equal(t, "fresh", persisted.AccessToken)
}

func TestLoadCachedSession_ExpiredWithoutRefreshToken(t *testing.T) {
	manager, store := newTestManager(t)
	require.NoError(t, store.SaveIdentity(&ClientIdentity{ClientID: "client-123"}))
	require.NoError(t, store.SaveTokens(expiredToken("")))

	refreshCalls := 0
	manager.refresh = func(_ context.Context, _ *ClientIdentity, _ *oauth2.Token) (*oauth2.Token, error) {
		refreshCalls++
		return nil, nil
	}

	session, err := manager.LoadCachedSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Equal(t, 0, refreshCalls)
}

func TestLoadCachedSession_RefreshFailureIsAnError(t *testing.T) {
	manager, store := newTestManager(t)
	require.NoError(t, store.SaveIdentity(&ClientIdentity{ClientID: "client-123"}))
	require.NoError(t, store.SaveTokens(expiredToken("refresh")))

	manager.refresh = func(_ context.Context, _ *ClientIdentity, _ *oauth2.Token) (*oauth2.Token, error) {
		return nil, errors.New("provider said no")
	}

	_, err := manager.LoadCachedSession(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh")
}

func TestLoadCachedSession_CorruptTokensSurfaceAsError(t *testing.T) {
	manager, store := newTestManager(t)
	require.NoError(t, store.SaveIdentity(&ClientIdentity{ClientID: "client-123"}))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), tokensFile), nil, FilePermission))

	_, err := manager.LoadCachedSession(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorrupted))
}

func TestRunFlow_HappyPath(t *testing.T) {
	manager, store := newTestManager(t)

	ex := &fakeExchanger{token: validToken()}
	manager.newExchanger = func(_ *ClientIdentity) exchanger { return ex }
	manager.receiver = &fakeReceiver{url: "http://localhost:8080/callback?code=ABC123"}

	session, err := manager.RunFlow(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, session)
	assert.Equal(t, "ABC123", ex.exchangedFor)

	identity, err := store.LoadIdentity()
	require.NoError(t, err)
	assert.Equal(t, "client-123", identity.ClientID)

	tokens, err := store.LoadTokens()
	require.NoError(t, err)
	assert.Equal(t, "access", tokens.AccessToken)
}

func TestRunFlow_FallsBackToManualEntry(t *testing.T) {
	manager, _ := newTestManager(t)

	ex := &fakeExchanger{token: validToken()}
	manager.newExchanger = func(_ *ClientIdentity) exchanger { return ex }
	manager.receiver = &fakeReceiver{err: fmt.Errorf("port taken: %w", ErrListen)}

	prompted := false
	manager.PromptCallbackURL = func() (string, error) {
		prompted = true
		return "http://localhost:8080/callback?code=MANUAL42", nil
	}

	session, err := manager.RunFlow(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, session)
	assert.True(t, prompted)
	assert.Equal(t, "MANUAL42", ex.exchangedFor)
}

func TestRunFlow_CancelledContextSkipsManualEntry(t *testing.T) {
	manager, _ := newTestManager(t)

	manager.newExchanger = func(_ *ClientIdentity) exchanger { return &fakeExchanger{} }
	manager.receiver = &fakeReceiver{err: fmt.Errorf("interrupted: %w", ErrListen)}

	prompted := false
	manager.PromptCallbackURL = func() (string, error) {
		prompted = true
		return "", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := manager.RunFlow(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, prompted)
}

func TestRunFlow_MissingCodeFailsAttempt(t *testing.T) {
	manager, _ := newTestManager(t)

	manager.newExchanger = func(_ *ClientIdentity) exchanger { return &fakeExchanger{} }
	manager.receiver = &fakeReceiver{url: "http://localhost:8080/callback?state=xyz"}

	_, err := manager.RunFlow(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCallback))
}

func TestRunFlow_ExchangeFailure(t *testing.T) {
	manager, _ := newTestManager(t)

	manager.newExchanger = func(_ *ClientIdentity) exchanger {
		return &fakeExchanger{err: errors.New("invalid_grant")}
	}
	manager.receiver = &fakeReceiver{url: "http://localhost:8080/callback?code=ABC123"}

	_, err := manager.RunFlow(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requesting token")
}

func TestParseCallback(t *testing.T) {
	code, err := parseCallback("http://localhost:8080/callback?code=ABC123&state=xyz", "xyz")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", code)
}

func TestParseCallback_NoCode(t *testing.T) {
	_, err := parseCallback("http://localhost:8080/callback?state=xyz", "xyz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCallback))
}

func TestParseCallback_StateMismatch(t *testing.T) {
	_, err := parseCallback("http://localhost:8080/callback?code=ABC123&state=evil", "xyz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCallback))
}

func TestParseCallback_ProviderError(t *testing.T) {
	_, err := parseCallback("http://localhost:8080/callback?error=access_denied", "xyz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCallback))
}
