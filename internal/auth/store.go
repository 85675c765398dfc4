// Package auth implements the authorization lifecycle: the on-disk
// credential and token store, the local callback listener used to capture
// the OAuth redirect, and the manager orchestrating the PKCE flow.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

const (
	appDirName      = "spotic"
	credentialsFile = "credentials.json"
	tokensFile      = "tokens.json"

	// DirPermission is the permission for the data directory
	DirPermission = 0700
	// FilePermission is the permission for credential and token files
	FilePermission = 0600
)

var (
	// ErrNotFound indicates no data has been persisted yet.
	ErrNotFound = errors.New("not found")
	// ErrCorrupted indicates persisted data exists but cannot be decoded.
	// Re-authorizing rewrites the affected file.
	ErrCorrupted = errors.New("stored data is corrupt, try re-authorizing")
)

// ClientIdentity is the long-lived application identity. The secret stays
// empty in PKCE mode.
type ClientIdentity struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// Store persists the client identity and token set under a single data
// directory. Identity and tokens live in separate files so each can be
// absent or corrupt independently.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. An empty dir selects the
// platform config directory, falling back to the working directory.
func NewStore(dir string) *Store {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			base = "."
		}
		dir = filepath.Join(base, appDirName)
	}

	return &Store{dir: dir}
}

// Dir returns the data directory the store writes under.
func (s *Store) Dir() string {
	return s.dir
}

// EnsureDir creates the data directory if it does not exist yet.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, DirPermission); err != nil {
		return fmt.Errorf("failed creating data directory: %w", err)
	}

	return nil
}

func (s *Store) credentialsPath() string {
	return filepath.Join(s.dir, credentialsFile)
}

func (s *Store) tokensPath() string {
	return filepath.Join(s.dir, tokensFile)
}

// HasIdentity reports whether a client identity has been saved.
func (s *Store) HasIdentity() bool {
	_, err := os.Stat(s.credentialsPath())
	return err == nil
}

// HasTokens reports whether a token set has been saved.
func (s *Store) HasTokens() bool {
	_, err := os.Stat(s.tokensPath())
	return err == nil
}

// LoadIdentity reads the saved client identity. Absence is ErrNotFound,
// undecodable or incomplete content is ErrCorrupted.
func (s *Store) LoadIdentity() (*ClientIdentity, error) {
	data, err := os.ReadFile(s.credentialsPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no stored client credentials: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed reading stored client credentials: %w", err)
	}

	var identity ClientIdentity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("client credentials (%v): %w", err, ErrCorrupted)
	}

	if identity.ClientID == "" {
		return nil, fmt.Errorf("client credentials are missing a client id: %w", ErrCorrupted)
	}

	return &identity, nil
}

// SaveIdentity writes the client identity to disk.
func (s *Store) SaveIdentity(identity *ClientIdentity) error {
	data, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return fmt.Errorf("failed serializing client credentials: %w", err)
	}

	if err := s.writeFile(s.credentialsPath(), data); err != nil {
		return fmt.Errorf("failed saving client credentials: %w", err)
	}

	return nil
}

// LoadTokens reads the saved token set. Absence is ErrNotFound,
// undecodable or incomplete content is ErrCorrupted.
func (s *Store) LoadTokens() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.tokensPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no cached tokens: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed reading cached tokens: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("cached tokens (%v): %w", err, ErrCorrupted)
	}

	if token.AccessToken == "" {
		return nil, fmt.Errorf("cached tokens are missing an access token: %w", ErrCorrupted)
	}

	return &token, nil
}

// SaveTokens writes the token set to disk.
func (s *Store) SaveTokens(token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed serializing tokens: %w", err)
	}

	if err := s.writeFile(s.tokensPath(), data); err != nil {
		return fmt.Errorf("failed caching the token: %w", err)
	}

	return nil
}

// writeFile writes through a temp file and renames it into place, so a
// partial write never clobbers a previously valid file.
func (s *Store) writeFile(path string, data []byte) error {
	if err := s.EnsureDir(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".write-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(FilePermission); err != nil {
		tmp.Close()
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
