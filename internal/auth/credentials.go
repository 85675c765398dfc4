package auth

import (
	"errors"
)

// CredentialSource supplies the application identity for an authorization
// flow. The flow always re-collects the identity, even when one is cached;
// the source decides whether that means prompting the user or handing out
// a pre-supplied value.
type CredentialSource interface {
	Collect(redirectURI string) (*ClientIdentity, error)
}

// StaticCredentials is a CredentialSource backed by a pre-supplied
// identity, typically from flags or environment.
type StaticCredentials ClientIdentity

func (c StaticCredentials) Collect(_ string) (*ClientIdentity, error) {
	if c.ClientID == "" {
		return nil, errors.New("a client id is required")
	}

	identity := ClientIdentity(c)
	return &identity, nil
}
