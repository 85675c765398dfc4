package ui

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"spotic/internal/auth"
)

// InteractiveCredentials collects the application identity from the
// terminal. The tool authorizes with PKCE, so only a client id is asked
// for.
type InteractiveCredentials struct{}

var _ auth.CredentialSource = InteractiveCredentials{}

func (InteractiveCredentials) Collect(redirectURI string) (*auth.ClientIdentity, error) {
	fmt.Println("Create an application at https://developer.spotify.com/dashboard")
	fmt.Printf("and register %s as its redirect URI.\n\n", redirectURI)

	clientID, err := readLine("Client ID: ")
	if err != nil {
		return nil, err
	}

	if clientID == "" {
		return nil, errors.New("a client id is required")
	}

	return &auth.ClientIdentity{ClientID: clientID}, nil
}

// CollectCallbackURL asks the user to paste the redirect URL manually.
// Used when the local callback listener is unavailable.
func CollectCallbackURL() (string, error) {
	raw, err := readLine("Paste the URL you were redirected to: ")
	if err != nil {
		return "", err
	}

	return raw, nil
}

func readLine(prompt string) (string, error) {
	fmt.Print(prompt)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed reading input: %w", err)
	}

	return strings.TrimSpace(line), nil
}
