package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// APIKeyCredentials stores an API key for a provider.
type APIKeyCredentials struct {
	APIKey string `json:"api_key,omitempty"`
}

// Credentials holds stored credentials for all providers.
type Credentials struct {
	Anthropic *APIKeyCredentials `json:"anthropic,omitempty"`
	OpenAI    *APIKeyCredentials `json:"openai,omitempty"`
}

// CredentialPath returns the path to the credentials file (~/.handoverdoc/credentials.json).
func CredentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".handoverdoc", "credentials.json"), nil
}

// Load reads credentials from ~/.handoverdoc/credentials.json.
// Returns empty credentials if the file doesn't exist.
func Load() (*Credentials, error) {
	path, err := CredentialPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Credentials{}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	return &creds, nil
}

// Save writes credentials to ~/.handoverdoc/credentials.json with restricted permissions.
func Save(creds *Credentials) error {
	path, err := CredentialPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling credentials: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

// GetAPIKey returns the API key for the given provider. It checks the
// environment variable first, then falls back to stored credentials.
// "openai-compatible" shares OpenAI's credential slot and env var, since it
// is the same wire protocol against a different base URL.
func GetAPIKey(provider string) string {
	switch provider {
	case "anthropic":
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			return key
		}
	case "openai", "openai-compatible":
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return key
		}
	}

	creds, err := Load()
	if err != nil {
		return ""
	}

	switch provider {
	case "anthropic":
		if creds.Anthropic != nil {
			return creds.Anthropic.APIKey
		}
	case "openai", "openai-compatible":
		if creds.OpenAI != nil {
			return creds.OpenAI.APIKey
		}
	}

	return ""
}

// ErrSubscriptionAuthUnavailable is returned by the stub CredentialSource
// for the "subscription" auth method. The OAuth/PKCE login flow itself is
// an out-of-scope external collaborator; this keeps the seam in the
// provider facade without fabricating an OAuth client.
var ErrSubscriptionAuthUnavailable = errors.New("subscription auth is not implemented in this build; use auth_method: api-key")

// CredentialSource supplies a bearer token for the "subscription" auth
// method. The provider facade calls it on every request rather than caching
// a single token, since a real implementation would need to refresh it.
type CredentialSource interface {
	Token(ctx context.Context) (string, error)
}

// stubCredentialSource is the CredentialSource used when no OAuth/PKCE
// client has been wired in. It always fails with ErrSubscriptionAuthUnavailable.
type stubCredentialSource struct{}

func (stubCredentialSource) Token(ctx context.Context) (string, error) {
	return "", ErrSubscriptionAuthUnavailable
}

// NewSubscriptionCredentialSource returns the CredentialSource for the
// "subscription" auth method. Replacing the stub here is the single seam a
// future OAuth/PKCE integration would need.
func NewSubscriptionCredentialSource() CredentialSource {
	return stubCredentialSource{}
}
