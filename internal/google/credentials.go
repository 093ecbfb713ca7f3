package google

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
)

// Environment variables carrying the OAuth credentials.
const (
	EnvClientID     = "GOOGLE_CLIENT_ID"
	EnvClientSecret = "GOOGLE_CLIENT_SECRET"
	EnvRefreshToken = "GOOGLE_REFRESH_TOKEN"
)

// Credentials holds the OAuth2 client credentials and refresh token used
// to authenticate against the Google Calendar API.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// LoadCredentials reads the credentials from the environment.
// All three variables are required; a missing one is a startup error,
// not something to defer to call time.
func LoadCredentials() (Credentials, error) {
	creds := Credentials{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		RefreshToken: os.Getenv(EnvRefreshToken),
	}
	return creds, creds.Validate()
}

// Validate checks that all required fields are present.
func (c Credentials) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, EnvClientID)
	}
	if c.ClientSecret == "" {
		missing = append(missing, EnvClientSecret)
	}
	if c.RefreshToken == "" {
		missing = append(missing, EnvRefreshToken)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// oauthConfig returns the OAuth2 configuration for the Calendar API.
func (c Credentials) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			calendar.CalendarEventsScope,
		},
	}
}

// TokenSource returns an OAuth2 token source backed by the refresh token.
// No network I/O happens here; the first Token() call performs the refresh.
func (c Credentials) TokenSource(ctx context.Context) oauth2.TokenSource {
	return c.oauthConfig().TokenSource(ctx, &oauth2.Token{
		TokenType:    "Bearer",
		RefreshToken: c.RefreshToken,
	})
}

// HTTPClient returns an HTTP client configured with OAuth2 authentication.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func (c Credentials) HTTPClient(ctx context.Context) *http.Client {
	client := oauth2.NewClient(ctx, c.TokenSource(ctx))

	// Force HTTP/1.1 by disabling HTTP/2
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			ForceAttemptHTTP2: false,
		}
	}

	return client
}
