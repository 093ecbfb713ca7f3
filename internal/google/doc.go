// Package google handles Google OAuth2 credentials for the Calendar API.
//
// Credentials are supplied out-of-band through environment variables and
// consist of an OAuth client id/secret pair plus a long-lived refresh
// token. Access tokens are obtained lazily by the oauth2 token source on
// the first API call, not at construction time.
package google
