// Package admin provides the embeddable client SDK for the Loopline admin
// backend. It owns credential persistence, attaches bearer tokens to outbound
// requests, transparently refreshes expired sessions, and exposes typed
// operations for every admin resource family.
package admin

import "time"

// Credentials is the access/refresh token pair issued at login and replaced
// wholesale at refresh. The zero value means logged out.
type Credentials struct {
	// AccessToken is the short-lived bearer credential attached to API calls.
	AccessToken string `json:"access_token"`
	// RefreshToken is the long-lived credential exchanged for a new pair when
	// the access token is rejected.
	RefreshToken string `json:"refresh_token"`
	// ExpiresAt is the access token expiry reported by the backend, when known.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Valid reports whether the pair carries a usable access token. The backend
// remains the authority on whether the token is actually accepted.
func (c Credentials) Valid() bool {
	return c.AccessToken != ""
}

// CredentialStore abstracts persistence of the credential pair so callers can
// swap the backing medium without touching call sites. Implementations must
// replace both tokens atomically from the caller's point of view.
type CredentialStore interface {
	// Load returns the stored pair. A missing pair is not an error; the zero
	// Credentials value is returned instead.
	Load() (Credentials, error)
	// Save overwrites both stored tokens with the given pair.
	Save(Credentials) error
	// Clear removes the stored pair. Clearing an empty store is a no-op.
	Clear() error
}
