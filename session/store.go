package session

// Store is the single source of truth for the current logged-in identity:
// access token, refresh token and user profile. All reads are synchronous.
// An access token may be expired and still read back here; expiry is only
// ever discovered by a rejected request, never by local inspection.
type Store interface {
	// AccessToken returns the short-lived bearer credential, if present.
	AccessToken() (string, bool)
	SetAccessToken(token string) error

	// RefreshToken returns the longer-lived credential used solely to mint
	// a new access token, if present.
	RefreshToken() (string, bool)
	SetRefreshToken(token string) error

	// Profile returns the stored user profile. A missing or unreadable
	// profile reads as absent, never as an error.
	Profile() (*UserProfile, bool)

	// SetProfile stores the profile and broadcasts the identity change.
	SetProfile(profile *UserProfile) error

	// Clear removes access token, refresh token and profile, and broadcasts
	// the identity change.
	Clear() error

	// IsAuthenticated reports whether both an access token and a profile
	// are present. This is the sole gate for "is the user logged in".
	IsAuthenticated() bool

	// Subscribe registers an identity-change observer. Observers receive no
	// payload; they re-read the store. The returned function unsubscribes.
	Subscribe(fn func()) (unsubscribe func())
}
