package providers

// Storage keys for the session credential triple plus the cached user
// profile. The names mirror what the backend's web clients persist, so a
// console session is interchangeable with a browser session.
const (
	KeyAccessToken  = "token"
	KeyRefreshToken = "refreshToken"
	KeyTokenExpiry  = "tokenExpiryAt"
	KeyUser         = "user"
)

// CredentialStore defines the interface for persisting session credentials.
// Implementations must be safe for concurrent use: the refresh protocol
// writes while in-flight requests read.
type CredentialStore interface {
	// Get retrieves a value; returns "" when the key is absent
	Get(key string) (string, error)

	// Set stores a value
	Set(key, value string) error

	// Delete removes a value; deleting an absent key is not an error
	Delete(key string) error
}
