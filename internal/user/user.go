// Package user defines the user model used throughout the application,
// particularly for authentication and clip ownership attribution.
package user

// User represents a system user.
// A user row is created once at signup and never updated or deleted.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string `json:"id"`

	// Username is unique across all users; uniqueness is enforced by the storage layer.
	Username string `json:"username"`

	// PasswordHash is the bcrypt hash of the user's password.
	// It is never serialized into API responses.
	PasswordHash string `json:"-"`
}
