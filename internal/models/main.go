// Package models defines the core data structures for users and tweets.
package models

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user, assigned by the database.
	ID int64 `json:"id"`
	// Username is the login name chosen by the user.
	Username string `json:"username"`
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `json:"-"`
}

// Public returns the non-secret view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}

// PublicUser is the part of a User that may be handed to templates.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Tweet is a short text post owned by a user.
type Tweet struct {
	// ID is the unique identifier for the tweet.
	ID int64 `json:"id"`
	// Text is the body of the tweet.
	Text string `json:"text"`
	// UserID references the owning user.
	UserID int64 `json:"user_id"`
	// Username of the owner; filled by listings only.
	Username string `json:"username,omitempty"`
}

// OwnedBy reports whether userID is the owner of the tweet.
func (t *Tweet) OwnedBy(userID int64) bool {
	return t.UserID == userID
}
