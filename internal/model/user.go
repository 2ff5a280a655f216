package model

import "time"

// User is a registered account. Accounts created with email and password
// carry a bcrypt PasswordHash; accounts created through GitHub sign-in carry
// a GitHubID and may have no password at all.
//
// PasswordHash is never serialised.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GitHubID     *int64    `json:"github_id,omitempty"`
	Login        string    `json:"login,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity returns the capability value handed to the snippet service.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email}
}

// Identity is the authenticated caller of a snippet operation. Only ID takes
// part in ownership checks. The zero Identity means "nobody signed in".
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// IsZero reports whether no one is signed in.
func (i Identity) IsZero() bool {
	return i.ID == ""
}
