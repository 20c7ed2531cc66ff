// Package model defines the data structures used throughout the application.
package model

import "time"

// TimestampLayout is the format used when a User is projected for display.
const TimestampLayout = "2006-01-02 15:04:05"

// User represents a registered account.
//
// ID and CreatedAt are assigned by the database on insert and never change
// afterwards. Password always holds the bcrypt hash, never the plaintext;
// the `json:"-"` tag keeps it out of every JSON response.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicUser is the password-free projection of a User.
type PublicUser struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// Public returns the projection of u that is safe to hand to clients.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format(TimestampLayout),
	}
}

// ToMap returns the same projection as Public keyed by column name.
// The password is never part of it.
func (u *User) ToMap() map[string]any {
	return map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"created_at": u.CreatedAt.Format(TimestampLayout),
	}
}

// PublicUsers projects a slice of users.
func PublicUsers(users []User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out
}
