package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID    uuid.UUID `db:"id"`
	Email string    `db:"email"`
	Name  string    `db:"name"`

	PasswordHash string  `db:"password_hash"`
	Avatar       *string `db:"avatar"`

	// Last issued refresh token; rotated on every login.
	RefreshToken *string `db:"refresh_token"`

	CreatedAt time.Time `db:"created_at"`
}

// Initials returns the single-letter display initial used in
// participant roster events.
func (u *User) Initials() string {
	if u.Name == "" {
		return "?"
	}
	return strings.ToUpper(string([]rune(u.Name)[0]))
}
