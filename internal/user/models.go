// Package user provides profile reads and administrative account
// management on top of the accounts the auth package creates.
package user

import (
	"time"

	"github.com/roadpulse/roadpulse/internal/api/models"
)

// User represents an account as this package sees it: everything except
// the credentials.
type User struct {
	ID        int64
	Username  string
	Email     string
	Name      *string
	CreatedAt time.Time
}

// ToAPI converts a domain User to its wire representation.
func (u *User) ToAPI() models.User {
	return models.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: models.Timestamp(u.CreatedAt),
	}
}
