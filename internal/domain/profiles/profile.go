// Package profiles mirrors the identity provider's user record just far
// enough to enforce the deletion rule: a profile cannot go away while it
// anchors live bookings.
package profiles

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayinn/internal/domain/identity"
)

var (
	ErrNotFound         = errors.New("profiles: not found")
	ErrUsernameRequired = errors.New("profiles: username is required")
)

type Profile struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
	Email     string
	Role      identity.Role
	CreatedAt time.Time
}

type Repository interface {
	ByID(ctx context.Context, id string) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, id string) error
}

func New(id, username, firstName, lastName, email string, role identity.Role, now time.Time) (*Profile, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrUsernameRequired
	}
	return &Profile{
		ID:        id,
		Username:  strings.TrimSpace(username),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     strings.TrimSpace(strings.ToLower(email)),
		Role:      role,
		CreatedAt: now.UTC(),
	}, nil
}
