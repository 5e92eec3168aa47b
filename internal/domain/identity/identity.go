// Package identity models the external claims source. The core never
// stores credentials; it only consumes resolved claims.
package identity

import (
	"errors"
	"strings"
)

var ErrUnknownRole = errors.New("identity: unknown role")

type Role string

const (
	RoleGuest Role = "GUEST"
	RoleHost  Role = "HOST"
)

func ParseRole(raw string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(RoleGuest):
		return RoleGuest, nil
	case string(RoleHost):
		return RoleHost, nil
	default:
		return "", ErrUnknownRole
	}
}

// Claims is the resolved caller identity derived from a signed credential.
type Claims struct {
	UserID   string
	Username string
	Role     Role
}

func (c Claims) IsHost() bool {
	return c.Role == RoleHost
}

func (c Claims) IsGuest() bool {
	return c.Role == RoleGuest
}
