package support

import (
	"stayinn/internal/domain/identity"
	"stayinn/internal/domain/shared/fault"
)

// RequireCaller rejects anonymous requests.
func RequireCaller(caller identity.Claims) error {
	if caller.UserID == "" {
		return fault.New(fault.Unauthenticated, "authentication required")
	}
	return nil
}

// RequireRole rejects callers without the expected role.
func RequireRole(caller identity.Claims, role identity.Role) error {
	if err := RequireCaller(caller); err != nil {
		return err
	}
	if caller.Role != role {
		return fault.Errorf(fault.Forbidden, "%s role required", role)
	}
	return nil
}
