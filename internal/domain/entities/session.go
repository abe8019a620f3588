package entities

import (
	"slices"
	"time"
)

// AdminRole is the role claim gating the moderation screen. Gating here is
// cosmetic only; the upstream API enforces authorization.
const AdminRole = "ADMIN"

// User is the authenticated user's profile as returned by the login endpoint.
type User struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether the user carries the given role claim.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles, role)
}

// Session binds a local session ID to the upstream bearer token and user
// profile. One live session per client; an expired token is only discovered
// on the next failing request.
type Session struct {
	ID string `json:"id"`
	// Token never leaves the gateway; clients hold only the session ID.
	Token     string    `json:"-"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the session's user carries the admin role.
func (s *Session) IsAdmin() bool {
	if s == nil {
		return false
	}
	return s.User.HasRole(AdminRole)
}
