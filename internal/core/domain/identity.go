package domain

import "time"

// Role is the access class of an authenticated identity.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleProducer  Role = "producer"
	RoleStudent   Role = "student"
	RoleAffiliate Role = "affiliate"
)

// Frontend paths the router resolves to.
const (
	PathHome      = "/"
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
)

// dashboards is the fixed role → landing page table.
var dashboards = map[Role]string{
	RoleAdmin:     "/admin/dashboard",
	RoleProducer:  "/producer/dashboard",
	RoleAffiliate: "/affiliate/dashboard",
	RoleStudent:   "/student/dashboard",
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	_, ok := dashboards[r]
	return ok
}

// DashboardPath returns the landing page for a role. Unknown roles land on
// the public home page.
func DashboardPath(r Role) string {
	if p, ok := dashboards[r]; ok {
		return p
	}
	return PathHome
}

// Identity is the profile record that backs an authenticated session.
type Identity struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	Active         bool      `json:"active"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	RegisteredAt   time.Time `json:"registered_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// SessionStatus is the resolution state of a client session.
type SessionStatus string

const (
	SessionLoading       SessionStatus = "loading"
	SessionAnonymous     SessionStatus = "anonymous"
	SessionAuthenticated SessionStatus = "authenticated"
)

// SessionState is an immutable snapshot of a session. Identity is nil unless
// Status is SessionAuthenticated.
type SessionState struct {
	Status   SessionStatus `json:"status"`
	Identity *Identity     `json:"identity,omitempty"`
}

// Role returns the identity role, or "" when not authenticated.
func (s SessionState) Role() Role {
	if s.Status != SessionAuthenticated || s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}
