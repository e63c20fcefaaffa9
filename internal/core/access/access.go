// Package access decides what a client navigating to a frontend route gets
// to see, given its current session state.
package access

import (
	"strings"

	"github.com/clikenova/storefront/internal/core/domain"
)

// Outcome is the result of a navigation decision.
type Outcome string

const (
	Render            Outcome = "render"
	RedirectLogin     Outcome = "redirect_login"
	RedirectDashboard Outcome = "redirect_dashboard"
	RedirectHome      Outcome = "redirect_home"
	// Pending is returned while the session is still being resolved. Nothing
	// role-dependent may be shown in this state.
	Pending  Outcome = "pending"
	NotFound Outcome = "not_found"
)

// Decision carries the outcome and, for redirects, where to go.
type Decision struct {
	Outcome  Outcome `json:"outcome"`
	Location string  `json:"location,omitempty"`
}

// Decide applies the guard to a protected route. An empty allowed set admits
// any authenticated identity.
func Decide(st domain.SessionState, allowed []domain.Role) Decision {
	switch st.Status {
	case domain.SessionLoading:
		return Decision{Outcome: Pending}
	case domain.SessionAnonymous:
		return Decision{Outcome: RedirectLogin, Location: domain.PathLogin}
	}
	if st.Identity == nil {
		return Decision{Outcome: RedirectLogin, Location: domain.PathLogin}
	}

	role := st.Identity.Role
	if len(allowed) == 0 || contains(allowed, role) {
		return Decision{Outcome: Render}
	}
	return toDashboard(role)
}

func toDashboard(role domain.Role) Decision {
	path := domain.DashboardPath(role)
	if path == domain.PathHome {
		return Decision{Outcome: RedirectHome, Location: domain.PathHome}
	}
	return Decision{Outcome: RedirectDashboard, Location: path}
}

func contains(roles []domain.Role, r domain.Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}

// Kind classifies a frontend route.
type Kind int

const (
	// Public routes render for everyone.
	Public Kind = iota
	// GuestOnly routes (sign-in, sign-up) send authenticated users to their dashboard.
	GuestOnly
	// Protected routes go through Decide.
	Protected
	// Landing is the generic /dashboard entry that forwards to the role dashboard.
	Landing
)

// Route is one entry of the navigation table. A ":name" segment matches any
// single segment and a trailing "*" matches the rest of the path.
type Route struct {
	Pattern string
	Kind    Kind
	Roles   []domain.Role
}

// Routes is the storefront navigation table.
var Routes = []Route{
	{Pattern: "/", Kind: Public},
	{Pattern: "/shop", Kind: Public},
	{Pattern: "/product/:id", Kind: Public},
	{Pattern: "/checkout/:id", Kind: Public},

	{Pattern: "/login", Kind: GuestOnly},
	{Pattern: "/register", Kind: GuestOnly},
	{Pattern: "/forgot-password", Kind: GuestOnly},

	{Pattern: domain.PathDashboard, Kind: Landing},

	{Pattern: "/student/*", Kind: Protected, Roles: []domain.Role{domain.RoleStudent}},
	{Pattern: "/producer/*", Kind: Protected, Roles: []domain.Role{domain.RoleProducer}},
	{Pattern: "/affiliate/*", Kind: Protected, Roles: []domain.Role{domain.RoleAffiliate}},
	{Pattern: "/admin/*", Kind: Protected, Roles: []domain.Role{domain.RoleAdmin}},
}

// Lookup returns the first route matching path.
func Lookup(path string) (Route, bool) {
	for _, r := range Routes {
		if match(r.Pattern, path) {
			return r, true
		}
	}
	return Route{}, false
}

// Resolve decides the navigation outcome for path.
func Resolve(path string, st domain.SessionState) Decision {
	route, ok := Lookup(path)
	if !ok {
		return Decision{Outcome: NotFound}
	}

	switch route.Kind {
	case Public:
		return Decision{Outcome: Render}
	case GuestOnly:
		switch st.Status {
		case domain.SessionLoading:
			return Decision{Outcome: Pending}
		case domain.SessionAuthenticated:
			return toDashboard(st.Role())
		}
		return Decision{Outcome: Render}
	case Landing:
		d := Decide(st, nil)
		if d.Outcome != Render {
			return d
		}
		return toDashboard(st.Role())
	default:
		return Decide(st, route.Roles)
	}
}

func match(pattern, path string) bool {
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if pattern == "/" {
		return path == "/"
	}

	pp := strings.Split(strings.Trim(pattern, "/"), "/")
	sp := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range pp {
		if seg == "*" {
			return len(sp) >= i
		}
		if i >= len(sp) {
			return false
		}
		if strings.HasPrefix(seg, ":") {
			if sp[i] == "" {
				return false
			}
			continue
		}
		if seg != sp[i] {
			return false
		}
	}
	return len(sp) == len(pp)
}
