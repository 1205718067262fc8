package auth

import "github.com/lesezeit/lesezeit/internal/api/models"

// Requirement is what a route asks of the visitor.
type Requirement int

const (
	// RequireAuthenticated admits any logged in user.
	RequireAuthenticated Requirement = iota
	// RequireAdminRole admits only the admin.
	RequireAdminRole
)

// Decision is the outcome of an access check.
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	Forbid
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect"
	case Forbid:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Decide returns whether user may access a route with requirement req.
// Anonymous visitors are sent to the login page; logged in users without
// the admin role are forbidden from admin routes.
func Decide(user *models.User, req Requirement) Decision {
	if user == nil {
		return RedirectToLogin
	}
	if req == RequireAdminRole && !user.IsAdmin {
		return Forbid
	}
	return Allow
}
