// Package guard decides whether a page may be shown for the current session.
package guard

import (
	"github.com/jrsteele09/go-storefront-client/sessions"
)

// Requirement is the capability a page needs.
type Requirement int

const (
	RequireAuthenticated Requirement = iota
	RequireAdmin
)

func (r Requirement) String() string {
	switch r {
	case RequireAuthenticated:
		return "authenticated"
	case RequireAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a guard check.
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	RedirectToHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectToHome:
		return "redirect_to_home"
	default:
		return "unknown"
	}
}

// Target returns the page a redirecting decision points at, or "" for Allow.
func (d Decision) Target() string {
	switch d {
	case RedirectToLogin:
		return LoginPath
	case RedirectToHome:
		return HomePath
	default:
		return ""
	}
}

// Check is a pure function of the session state. Anonymous visitors are sent
// to the login page; authenticated non-admins asking for an admin page are
// sent home.
func Check(state sessions.State, req Requirement) Decision {
	if !state.IsAuthenticated || state.User == nil {
		return RedirectToLogin
	}
	if req == RequireAdmin && !state.IsAdmin() {
		return RedirectToHome
	}
	return Allow
}

// Enforce runs Check and, for redirecting decisions, navigates to the target.
func Enforce(nav Navigator, state sessions.State, req Requirement) Decision {
	d := Check(state, req)
	if target := d.Target(); target != "" && nav != nil {
		nav.Redirect(target)
	}
	return d
}
