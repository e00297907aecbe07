package sessions

import (
	"github.com/jrsteele09/go-storefront-client/users"
)

// StateKey is the storage key the session snapshot is persisted under.
const StateKey = "authState"

// State is the client's belief about who, if anyone, is logged in.
// IsAuthenticated is true if and only if User is non-nil.
type State struct {
	User            *users.User `json:"user"`
	IsAuthenticated bool        `json:"isAuthenticated"`
}

// Anonymous is the logged out state.
func Anonymous() State {
	return State{}
}

// Authenticated returns the logged in state for u. A nil user yields Anonymous.
func Authenticated(u *users.User) State {
	if u == nil {
		return Anonymous()
	}
	return State{User: u.Clone(), IsAuthenticated: true}
}

// Consistent reports whether the flag and the identity agree.
func (s State) Consistent() bool {
	return s.IsAuthenticated == (s.User != nil)
}

// Role returns the identity's role, or users.RoleNone when anonymous.
func (s State) Role() users.RoleType {
	if s.User == nil || s.User.Role == "" {
		return users.RoleNone
	}
	return s.User.Role
}

func (s State) IsAdmin() bool {
	return s.IsAuthenticated && s.User.IsAdmin()
}

func (s State) clone() State {
	return State{User: s.User.Clone(), IsAuthenticated: s.IsAuthenticated}
}
