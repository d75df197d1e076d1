// Package guard decides whether a protected view renders for the
// current session. It is a pure decision function; the view layer
// performs the actual redirect or render.
package guard

import "github.com/MikhailDrugie/se-attack-modeling/internal/model"

// Decision is the outcome of a guard check.
type Decision int

const (
	// ShowLoading: the session restore is still in flight; render a
	// neutral placeholder, decide nothing yet.
	ShowLoading Decision = iota
	// RedirectLogin: no session; send the user to the login entry point.
	RedirectLogin
	// RedirectHome: authenticated but the role is not allowed here;
	// send the user to the safe default view, not an error dialog.
	RedirectHome
	// Render: show the protected content.
	Render
)

func (d Decision) String() string {
	switch d {
	case ShowLoading:
		return "loading"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	case Render:
		return "render"
	default:
		return "unknown"
	}
}

// State is the slice of the session the guard reads.
type State interface {
	CurrentUser() (*model.User, bool)
	IsLoading() bool
}

// Check gates a view behind an allow-list of roles. An empty list
// admits any authenticated user.
//
// Membership is exact: Admin is not implicitly granted access to a
// route it is not listed on. Routes that should admit admins list
// RoleAdmin explicitly; the role enum is ordinal on the server but the
// client makes no hierarchy assumption.
func Check(sess State, allow []model.Role) Decision {
	if sess.IsLoading() {
		return ShowLoading
	}
	user, ok := sess.CurrentUser()
	if !ok {
		return RedirectLogin
	}
	if len(allow) == 0 {
		return Render
	}
	for _, role := range allow {
		if user.Role == role {
			return Render
		}
	}
	return RedirectHome
}

// Allowed reports whether the check resolves to rendering the view.
// Convenience for CLI commands that gate an action rather than a view.
func Allowed(sess State, allow []model.Role) bool {
	return Check(sess, allow) == Render
}
