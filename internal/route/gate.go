// Package route implements the pre-render navigation gate. It runs
// before any view state exists and therefore consults only the
// credential mirror, never the asynchronously hydrated session store.
package route

import "strings"

// Well-known paths.
const (
	Login    = "/login"
	Register = "/register"
	Home     = "/"
)

// authRoutes are reachable only without a credential.
var authRoutes = map[string]bool{
	Login:    true,
	Register: true,
}

// protectedRoots are exact protected paths; protectedPrefixes cover
// whole namespaces including their sub-paths.
var protectedRoots = map[string]bool{
	Home: true,
}

var protectedPrefixes = []string{"/dashboard", "/app"}

// Action is the gate's verdict for a navigation.
type Action int

const (
	// Allow renders the requested path.
	Allow Action = iota
	// Redirect navigates to Decision.Target instead.
	Redirect
)

// Decision is the outcome of gating one navigation.
type Decision struct {
	Action Action
	Target string
}

// Matches reports whether the gate applies to path at all. Paths
// outside the matcher render without a decision.
func Matches(path string) bool {
	if authRoutes[path] || protectedRoots[path] {
		return true
	}
	return isProtectedPrefix(path)
}

func isProtectedPrefix(path string) bool {
	for _, prefix := range protectedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// Decide gates one navigation. token is the mirrored credential, ""
// when absent. Rules in order: an auth route with a credential
// redirects home; a protected route without one redirects to login;
// everything else is allowed.
func Decide(path, token string) Decision {
	if authRoutes[path] && token != "" {
		return Decision{Action: Redirect, Target: Home}
	}

	protected := protectedRoots[path] || isProtectedPrefix(path)
	if protected && token == "" {
		return Decision{Action: Redirect, Target: Login}
	}

	return Decision{Action: Allow}
}
