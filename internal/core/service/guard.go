package service

import "github.com/parksphere/portal/internal/core/domain"

// Guard decides whether a protected view may render.
//
// The order of checks is fixed: a pending hydration shows a placeholder, a
// missing credential always goes to login (whatever the allow-list says), an
// identity whose role is outside a non-empty allow-list goes back to the root
// dispatcher.
func Guard(hydrated bool, s domain.Session, allowed ...domain.Role) domain.GuardDecision {
	if !hydrated {
		return domain.GuardDecision{Outcome: domain.GuardLoading}
	}
	if !s.Authenticated() {
		return domain.GuardDecision{Outcome: domain.GuardRedirectLogin, Location: domain.PathLogin}
	}
	// A credential without an identity has no role to compare, so the role
	// check is skipped. Denying it would bounce between "/" and the user
	// dashboard forever; the backend still rejects the calls it cannot make.
	if len(allowed) > 0 && s.Identity != nil && !roleAllowed(s.Role(), allowed) {
		return domain.GuardDecision{Outcome: domain.GuardRedirectRoot, Location: domain.PathRoot}
	}
	return domain.GuardDecision{Outcome: domain.GuardRender}
}

func roleAllowed(role domain.Role, allowed []domain.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
