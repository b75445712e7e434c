// Copyright (c) 2026 Aventra. All rights reserved.

package session

import "context"

// Guard gates page access based on authentication state and effective role.
//
// It is a pure predicate with exactly one side effect: when access is
// denied, the injected navigate callback fires once with the redirect
// target. The HTTP layer binds navigate to whatever "go to the login page"
// means for its transport. Safe to invoke on every request of a guarded
// view; the redirect target is assumed to be a differently-guarded page,
// so there is no loop risk.
type Guard struct {
	sessions *Manager
	navigate func(target string)
}

// NewGuard creates a route guard over the session manager. navigate may be
// nil when the caller only wants the decision.
func NewGuard(sessions *Manager, navigate func(target string)) *Guard {
	return &Guard{sessions: sessions, navigate: navigate}
}

// Protect reports whether the caller may access the route.
//
// Denial cases, checked in order:
//  1. The caller's authentication state differs from requireAuthenticated
//     (a login page wants anonymous callers, a cart page wants signed-in ones).
//  2. The route is employeeOnly and the caller's effective employee status is
//     false, which includes real employees previewing as customers.
//
// On denial the optional onRedirect hook runs first (UI cleanup), then
// navigate fires with redirectTarget. Allowed routes produce no side effect.
func (guard *Guard) Protect(ctx context.Context, requireAuthenticated, employeeOnly bool, redirectTarget string, onRedirect func()) bool {
	deny := func() bool {
		if onRedirect != nil {
			onRedirect()
		}
		if guard.navigate != nil {
			guard.navigate(redirectTarget)
		}
		return false
	}

	if guard.sessions.IsAuthenticated(ctx) != requireAuthenticated {
		return deny()
	}

	if employeeOnly && !guard.sessions.EffectiveIsEmployee(ctx, false) {
		return deny()
	}

	return true
}
